package ipfs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGateways []string

func (g staticGateways) Gateways() []string { return g }

func TestPath(t *testing.T) {
	assert.Equal(t, "QmX123/audio.mp3", Path("ipfs://QmX123/audio.mp3"))
	assert.Equal(t, "QmX123", Path("ipfs://ipfs/QmX123"))
	assert.Equal(t, "https://example.com/a.mp3", Path("https://example.com/a.mp3"))
}

func TestResolver_URLs(t *testing.T) {
	r := NewResolver(staticGateways{"https://gw1/ipfs/", "https://gw2/ipfs/"})

	urls := r.URLs("ipfs://QmX123")
	assert.Equal(t, []string{"https://gw1/ipfs/QmX123", "https://gw2/ipfs/QmX123"}, urls)

	assert.Equal(t, []string{"https://plain/a.mp3"}, r.URLs("https://plain/a.mp3"))
	assert.Empty(t, r.URLs(""))
}

func TestResolver_Primary(t *testing.T) {
	r := NewResolver(staticGateways{"https://gw1/ipfs/"})
	assert.Equal(t, "https://gw1/ipfs/QmX123", r.Primary("ipfs://QmX123"))
}

func TestResolver_Fetch_FallsBackInOrder(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	var goodHits int
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodHits++
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("audio-bytes"))
	}))
	defer good.Close()

	r := NewResolver(staticGateways{bad.URL + "/ipfs/", good.URL + "/ipfs/"})

	res, err := r.Fetch(context.Background(), "ipfs://QmX123")
	require.NoError(t, err)
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "audio-bytes", string(body))
	assert.Equal(t, "audio/mpeg", res.ContentType)
	assert.Equal(t, 1, goodHits)
}

func TestResolver_Fetch_AllGatewaysFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	r := NewResolver(staticGateways{bad.URL + "/ipfs/"})

	_, err := r.Fetch(context.Background(), "ipfs://QmMissing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all gateways failed")
}
