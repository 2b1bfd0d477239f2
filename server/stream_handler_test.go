package server

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamAndCache_TeesIntoResponse(t *testing.T) {
	payload := strings.Repeat("audio-bytes-", 1024)
	rec := httptest.NewRecorder()

	var cached bytes.Buffer
	var cacheSize int64
	err := streamAndCache(rec, "audio/mpeg", int64(len(payload)), strings.NewReader(payload),
		func(body io.Reader, size int64) error {
			cacheSize = size
			_, err := io.Copy(&cached, body)
			return err
		})
	require.NoError(t, err)

	assert.Equal(t, payload, rec.Body.String())
	assert.Equal(t, payload, cached.String())
	assert.Equal(t, int64(len(payload)), cacheSize)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Content-Length"))
}

func TestStreamAndCache_UnknownSize(t *testing.T) {
	rec := httptest.NewRecorder()

	var cacheSize int64
	err := streamAndCache(rec, "", 0, strings.NewReader("abc"),
		func(body io.Reader, size int64) error {
			cacheSize = size
			_, err := io.Copy(io.Discard, body)
			return err
		})
	require.NoError(t, err)

	assert.Equal(t, int64(-1), cacheSize, "unknown length uploads stream with size -1")
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.Equal(t, "abc", rec.Body.String())
}

func TestStreamAndCache_ClientGetsFullPayloadOnCacheFailure(t *testing.T) {
	payload := "0123456789abcdef"
	rec := httptest.NewRecorder()

	// the upload dies after consuming half the artifact
	cacheErr := errors.New("bucket offline")
	err := streamAndCache(rec, "audio/mpeg", int64(len(payload)), strings.NewReader(payload),
		func(body io.Reader, size int64) error {
			if _, err := io.CopyN(io.Discard, body, int64(len(payload)/2)); err != nil {
				return err
			}
			return cacheErr
		})
	require.ErrorIs(t, err, cacheErr)

	assert.Equal(t, payload, rec.Body.String())
}
