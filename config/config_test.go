package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGateways(t *testing.T) {
	gws := splitGateways("https://ipfs.io/ipfs,https://dweb.link/ipfs/\n https://gateway.pinata.cloud/ipfs// \n\n")
	assert.Equal(t, []string{
		"https://ipfs.io/ipfs/",
		"https://dweb.link/ipfs/",
		"https://gateway.pinata.cloud/ipfs/",
	}, gws)
}

func TestGatewayList_SeedsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateways.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example/ipfs/\nhttps://b.example/ipfs/\n"), 0o644))

	g := NewGatewayList(&Config{
		IPFSGateways:    defaultGateways,
		GatewayListFile: path,
	})
	assert.Equal(t, []string{"https://a.example/ipfs/", "https://b.example/ipfs/"}, g.Gateways())
}

func TestGatewayList_ReloadKeepsOrderOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateways.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example/ipfs/\n"), 0o644))

	g := NewGatewayList(&Config{IPFSGateways: defaultGateways, GatewayListFile: path})
	require.Equal(t, []string{"https://a.example/ipfs/"}, g.Gateways())

	// empty file must not wipe the live list
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))
	g.reload(path)
	assert.Equal(t, []string{"https://a.example/ipfs/"}, g.Gateways())

	require.NoError(t, os.WriteFile(path, []byte("https://c.example/ipfs/\n"), 0o644))
	g.reload(path)
	assert.Equal(t, []string{"https://c.example/ipfs/"}, g.Gateways())
}

func TestGatewayList_OnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateways.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example/ipfs/\n"), 0o644))

	g := NewGatewayList(&Config{IPFSGateways: defaultGateways, GatewayListFile: path})

	var got []string
	g.OnChange(func(gws []string) { got = gws })

	require.NoError(t, os.WriteFile(path, []byte("https://b.example/ipfs/\n"), 0o644))
	g.reload(path)
	assert.Equal(t, []string{"https://b.example/ipfs/"}, got)
}
