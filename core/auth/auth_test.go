package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	addr := "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"
	token, err := GenerateToken(addr)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, addr, claims.Address)
	assert.Equal(t, addr, claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetSecret("secret-a")
	token, err := GenerateToken("tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb")
	require.NoError(t, err)

	SetSecret("secret-b")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	SetSecret("test-secret")
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestInviteCodeHash(t *testing.T) {
	hash, err := HashInviteCode("ghostnet-2024")
	require.NoError(t, err)
	assert.True(t, CheckInviteCode("ghostnet-2024", hash))
	assert.False(t, CheckInviteCode("wrong", hash))
}
