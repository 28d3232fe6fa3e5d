package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("secreto", "sess-1", "mesa-4", "mesa-api", 10)
	require.NoError(t, err)

	c, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", c.SessionID)
	assert.Equal(t, "mesa-4", c.TableID)
	assert.Equal(t, "mesa-api", c.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", "sess-1", "mesa-4", "mesa-api", 10)
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", "sess-1", "mesa-4", "mesa-api", -1)
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "s", "t", "i", 1)
	assert.Error(t, err)
	_, err = Parse("", "x.y.z")
	assert.Error(t, err)
}
