package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c, err := New("a-very-long-process-secret")
	require.NoError(t, err)

	enc, err := c.Encrypt("Excellent service")
	require.NoError(t, err)
	assert.NotEmpty(t, enc)
	assert.NotEqual(t, "Excellent service", enc)

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "Excellent service", dec)
}

func TestCipher_NonceVaries(t *testing.T) {
	c, err := New("a-very-long-process-secret")
	require.NoError(t, err)

	a, _ := c.Encrypt("same text")
	b, _ := c.Encrypt("same text")
	assert.NotEqual(t, a, b)
}

func TestCipher_WrongKey(t *testing.T) {
	c1, _ := New("first-secret-value-000")
	c2, _ := New("second-secret-value-000")

	enc, err := c1.Encrypt("station name")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc)
	assert.Error(t, err)
}

func TestCipher_Malformed(t *testing.T) {
	c, _ := New("first-secret-value-000")

	_, err := c.Decrypt("%%%not-base64")
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
