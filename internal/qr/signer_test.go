package qr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	signer := NewSigner("test-secret")

	nonce, err := NewNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 64)

	signed := signer.Sign(Payload{StudentID: 7, Version: 3, Nonce: nonce})
	require.Len(t, strings.Split(signed, "|"), 5)

	got, err := signer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.StudentID)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, nonce, got.Nonce)
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	signer := NewSigner("test-secret")
	signed := signer.Sign(Payload{StudentID: 7, Version: 3, Nonce: "aabbcc"})
	parts := strings.Split(signed, "|")

	replacements := []string{"x", "8", "4", "ddeeff", strings.Repeat("0", 64)}
	for i, replacement := range replacements {
		tampered := make([]string, len(parts))
		copy(tampered, parts)
		tampered[i] = replacement

		_, err := signer.Verify(strings.Join(tampered, "|"))
		assert.ErrorIs(t, err, ErrInvalidPayload, "tampered field %d", i)
	}
}

func TestVerifyRejectsMalformedData(t *testing.T) {
	signer := NewSigner("test-secret")
	signed := signer.Sign(Payload{StudentID: 1, Version: 1, Nonce: "n"})

	for _, data := range []string{
		"",
		"v",
		"v|1|1|n",
		"w|1|1|n|deadbeef",
		signed + "|extra",
		"not a qr payload at all",
	} {
		_, err := signer.Verify(data)
		assert.ErrorIs(t, err, ErrInvalidPayload, "data %q", data)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	signed := NewSigner("secret-a").Sign(Payload{StudentID: 1, Version: 1, Nonce: "n"})

	_, err := NewSigner("secret-b").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestVerifyRejectsNonPositiveFields(t *testing.T) {
	signer := NewSigner("test-secret")

	for _, p := range []Payload{
		{StudentID: 0, Version: 1, Nonce: "n"},
		{StudentID: -4, Version: 1, Nonce: "n"},
		{StudentID: 1, Version: 0, Nonce: "n"},
		{StudentID: 1, Version: 1, Nonce: ""},
	} {
		_, err := signer.Verify(signer.Sign(p))
		assert.ErrorIs(t, err, ErrInvalidPayload, "payload %+v", p)
	}
}

func TestNonceIsFresh(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
