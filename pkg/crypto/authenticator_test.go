package crypto

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestAuthenticator(t *testing.T) {
	a, err := GenerateRequestAuthenticator()
	require.NoError(t, err)
	assert.False(t, a.IsZero())

	b, err := GenerateRequestAuthenticator()
	require.NoError(t, err)
	assert.False(t, a.Equal(b), "two generated authenticators should differ")
}

func TestResponseAuthenticatorRoundTrip(t *testing.T) {
	secret := []byte("testing123")
	reqAuth, err := GenerateRequestAuthenticator()
	require.NoError(t, err)

	attrs := []byte{18, 7, 'h', 'e', 'l', 'l', 'o'}
	length := uint16(20 + len(attrs))

	respAuth := CalculateResponseAuthenticator(2, 42, length, reqAuth, attrs, secret)
	assert.True(t, ValidateResponseAuthenticator(2, 42, length, reqAuth, attrs, respAuth, secret))

	assert.False(t, ValidateResponseAuthenticator(2, 42, length, reqAuth, attrs, respAuth, []byte("wrong")))
	assert.False(t, ValidateResponseAuthenticator(3, 42, length, reqAuth, attrs, respAuth, secret))
	assert.False(t, ValidateResponseAuthenticator(2, 43, length, reqAuth, attrs, respAuth, secret))
}

// Response Authenticator per RFC 2865 §3: a header-only Access-Accept's
// value is MD5(Code|Id|Length|RequestAuth|Secret). Checked against a
// hand-built digest so a refactor of digest() can't silently change the
// wire rule.
func TestResponseAuthenticatorMatchesRFCConstruction(t *testing.T) {
	secret := []byte("abc")
	var reqAuth Authenticator
	for i := range reqAuth {
		reqAuth[i] = byte(i)
	}

	got := CalculateResponseAuthenticator(2, 5, 20, reqAuth, nil, secret)

	raw := []byte{2, 5, 0, 20}
	raw = append(raw, reqAuth[:]...)
	raw = append(raw, secret...)
	want := md5.Sum(raw)

	assert.Equal(t, Authenticator(want), got)
}

func TestRequestAuthenticatorAccountingStyle(t *testing.T) {
	secret := []byte("acct-secret")
	attrs := []byte{44, 10, '1', '2', '3', '4', '5', '6', '7', '8'}
	length := uint16(20 + len(attrs))

	auth := CalculateRequestAuthenticator(4, 9, length, attrs, secret)
	assert.True(t, ValidateRequestAuthenticator(4, 9, length, attrs, auth, secret))
	assert.False(t, ValidateRequestAuthenticator(4, 9, length, attrs, auth, []byte("other")))
}

func TestAuthenticatorString(t *testing.T) {
	var a Authenticator
	a[0] = 0xde
	a[15] = 0xad
	assert.Equal(t, "de0000000000000000000000000000ad", a.String())
}
