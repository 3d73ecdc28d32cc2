package radclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/radqueue/pkg/crypto"
	"github.com/vitalvas/radqueue/pkg/packet"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	secret := []byte("abc")

	pkt := packet.New(packet.CodeAccessRequest, 7)
	pkt.AddAttribute(packet.NewAttribute(1, []byte("testuser")))
	req, err := pkt.Encode()
	require.NoError(t, err)

	signed, reqAuth, err := sign(req, secret)
	require.NoError(t, err)
	assert.False(t, reqAuth.IsZero())

	resp := buildAccept(signed, secret)
	require.NotNil(t, resp)

	assert.True(t, verifyResponse(resp, reqAuth, secret))
}

func TestVerifyResponse_RejectsWrongSecret(t *testing.T) {
	pkt := packet.New(packet.CodeAccessRequest, 1)
	req, err := pkt.Encode()
	require.NoError(t, err)

	signed, reqAuth, err := sign(req, []byte("right"))
	require.NoError(t, err)

	resp := buildAccept(signed, []byte("wrong"))
	require.NotNil(t, resp)

	assert.False(t, verifyResponse(resp, reqAuth, []byte("right")))
}

func TestVerifyResponse_RejectsMalformedShape(t *testing.T) {
	assert.False(t, verifyResponse([]byte{1, 2, 3}, crypto.Authenticator{}, []byte("abc")))
}

func TestAttachNASIdentifier_AddsWhenAbsent(t *testing.T) {
	pkt := packet.New(packet.CodeAccessRequest, 0)
	req, err := pkt.Encode()
	require.NoError(t, err)

	out, err := attachNASIdentifier(req, []byte("nas01"))
	require.NoError(t, err)

	decoded, err := packet.Decode(out)
	require.NoError(t, err)
	attr, ok := decoded.GetAttribute(packet.AttrNASIdentifier)
	require.True(t, ok)
	assert.Equal(t, "nas01", string(attr.GetValue()))
}

func TestAttachNASIdentifier_LeavesExistingAlone(t *testing.T) {
	pkt := packet.New(packet.CodeAccessRequest, 0)
	pkt.AddAttribute(packet.NewAttribute(packet.AttrNASIdentifier, []byte("already-there")))
	req, err := pkt.Encode()
	require.NoError(t, err)

	out, err := attachNASIdentifier(req, []byte("nas01"))
	require.NoError(t, err)

	decoded, err := packet.Decode(out)
	require.NoError(t, err)
	attr, _ := decoded.GetAttribute(packet.AttrNASIdentifier)
	assert.Equal(t, "already-there", string(attr.GetValue()))
}

func TestAttachNASIdentifier_SkipsNonAccessRequest(t *testing.T) {
	pkt := packet.New(packet.CodeAccountingRequest, 0)
	req, err := pkt.Encode()
	require.NoError(t, err)

	out, err := attachNASIdentifier(req, []byte("nas01"))
	require.NoError(t, err)
	assert.Equal(t, req, out)
}

func TestAttachNASIdentifier_NoopWhenEmptyID(t *testing.T) {
	pkt := packet.New(packet.CodeAccessRequest, 0)
	req, err := pkt.Encode()
	require.NoError(t, err)

	out, err := attachNASIdentifier(req, nil)
	require.NoError(t, err)
	assert.Equal(t, req, out)
}
