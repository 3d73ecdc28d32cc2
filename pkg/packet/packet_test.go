package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/radqueue/pkg/dictionary"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := New(CodeAccessRequest, 42)
	for i := range p.Authenticator {
		p.Authenticator[i] = byte(i)
	}
	p.AddAttribute(NewAttribute(AttrUserName, []byte("alice")))
	p.AddAttribute(NewAttribute(AttrNASIdentifier, []byte("nas01")))

	wire, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, p.Len(), len(wire))
	assert.Equal(t, byte(CodeAccessRequest), wire[0])
	assert.Equal(t, byte(42), wire[1])

	decoded, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, CodeAccessRequest, decoded.Code)
	assert.Equal(t, uint8(42), decoded.Identifier)
	assert.Equal(t, p.Authenticator, decoded.Authenticator)
	require.Len(t, decoded.Attributes, 2)

	user, ok := decoded.GetAttribute(AttrUserName)
	require.True(t, ok)
	assert.True(t, bytes.Equal([]byte("alice"), user.GetValue()))
}

func TestEncode_RejectsOversizedAttribute(t *testing.T) {
	p := New(CodeAccessRequest, 0)
	p.AddAttribute(NewAttribute(AttrClass, make([]byte, 254)))

	_, err := p.Encode()
	assert.Error(t, err)
}

func TestEncode_RejectsUnknownCode(t *testing.T) {
	p := New(Code(99), 0)
	_, err := p.Encode()
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 0, 0, 4}},
		{"length mismatch", func() []byte {
			d := make([]byte, 20)
			d[0] = 1
			d[3] = 30
			return d
		}()},
		{"attribute length below minimum", func() []byte {
			d := make([]byte, 22)
			d[0] = 1
			d[3] = 22
			d[20] = 1
			d[21] = 1
			return d
		}()},
		{"attribute overruns packet", func() []byte {
			d := make([]byte, 24)
			d[0] = 1
			d[3] = 24
			d[20] = 1
			d[21] = 10
			return d
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	d := make([]byte, 20)
	d[0] = 2
	d[3] = 20

	p, err := Decode(d)
	require.NoError(t, err)
	assert.Equal(t, CodeAccessAccept, p.Code)
	assert.Empty(t, p.Attributes)
}

func TestGetAttributes_ReturnsAllInOrder(t *testing.T) {
	p := New(CodeAccessRequest, 0)
	p.AddAttribute(NewAttribute(AttrProxyState, []byte("a")))
	p.AddAttribute(NewAttribute(AttrUserName, []byte("u")))
	p.AddAttribute(NewAttribute(AttrProxyState, []byte("b")))

	states := p.GetAttributes(AttrProxyState)
	require.Len(t, states, 2)
	assert.Equal(t, []byte("a"), states[0].Value)
	assert.Equal(t, []byte("b"), states[1].Value)
}

func TestAddAttributeByName(t *testing.T) {
	dict, err := dictionary.NewDefault()
	require.NoError(t, err)

	p := NewWithDictionary(CodeAccessRequest, 0, dict)
	require.NoError(t, p.AddAttributeByName("User-Name", []byte("bob")))

	attr, ok := p.GetAttribute(AttrUserName)
	require.True(t, ok)
	assert.Equal(t, []byte("bob"), attr.Value)

	assert.Error(t, p.AddAttributeByName("No-Such-Attribute", nil))
	assert.Error(t, New(CodeAccessRequest, 0).AddAttributeByName("User-Name", nil))
}

func TestCodeClassification(t *testing.T) {
	assert.True(t, CodeAccessRequest.IsRequest())
	assert.False(t, CodeAccessRequest.IsResponse())
	assert.True(t, CodeAccessAccept.IsResponse())
	assert.True(t, CodeAccountingResponse.IsResponse())
	assert.False(t, Code(99).IsValid())
	assert.Equal(t, "Access-Request", CodeAccessRequest.String())
	assert.Equal(t, "Unknown(99)", Code(99).String())
}

func TestDictionaryBackedAttributeTypes(t *testing.T) {
	assert.Equal(t, uint8(1), AttrUserName)
	assert.Equal(t, uint8(32), AttrNASIdentifier)
	assert.Equal(t, uint8(80), AttrMessageAuthenticator)
}
