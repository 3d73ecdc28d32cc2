// Package packet encodes and decodes RFC 2865 RADIUS packets. It is the
// wire codec the query scheduler calls for attribute append, shape
// validation, and header access; authenticator math lives in pkg/crypto.
package packet

import (
	"fmt"

	"github.com/vitalvas/radqueue/pkg/dictionary"
)

const (
	// HeaderLength is the fixed RADIUS header size: code, identifier,
	// length, authenticator.
	HeaderLength = 20
	// MaxPacketLength caps a RADIUS datagram per RFC 2865 §3.
	MaxPacketLength = 4096
	// AuthenticatorLength is the size of the header authenticator field.
	AuthenticatorLength = 16
	// maxAttributeValueLength is what fits in a one-octet attribute
	// length after its two header octets.
	maxAttributeValueLength = 253
)

// Packet is a decoded RADIUS packet. The wire Length field is derived,
// not stored: Encode computes it from the attribute list.
type Packet struct {
	Code          Code
	Identifier    uint8
	Authenticator [AuthenticatorLength]byte
	Attributes    []*Attribute

	// Dict, when set, backs name-based attribute operations.
	Dict *dictionary.Dictionary
}

// New creates an empty packet with the given code and identifier.
func New(code Code, identifier uint8) *Packet {
	return &Packet{Code: code, Identifier: identifier}
}

// NewWithDictionary creates a packet whose name-based attribute
// operations resolve through dict.
func NewWithDictionary(code Code, identifier uint8, dict *dictionary.Dictionary) *Packet {
	p := New(code, identifier)
	p.Dict = dict
	return p
}

// Len returns the encoded size of the packet in bytes.
func (p *Packet) Len() int {
	n := HeaderLength
	for _, attr := range p.Attributes {
		n += attr.wireLen()
	}
	return n
}

// AddAttribute appends attr to the packet's attribute list.
func (p *Packet) AddAttribute(attr *Attribute) {
	p.Attributes = append(p.Attributes, attr)
}

// AddAttributeByName resolves name through the packet's dictionary and
// appends an attribute with the given raw value.
func (p *Packet) AddAttributeByName(name string, value []byte) error {
	if p.Dict == nil {
		return fmt.Errorf("packet has no dictionary")
	}
	attrType, err := p.Dict.GetAttributeTypeByName(name)
	if err != nil {
		return err
	}
	p.AddAttribute(NewAttribute(attrType, value))
	return nil
}

// GetAttribute returns the first attribute of the given type.
func (p *Packet) GetAttribute(attrType uint8) (*Attribute, bool) {
	for _, attr := range p.Attributes {
		if attr.Type == attrType {
			return attr, true
		}
	}
	return nil, false
}

// GetAttributes returns every attribute of the given type, in order.
func (p *Packet) GetAttributes(attrType uint8) []*Attribute {
	var out []*Attribute
	for _, attr := range p.Attributes {
		if attr.Type == attrType {
			out = append(out, attr)
		}
	}
	return out
}

// IsValid checks the packet can be encoded: known code, attribute values
// within the one-octet length limit, total within MaxPacketLength.
func (p *Packet) IsValid() error {
	if !p.Code.IsValid() {
		return fmt.Errorf("invalid packet code %d", p.Code)
	}
	for _, attr := range p.Attributes {
		if len(attr.Value) > maxAttributeValueLength {
			return fmt.Errorf("attribute %d value too long: %d bytes", attr.Type, len(attr.Value))
		}
	}
	if p.Len() > MaxPacketLength {
		return fmt.Errorf("packet too long: %d bytes", p.Len())
	}
	return nil
}

// Encode produces the RFC 2865 §3 wire form.
func (p *Packet) Encode() ([]byte, error) {
	if err := p.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid packet: %w", err)
	}

	length := p.Len()
	out := make([]byte, length)
	out[0] = byte(p.Code)
	out[1] = p.Identifier
	out[2] = byte(length >> 8)
	out[3] = byte(length)
	copy(out[4:HeaderLength], p.Authenticator[:])

	off := HeaderLength
	for _, attr := range p.Attributes {
		out[off] = attr.Type
		out[off+1] = byte(attr.wireLen())
		copy(out[off+2:], attr.Value)
		off += attr.wireLen()
	}
	return out, nil
}

// Decode parses wire data, validating the header length field and
// walking every attribute. It is the packet sanity check the receive
// path runs before any identifier lookup.
func Decode(data []byte) (*Packet, error) {
	if len(data) < HeaderLength {
		return nil, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	if len(data) > MaxPacketLength {
		return nil, fmt.Errorf("packet too long: %d bytes", len(data))
	}

	length := int(data[2])<<8 | int(data[3])
	if length != len(data) {
		return nil, fmt.Errorf("length field %d does not match datagram size %d", length, len(data))
	}

	p := &Packet{
		Code:       Code(data[0]),
		Identifier: data[1],
	}
	copy(p.Authenticator[:], data[4:HeaderLength])

	off := HeaderLength
	for off < length {
		if off+2 > length {
			return nil, fmt.Errorf("truncated attribute header at offset %d", off)
		}
		attrLen := int(data[off+1])
		if attrLen < 2 {
			return nil, fmt.Errorf("attribute length %d below minimum at offset %d", attrLen, off)
		}
		if off+attrLen > length {
			return nil, fmt.Errorf("attribute at offset %d overruns packet", off)
		}

		value := make([]byte, attrLen-2)
		copy(value, data[off+2:off+attrLen])
		p.Attributes = append(p.Attributes, &Attribute{Type: data[off], Value: value})
		off += attrLen
	}

	return p, nil
}

func (p *Packet) String() string {
	return fmt.Sprintf("Code=%s(%d), ID=%d, Length=%d, Attributes=%d",
		p.Code, uint8(p.Code), p.Identifier, p.Len(), len(p.Attributes))
}
