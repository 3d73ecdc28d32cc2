package packet

import "fmt"

// Attribute is one type-length-value entry in a packet's attribute list.
// The wire length octet is derived from the value, never stored.
type Attribute struct {
	Type  uint8
	Value []byte
}

// NewAttribute builds an attribute with a raw value. The value is used
// as-is; data-type encoding is the caller's job (see cmd/radius-query
// for the dictionary-driven version).
func NewAttribute(attrType uint8, value []byte) *Attribute {
	return &Attribute{Type: attrType, Value: value}
}

// GetValue returns the raw attribute value.
func (a *Attribute) GetValue() []byte {
	return a.Value
}

// wireLen is the attribute's encoded size including its two header octets.
func (a *Attribute) wireLen() int {
	return 2 + len(a.Value)
}

func (a *Attribute) String() string {
	return fmt.Sprintf("Type=%d, Length=%d, Value=%x", a.Type, a.wireLen(), a.Value)
}
