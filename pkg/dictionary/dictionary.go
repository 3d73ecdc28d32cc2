// Package dictionary maps RADIUS attribute names to their wire types and
// data types, so callers can build packets from "Name = value" input and
// print received attributes by name.
package dictionary

import "fmt"

// DataType tells a caller how to encode an attribute's value on the wire.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeOctets  DataType = "octets"
	DataTypeInteger DataType = "integer"
	DataTypeIPAddr  DataType = "ipaddr"
	DataTypeDate    DataType = "date"
)

// EncryptionType names the obfuscation scheme an attribute's value
// requires before transmission; empty means none.
type EncryptionType string

const (
	EncryptionNone           EncryptionType = ""
	EncryptionUserPassword   EncryptionType = "user-password"
	EncryptionTunnelPassword EncryptionType = "tunnel-password"
)

// AttributeDefinition is one dictionary entry.
type AttributeDefinition struct {
	ID         uint32         `yaml:"id"`
	Name       string         `yaml:"name"`
	DataType   DataType       `yaml:"data_type"`
	Encryption EncryptionType `yaml:"encryption,omitempty"`
	HasTag     bool           `yaml:"has_tag,omitempty"`
}

// Dictionary indexes attribute definitions by ID and by name.
type Dictionary struct {
	byID   map[uint32]*AttributeDefinition
	byName map[string]*AttributeDefinition
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		byID:   make(map[uint32]*AttributeDefinition),
		byName: make(map[string]*AttributeDefinition),
	}
}

// AddStandardAttributes indexes attrs, rejecting duplicate names so two
// merged attribute sets cannot silently shadow each other.
func (d *Dictionary) AddStandardAttributes(attrs []*AttributeDefinition) error {
	for _, attr := range attrs {
		if _, exists := d.byName[attr.Name]; exists {
			return fmt.Errorf("duplicate attribute name %q", attr.Name)
		}
	}
	for _, attr := range attrs {
		d.byID[attr.ID] = attr
		d.byName[attr.Name] = attr
	}
	return nil
}

// LookupStandardByID finds an attribute definition by wire type.
func (d *Dictionary) LookupStandardByID(id uint32) (*AttributeDefinition, bool) {
	attr, ok := d.byID[id]
	return attr, ok
}

// LookupStandardByName finds an attribute definition by name.
func (d *Dictionary) LookupStandardByName(name string) (*AttributeDefinition, bool) {
	attr, ok := d.byName[name]
	return attr, ok
}

// GetAttributeTypeByName returns the one-octet wire type for name.
func (d *Dictionary) GetAttributeTypeByName(name string) (uint8, error) {
	attr, ok := d.byName[name]
	if !ok {
		return 0, fmt.Errorf("attribute %q not found in dictionary", name)
	}
	return uint8(attr.ID), nil
}

// GetAttributeNameByType returns the name for a wire type, falling back
// to a generic "Attr-N" label for types outside the dictionary.
func (d *Dictionary) GetAttributeNameByType(attrType uint8) string {
	if attr, ok := d.byID[uint32(attrType)]; ok {
		return attr.Name
	}
	return fmt.Sprintf("Attr-%d", attrType)
}
