package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	dict, err := NewDefault()
	require.NoError(t, err)

	attr, ok := dict.LookupStandardByName("User-Name")
	require.True(t, ok)
	assert.Equal(t, uint32(1), attr.ID)
	assert.Equal(t, DataTypeString, attr.DataType)

	attr, ok = dict.LookupStandardByID(32)
	require.True(t, ok)
	assert.Equal(t, "NAS-Identifier", attr.Name)

	attr, ok = dict.LookupStandardByName("Message-Authenticator")
	require.True(t, ok)
	assert.Equal(t, uint32(80), attr.ID)
}

func TestGetAttributeTypeByName(t *testing.T) {
	dict, err := NewDefault()
	require.NoError(t, err)

	id, err := dict.GetAttributeTypeByName("NAS-Identifier")
	require.NoError(t, err)
	assert.Equal(t, uint8(32), id)

	_, err = dict.GetAttributeTypeByName("No-Such-Attribute")
	assert.Error(t, err)
}

func TestGetAttributeNameByType(t *testing.T) {
	dict, err := NewDefault()
	require.NoError(t, err)

	assert.Equal(t, "User-Password", dict.GetAttributeNameByType(2))
	assert.Equal(t, "Attr-200", dict.GetAttributeNameByType(200))
}

func TestAddStandardAttributes_RejectsDuplicateName(t *testing.T) {
	dict := New()
	err := dict.AddStandardAttributes([]*AttributeDefinition{
		{ID: 1, Name: "User-Name", DataType: DataTypeString},
	})
	require.NoError(t, err)

	err = dict.AddStandardAttributes([]*AttributeDefinition{
		{ID: 99, Name: "User-Name", DataType: DataTypeString},
	})
	assert.Error(t, err)
}
