package tdx_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildingAttribute() tdx.CustomAttribute {
	return tdx.CustomAttribute{
		ID:        1180,
		Name:      "Building Zone",
		FieldType: "dropdown",
		Choices: []tdx.Choice{
			{ID: 31, Name: "North Campus"},
			{ID: 32, Name: "South Campus"},
			{ID: 33, Name: "South Campus Annex"},
		},
	}
}

func TestFindChoice(t *testing.T) {
	t.Parallel()

	attr := buildingAttribute()

	choice, err := tdx.FindChoice(attr, "south campus")
	require.NoError(t, err)
	assert.Equal(t, 32, choice.ID)

	choice, err = tdx.FindChoice(attr, "33")
	require.NoError(t, err)
	assert.Equal(t, "South Campus Annex", choice.Name)

	_, err = tdx.FindChoice(attr, "West")
	require.Error(t, err)
	assert.True(t, tdx.IsNotFound(err))
	assert.Contains(t, err.Error(), "West")
	assert.Contains(t, err.Error(), "Building Zone")
}

func TestResolveCustomAttributeValue(t *testing.T) {
	t.Parallel()

	codec, err := tdx.NewDateCodec("-0500")
	require.NoError(t, err)

	got, err := tdx.ResolveCustomAttributeValue(buildingAttribute(), "north", codec)
	require.NoError(t, err)
	assert.Equal(t, tdx.CustomAttributeValue{ID: 1180, Value: "31"}, got)

	dateAttr := tdx.CustomAttribute{ID: 77, Name: "Warranty End", FieldType: "datepicker", DataType: "Date"}

	got, err = tdx.ResolveCustomAttributeValue(dateAttr, "2025-06-30", codec)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30T00:00:00-0500", got.Value)

	_, err = tdx.ResolveCustomAttributeValue(dateAttr, "eventually", codec)
	assert.True(t, tdx.IsValidation(err))

	textAttr := tdx.CustomAttribute{ID: 90, Name: "Notes", FieldType: "textbox", DataType: "String"}

	got, err = tdx.ResolveCustomAttributeValue(textAttr, 42, codec)
	require.NoError(t, err)
	assert.Equal(t, "42", got.Value)

	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err = tdx.ResolveCustomAttributeValue(textAttr, stamp, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", got.Value)

	_, err = tdx.ResolveCustomAttributeValue(buildingAttribute(), "Downtown", codec)
	assert.True(t, tdx.IsNotFound(err))
}

func TestMergeCustomAttributes(t *testing.T) {
	t.Parallel()

	current := []tdx.CustomAttributeValue{{ID: 1, Value: "a"}, {ID: 2, Value: "b"}}
	updates := []tdx.CustomAttributeValue{{ID: 2, Value: "B"}, {ID: 3, Value: "c"}}

	merged := tdx.MergeCustomAttributes(current, updates, false)
	assert.Equal(t, []tdx.CustomAttributeValue{{ID: 1, Value: "a"}, {ID: 2, Value: "B"}, {ID: 3, Value: "c"}}, merged)

	cleared := tdx.MergeCustomAttributes(current, updates, true)
	assert.Equal(t, updates, cleared)
}

func TestCustomAttributeValues(t *testing.T) {
	t.Parallel()

	items := []interface{}{
		map[string]interface{}{"ID": float64(5), "Value": "x", "Name": "Shape"},
		tdx.CustomAttributeValue{ID: 6, Value: "y"},
		tdx.CustomAttribute{ID: 7, Value: "z"},
	}

	got, err := tdx.CustomAttributeValues(items)
	require.NoError(t, err)
	assert.Equal(t, []tdx.CustomAttributeValue{{ID: 5, Value: "x"}, {ID: 6, Value: "y"}, {ID: 7, Value: "z"}}, got)

	_, err = tdx.CustomAttributeValues([]interface{}{"nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, tdx.ErrObjectType)

	list := tdx.AttributeList(got)
	assert.Len(t, list, 3)
}
