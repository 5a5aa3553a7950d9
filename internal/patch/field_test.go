package patch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sumire/hess/internal/patch"
)

func TestField_States(t *testing.T) {
	var zero patch.Field[string]
	assert.True(t, zero.IsAbsent())

	absent := patch.Absent[string]()
	null := patch.Null[string]()
	set := patch.Set("bio")

	assert.Equal(t, patch.StateAbsent, absent.State())
	assert.Equal(t, patch.StateNull, null.State())
	assert.Equal(t, patch.StateSet, set.State())

	_, ok := null.Get()
	assert.False(t, ok)
	v, ok := set.Get()
	assert.True(t, ok)
	assert.Equal(t, "bio", v)

	assert.Nil(t, null.Ptr())
	assert.Equal(t, "bio", *set.Ptr())
	assert.Equal(t, "", absent.Value())
}

func TestFromOK(t *testing.T) {
	assert.True(t, patch.FromOK(3, true).IsSet())
	assert.True(t, patch.FromOK(3, false).IsAbsent())
}

func TestMap(t *testing.T) {
	assert.Equal(t, "ABC", patch.Map(patch.Set("abc"), strings.ToUpper).Value())
	assert.True(t, patch.Map(patch.Null[string](), strings.ToUpper).IsNull())
	assert.True(t, patch.Map(patch.Absent[string](), strings.ToUpper).IsAbsent())
}
