package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRouteOf_InheritsFromParent(t *testing.T) {
	rt := &Runtime{}
	admin := NewAdminCmd(rt)

	users, _, err := admin.Find([]string{"users", "ls"})
	assert.NoError(t, err)
	path, ok := RouteOf(users)
	assert.True(t, ok)
	assert.Equal(t, "/admin/users", path)

	_, ok = RouteOf(admin)
	assert.False(t, ok, "the admin group itself is not a view")

	assert.False(t, IsStandalone(&cobra.Command{}))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "zero", "0", "-3", "1.5"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRecipeIngredients(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["tomato","feta"]`, []string{"tomato", "feta"}},
		{`[{"name":"rice","quantity":200,"unit":"g"},{"name":"salt"}]`, []string{"200 g rice", "salt"}},
		{`tomato, feta`, []string{"tomato, feta"}},
		{``, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, recipeIngredients(tt.raw), tt.raw)
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2 l", formatQuantity(2, "l"))
	assert.Equal(t, "0.25 kg", formatQuantity(0.25, "kg"))
	assert.Equal(t, "3", formatQuantity(3, ""))
}
