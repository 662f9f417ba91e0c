package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: DefaultTitle},
		{name: "blank", in: "  \t\n", want: DefaultTitle},
		{name: "trimmed", in: "  Notes ", want: "Notes"},
		{name: "kept", in: "Chapter 1", want: "Chapter 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}

func TestStringPtrAndDeref(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	p := StringPtr("x")
	if assert.NotNil(t, p) {
		assert.Equal(t, "x", *p)
	}
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(p))
}
