package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a, b", []string{" a", " b"}},
		{"a,,b,", []string{"a", "", "b", ""}},
		{"solo", []string{"solo"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitTags(tt.in), "input %q", tt.in)
	}
}

func TestAnyEmpty(t *testing.T) {
	assert.False(t, AnyEmpty())
	assert.False(t, AnyEmpty("a", "b"))
	assert.True(t, AnyEmpty("a", ""))
	assert.True(t, AnyEmpty(""))
}
