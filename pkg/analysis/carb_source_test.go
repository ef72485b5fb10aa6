package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCarbSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		description string
		want        string
	}{
		{"Rice and beans with chicken", "rice"},
		{"grilled salmon, salad", ""},
		{"Chicken WRAP and chips", "wrap"},
		{"two slices of bread with jam", "bread"},
		{"a bowl of ricotta", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCarbSource(tt.description))
		})
	}
}
