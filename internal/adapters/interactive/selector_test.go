package interactive

import (
	"context"
	"testing"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzySearch(t *testing.T) {
	items := []string{"ice_arctic", "ice_snow", "localhost"}
	search := createFuzzySearchFunc(items)

	tests := []struct {
		input string
		want  []bool
	}{
		{"", []bool{true, true, true}},
		{"ICE", []bool{true, true, false}},
		{"isw", []bool{false, true, false}},
		{"lh", []bool{false, false, true}},
		{"xyz", []bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			for i := range items {
				assert.Equal(t, tt.want[i], search(tt.input, i), items[i])
			}
		})
	}
}

func TestSelectNetwork(t *testing.T) {
	_, err := SelectNetwork(nil)
	assert.Error(t, err)

	name, err := SelectNetwork([]string{"localhost"})
	require.NoError(t, err)
	assert.Equal(t, "localhost", name)
}

func TestConfirmer_NonInteractive(t *testing.T) {
	ok, err := NewConfirmerAdapter(&config.RuntimeConfig{NonInteractive: true}).Confirm(context.Background(), "Deploy?")
	assert.False(t, ok)
	assert.Error(t, err)
}
