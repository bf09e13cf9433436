package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFundingPercent(t *testing.T) {
	cases := []struct {
		name   string
		raised float64
		goal   float64
		want   int
	}{
		{"zero goal", 100, 0, 0},
		{"negative goal", 100, -50, 0},
		{"zero raised", 0, 1000, 0},
		{"partial", 450, 1000, 45},
		{"rounds", 333, 1000, 33},
		{"exactly funded", 1000, 1000, 100},
		{"over-funded clamps", 1500, 1000, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FundingPercent(tc.raised, tc.goal))
		})
	}
}
