package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cases := []struct {
		name       string
		prefix     string
		currentMax string
		want       string
	}{
		{"first code when none exist", "PED", "", "PED0001"},
		{"increments greatest code", "PED", "PED0004", "PED0005"},
		{"supplier prefix", "PRV", "PRV0011", "PRV0012"},
		{"product prefix", "PRO", "PRO0099", "PRO0100"},
		{"grows past the pad width", "PED", "PED9999", "PED10000"},
		{"unparseable suffix falls back to 0001", "PED", "PED-borrador", "PED0001"},
		{"suffix digits only are considered", "PED", "X7PED0042", "PED0043"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.prefix, tc.currentMax))
		})
	}
}
