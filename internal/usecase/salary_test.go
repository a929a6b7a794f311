package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestParseSalary(t *testing.T) {
	cases := []struct {
		in       string
		min, max *int64
	}{
		{"$150k-200k", i64(150000), i64(200000)},
		{"$150,000-$200,000", i64(150000), i64(200000)},
		{"$150k+", i64(150000), nil},
		{"Up to $200k", nil, i64(200000)},
		{"Competitive", nil, nil},
		{"£100k-150k", i64(100000), i64(150000)},
		{"€90,000 - €110,000", i64(90000), i64(110000)},
		{"120k", i64(120000), i64(120000)},
		{"185000", i64(185000), i64(185000)},
		{"12.5k+", i64(12500), nil},
		{"", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			min, max := ParseSalary(tc.in)
			assert.Equal(t, tc.min, min, "min")
			assert.Equal(t, tc.max, max, "max")
		})
	}
}

// Parsing the canonical rendering of a parse yields the same bounds.
func TestParseSalaryCanonicalizes(t *testing.T) {
	for _, in := range []string{"$150k-200k", "$150k+", "Up to $200k", "120k"} {
		min1, max1 := ParseSalary(in)
		min2, max2 := ParseSalary(FormatSalary(min1, max1))
		assert.Equal(t, min1, min2, in)
		assert.Equal(t, max1, max2, in)
	}
}
