package product

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRange(t *testing.T) {
	cases := map[string]struct {
		in      string
		lo, hi  float64
		wantErr bool
	}{
		"empty":         {in: ""},
		"closed range":  {in: "100-300", lo: 100, hi: 300},
		"open range":    {in: "500+", lo: 500},
		"bare minimum":  {in: "50", lo: 50},
		"trailing dash": {in: "50-", lo: 50},
		"inverted":      {in: "300-100", wantErr: true},
		"garbage":       {in: "cheap", wantErr: true},
		"negative":      {in: "-5+", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			lo, hi, err := ParsePriceRange(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidProduct)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lo, lo)
			assert.Equal(t, tc.hi, hi)
		})
	}
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, s)

	s, err = ParseSort("price_high")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, s)

	_, err = ParseSort("random")
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestListQuery(t *testing.T) {
	t.Run("storefront default", func(t *testing.T) {
		q, args := listQuery("s1", Filter{})
		assert.Contains(t, q, "status='active'")
		assert.True(t, strings.HasSuffix(q, "ORDER BY created_at DESC"))
		assert.Equal(t, []any{"s1"}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		q, args := listQuery("s1", Filter{
			Category: "Electronics",
			MinPrice: 100,
			MaxPrice: 300,
			Search:   "Wat_ch",
			Sort:     SortPriceLow,
			Limit:    20,
			Offset:   40,
		})
		assert.Contains(t, q, "category=$2")
		assert.Contains(t, q, ">= $3")
		assert.Contains(t, q, "<= $4")
		assert.Contains(t, q, "lower(array_to_string(tags, ' ')) LIKE $5")
		assert.Contains(t, q, "ORDER BY "+effectivePriceSQL+" ASC")
		assert.Contains(t, q, "LIMIT $6")
		assert.Contains(t, q, "OFFSET $7")
		assert.Equal(t, []any{"s1", "Electronics", 100.0, 300.0, `%wat\_ch%`, 20, 40}, args)
	})

	t.Run("trader view includes inactive", func(t *testing.T) {
		q, _ := listQuery("s1", Filter{IncludeInactive: true, Sort: SortName})
		assert.NotContains(t, q, "status='active'")
		assert.Contains(t, q, "ORDER BY name ASC")
	})
}
