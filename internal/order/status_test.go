package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	cases := map[string]struct {
		from, to Status
		ok       bool
	}{
		"pending to processing":   {StatusPending, StatusProcessing, true},
		"pending to shipped":      {StatusPending, StatusShipped, true},
		"pending to cancelled":    {StatusPending, StatusCancelled, true},
		"pending to delivered":    {StatusPending, StatusDelivered, false},
		"processing to shipped":   {StatusProcessing, StatusShipped, true},
		"processing to cancelled": {StatusProcessing, StatusCancelled, true},
		"processing to pending":   {StatusProcessing, StatusPending, false},
		"shipped to delivered":    {StatusShipped, StatusDelivered, true},
		"shipped to cancelled":    {StatusShipped, StatusCancelled, false},
		"delivered is terminal":   {StatusDelivered, StatusCancelled, false},
		"cancelled is terminal":   {StatusCancelled, StatusPending, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)
	assert.False(t, st.Terminal())
	assert.True(t, StatusDelivered.Terminal())

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestShippingAddressMissing(t *testing.T) {
	assert.Empty(t, ShippingAddress{Name: "Ali", Phone: "050", Address: "King Rd", City: "Riyadh"}.Missing())
	assert.Equal(t, []string{"phone", "city"}, ShippingAddress{Name: "Ali", Phone: " ", Address: "King Rd"}.Missing())
}

func TestUnitsAggregatesVariants(t *testing.T) {
	o := Order{Items: []Item{
		{ProductID: "watch", Quantity: 1, Color: "Black"},
		{ProductID: "watch", Quantity: 2, Color: "Silver"},
		{ProductID: "bag", Quantity: 1},
	}}
	assert.Equal(t, map[string]int{"watch": 3, "bag": 1}, o.Units())
}
