package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSalesColumns(t *testing.T) {
	tests := []struct {
		name         string
		columns      []string
		wantConsumer string
		wantB2B      string
		wantHasB2B   bool
	}{
		{
			name:         "amazon header with en dash",
			columns:      []string{"(Parent) ASIN", "SKU", "Ordered Product Sales", "Ordered product sales – B2B"},
			wantConsumer: "Ordered Product Sales",
			wantB2B:      "Ordered product sales – B2B",
			wantHasB2B:   true,
		},
		{
			name:         "hyphen separator without spaces",
			columns:      []string{"SKU", "ordered product sales", "ORDERED PRODUCT SALES-B2B"},
			wantConsumer: "ordered product sales",
			wantB2B:      "ORDERED PRODUCT SALES-B2B",
			wantHasB2B:   true,
		},
		{
			name:         "padded names",
			columns:      []string{"SKU", "  Ordered Product Sales ", " Ordered Product Sales  -  b2b"},
			wantConsumer: "  Ordered Product Sales ",
			wantB2B:      " Ordered Product Sales  -  b2b",
			wantHasB2B:   true,
		},
		{
			name:         "no b2b column",
			columns:      []string{"SKU", "Ordered Product Sales", "Units Ordered"},
			wantConsumer: "Ordered Product Sales",
			wantHasB2B:   false,
		},
		{
			name:         "suffix after b2b still matches",
			columns:      []string{"SKU", "Ordered Product Sales", "Ordered Product Sales - B2B (EUR)"},
			wantConsumer: "Ordered Product Sales",
			wantB2B:      "Ordered Product Sales - B2B (EUR)",
			wantHasB2B:   true,
		},
		{
			name:         "last matching column wins",
			columns:      []string{"Ordered Product Sales", "SKU", "ordered product sales"},
			wantConsumer: "ordered product sales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := ResolveSalesColumns(tt.columns)
			require.NoError(t, err)

			assert.Equal(t, tt.wantConsumer, cols.Consumer)
			assert.Equal(t, tt.columns[cols.ConsumerIndex], cols.Consumer)
			assert.Equal(t, tt.wantHasB2B, cols.HasB2B)
			assert.Equal(t, tt.wantB2B, cols.B2B)
			if tt.wantHasB2B {
				assert.Equal(t, tt.columns[cols.B2BIndex], cols.B2B)
			} else {
				assert.Equal(t, -1, cols.B2BIndex)
			}
		})
	}
}

func TestResolveSalesColumns_MissingConsumer(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{name: "empty header", columns: nil},
		{name: "only b2b", columns: []string{"SKU", "Ordered Product Sales – B2B"}},
		{name: "similar name", columns: []string{"SKU", "Ordered Product Sales Total"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSalesColumns(tt.columns)
			require.Error(t, err)

			var missing *MissingColumnError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, "Ordered Product Sales", missing.Column)
			assert.Equal(t, "couldn't find 'Ordered Product Sales' column", err.Error())
		})
	}
}
