// Package marketdata provides market index price observations and the
// read contract the pricing engine consumes them through.
package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Price is a single observed market price for a product on a date.
type Price struct {
	// ProductCode is the index code, e.g. BRENT, WTI, 380CST
	ProductCode string `json:"product_code"`

	// ProductName is the display name, e.g. "Brent Crude Oil"
	ProductName string `json:"product_name,omitempty"`

	// Date is the observation date
	Date time.Time `json:"price_date"`

	// Value is the observed price
	Value decimal.Decimal `json:"price"`

	// Currency is the quotation currency
	Currency string `json:"currency"`

	// Unit is the quotation unit (MT, BBL)
	Unit string `json:"unit,omitempty"`

	// Source records where the observation came from
	Source string `json:"source,omitempty"`
}

// Series is an ordered run of observations for one product.
type Series []Price

// SortByDate orders the series chronologically in place. FIRST/LAST
// aggregation depends on this ordering.
func (s Series) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Values returns the observation values in series order.
func (s Series) Values() []decimal.Decimal {
	values := make([]decimal.Decimal, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Between returns the observations with dates in [from, to], preserving
// order.
func (s Series) Between(from, to time.Time) Series {
	var out Series
	for _, p := range s {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Reader supplies ordered historical prices for a product and window.
// Implementations must return observations in chronological order.
type Reader interface {
	PricesFor(ctx context.Context, productCode string, from, to time.Time) (Series, error)
}

// StaticReader is an in-memory Reader over preloaded series, used by the
// CLI and tests.
type StaticReader struct {
	series map[string]Series
}

// NewStaticReader builds a reader over the given series. Each series is
// sorted chronologically on ingestion.
func NewStaticReader(series map[string]Series) *StaticReader {
	owned := make(map[string]Series, len(series))
	for code, s := range series {
		cp := make(Series, len(s))
		copy(cp, s)
		cp.SortByDate()
		owned[code] = cp
	}
	return &StaticReader{series: owned}
}

// PricesFor implements Reader.
func (r *StaticReader) PricesFor(_ context.Context, productCode string, from, to time.Time) (Series, error) {
	s, ok := r.series[productCode]
	if !ok {
		return nil, nil
	}
	if from.IsZero() && to.IsZero() {
		out := make(Series, len(s))
		copy(out, s)
		return out, nil
	}
	return s.Between(from, to), nil
}
