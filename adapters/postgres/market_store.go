// Package postgres provides the pgx-backed market price reader and
// settlement store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/jackc/pgx/v5/stdlib"

	"oiltrading/core/marketdata"
	"oiltrading/internal/errors"
)

const defaultMarketPriceTable = "market_prices"

// Open opens a database handle using the pgx stdlib driver.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "open database", err)
	}
	return db, nil
}

// MarketPriceStore reads index observations from the market_prices
// table the back office ingests vendor data into.
type MarketPriceStore struct {
	db    *sql.DB
	table string
}

// MarketPriceOption configures the store.
type MarketPriceOption func(*MarketPriceStore)

// WithMarketPriceTable overrides the default table name.
func WithMarketPriceTable(table string) MarketPriceOption {
	return func(s *MarketPriceStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewMarketPriceStore creates a reader over the given handle.
func NewMarketPriceStore(db *sql.DB, opts ...MarketPriceOption) *MarketPriceStore {
	s := &MarketPriceStore{db: db, table: defaultMarketPriceTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PricesFor implements marketdata.Reader. Observations come back in
// chronological order; FIRST/LAST aggregation relies on it.
func (s *MarketPriceStore) PricesFor(ctx context.Context, productCode string, from, to time.Time) (marketdata.Series, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errors.TypeConfig, "market price store: nil db")
	}
	if productCode == "" {
		return nil, errors.Validation("product code is required")
	}

	query := fmt.Sprintf(`
SELECT product_name, price_date, price, currency, unit, source
FROM %s
WHERE product_code = $1 AND price_date >= $2 AND price_date <= $3
ORDER BY price_date`, s.table)

	rows, err := s.db.QueryContext(ctx, query, productCode, from.UTC(), to.UTC())
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "query market prices", err)
	}
	defer rows.Close()

	var series marketdata.Series
	for rows.Next() {
		var (
			name     sql.NullString
			date     time.Time
			value    decimal.Decimal
			currency string
			unit     sql.NullString
			source   sql.NullString
		)
		if err := rows.Scan(&name, &date, &value, &currency, &unit, &source); err != nil {
			return nil, errors.Wrap(errors.TypeInternal, "scan market price", err)
		}
		series = append(series, marketdata.Price{
			ProductCode: productCode,
			ProductName: name.String,
			Date:        date,
			Value:       value,
			Currency:    currency,
			Unit:        unit.String,
			Source:      source.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "iterate market prices", err)
	}
	return series, nil
}
