package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oiltrading/core/money"
	"oiltrading/core/quantity"
	"oiltrading/core/settlement"
	"oiltrading/internal/errors"
)

const defaultSettlementTable = "settlements"

// SettlementStore persists settlements with a version column as the
// optimistic concurrency token.
type SettlementStore struct {
	db    *sql.DB
	table string
}

// SettlementOption configures the store.
type SettlementOption func(*SettlementStore)

// WithSettlementTable overrides the default table name.
func WithSettlementTable(table string) SettlementOption {
	return func(s *SettlementStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSettlementStore creates a store over the given handle.
func NewSettlementStore(db *sql.DB, opts ...SettlementOption) *SettlementStore {
	s := &SettlementStore{db: db, table: defaultSettlementTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements settlement.Store.
func (s *SettlementStore) Get(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errors.TypeConfig, "settlement store: nil db")
	}

	query := fmt.Sprintf(`
SELECT contract_ref, amendment_type, quantity_value, quantity_unit,
       benchmark_price, benchmark_amount, charges, currency, mode_used,
       status, is_finalized, finalized_at, finalized_by, version, created_at
FROM %s
WHERE id = $1`, s.table)

	var (
		contractRef     string
		amendmentType   string
		quantityValue   decimal.Decimal
		quantityUnit    string
		benchmarkPrice  decimal.Decimal
		benchmarkAmount decimal.Decimal
		charges         decimal.Decimal
		currency        string
		modeUsed        sql.NullString
		status          string
		isFinalized     bool
		finalizedAt     sql.NullTime
		finalizedBy     sql.NullString
		version         int
		createdAt       time.Time
	)
	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&contractRef, &amendmentType, &quantityValue, &quantityUnit,
		&benchmarkPrice, &benchmarkAmount, &charges, &currency, &modeUsed,
		&status, &isFinalized, &finalizedAt, &finalizedBy, &version, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("settlement", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "load settlement", err)
	}

	unit, err := quantity.ParseUnit(quantityUnit)
	if err != nil {
		return nil, err
	}
	amount, err := money.New(benchmarkAmount, currency)
	if err != nil {
		return nil, err
	}
	chargesMoney, err := money.New(charges, currency)
	if err != nil {
		return nil, err
	}

	return settlement.Rehydrate(
		id,
		contractRef,
		settlement.AmendmentType(amendmentType),
		quantity.New(quantityValue, unit),
		benchmarkPrice,
		amount,
		chargesMoney,
		quantity.CalculationMode(modeUsed.String),
		settlement.Status(status),
		isFinalized,
		finalizedAt.Time,
		finalizedBy.String,
		version,
		createdAt,
	), nil
}

// Create implements settlement.Store: inserts the settlement at
// version 1.
func (s *SettlementStore) Create(ctx context.Context, agg *settlement.Settlement) error {
	if s == nil || s.db == nil {
		return errors.New(errors.TypeConfig, "settlement store: nil db")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, contract_ref, amendment_type, quantity_value, quantity_unit,
	benchmark_price, benchmark_amount, charges, currency, mode_used,
	status, is_finalized, finalized_at, finalized_by, version, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, $15)`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		agg.ID(),
		agg.ContractRef(),
		string(agg.AmendmentType()),
		agg.Quantity().Value(),
		agg.Quantity().Unit().String(),
		agg.BenchmarkPrice(),
		agg.BenchmarkAmount().Amount(),
		agg.Charges().Amount(),
		settlementCurrency(agg),
		string(agg.ModeUsed()),
		string(agg.Status()),
		agg.IsFinalized(),
		nullableTime(agg.FinalizedAt()),
		agg.FinalizedBy(),
		agg.CreatedAt().UTC(),
	)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "insert settlement", err)
	}
	agg.MarkPersisted(1)
	return nil
}

// Update implements settlement.Store. The version predicate makes a
// concurrent write visible as zero affected rows, surfaced as a
// conflict rather than retried.
func (s *SettlementStore) Update(ctx context.Context, agg *settlement.Settlement) error {
	if s == nil || s.db == nil {
		return errors.New(errors.TypeConfig, "settlement store: nil db")
	}

	query := fmt.Sprintf(`
UPDATE %s SET
	quantity_value = $1,
	quantity_unit = $2,
	benchmark_price = $3,
	benchmark_amount = $4,
	charges = $5,
	currency = $6,
	mode_used = $7,
	status = $8,
	is_finalized = $9,
	finalized_at = $10,
	finalized_by = $11,
	version = version + 1
WHERE id = $12 AND version = $13`, s.table)

	res, err := s.db.ExecContext(ctx, query,
		agg.Quantity().Value(),
		agg.Quantity().Unit().String(),
		agg.BenchmarkPrice(),
		agg.BenchmarkAmount().Amount(),
		agg.Charges().Amount(),
		settlementCurrency(agg),
		string(agg.ModeUsed()),
		string(agg.Status()),
		agg.IsFinalized(),
		nullableTime(agg.FinalizedAt()),
		agg.FinalizedBy(),
		agg.ID(),
		agg.Version(),
	)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "update settlement", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "update settlement", err)
	}
	if affected == 0 {
		return errors.Conflict("settlement", agg.ID().String())
	}
	agg.MarkPersisted(agg.Version() + 1)
	return nil
}

func settlementCurrency(agg *settlement.Settlement) string {
	if c := agg.BenchmarkAmount().Currency(); c != "" {
		return c
	}
	return "USD"
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
