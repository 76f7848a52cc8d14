// Package engine orchestrates settlement recalculation: it feeds market
// observations through the formula evaluator, reconciles quantities,
// and writes the result back under optimistic concurrency.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"oiltrading/core/formula"
	"oiltrading/core/marketdata"
	"oiltrading/core/money"
	"oiltrading/core/pricing"
	"oiltrading/core/quantity"
	"oiltrading/core/settlement"
	"oiltrading/internal/errors"
	"oiltrading/internal/logging"
	"oiltrading/internal/metrics"
)

// Engine recalculates settlements. All collaborators are injected; the
// engine itself performs no blocking I/O beyond them.
type Engine struct {
	prices marketdata.Reader
	store  settlement.Store
	eval   *pricing.Evaluator

	defaultCurrency string
	log             *zap.Logger
}

// Config configures the engine.
type Config struct {
	// DefaultCurrency denominates the settlement amount when the
	// specification carries no currency of its own.
	DefaultCurrency string
}

// New creates an engine.
func New(prices marketdata.Reader, store settlement.Store, eval *pricing.Evaluator, cfg Config) *Engine {
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = "USD"
	}
	return &Engine{
		prices:          prices,
		store:           store,
		eval:            eval,
		defaultCurrency: currency,
		log:             logging.Logger,
	}
}

// RecalculateRequest identifies the settlement to recalculate and the
// pricing specification that governs it.
type RecalculateRequest struct {
	SettlementID uuid.UUID
	Spec         formula.Specification

	// EventDate is the optional contract-event date passed through to
	// the evaluator.
	EventDate *time.Time
}

// Recalculate evaluates the specification against market data and
// applies the result to the settlement. A concurrent recalculation of
// the same settlement surfaces the store's conflict error unchanged;
// retry policy belongs to the caller.
func (e *Engine) Recalculate(ctx context.Context, req RecalculateRequest) (*settlement.Settlement, error) {
	s, err := e.store.Get(ctx, req.SettlementID)
	if err != nil {
		return nil, err
	}
	if s.IsFinalized() {
		return nil, errors.State("settlement already finalized: " + s.ID().String())
	}

	observations, err := e.fetchObservations(ctx, req.Spec)
	if err != nil {
		return nil, err
	}

	price, err := e.eval.Evaluate(req.Spec, observations, req.EventDate)
	if err != nil {
		return nil, err
	}

	qty, mode, err := e.reconcileQuantity(s.Quantity(), req.Spec)
	if err != nil {
		return nil, err
	}

	amount, err := money.New(price.Mul(qty.Value()), e.settlementCurrency(req.Spec))
	if err != nil {
		return nil, err
	}

	if err := s.ApplyCalculation(price, amount, mode); err != nil {
		return nil, err
	}

	if err := e.store.Update(ctx, s); err != nil {
		if errors.IsType(err, errors.TypeConflict) {
			metrics.StoreConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.RecalculationsTotal.Inc()
	e.log.Info("settlement recalculated",
		zap.String("settlement_id", s.ID().String()),
		zap.String("contract_ref", s.ContractRef()),
		zap.String("formula", req.Spec.Formula()),
		zap.String("benchmark_price", price.String()),
		zap.String("amount", amount.String()),
		zap.String("mode", string(mode)),
	)
	return s, nil
}

// fetchObservations loads the index series for the specification's
// pricing period. Fixed and custom specifications need no data.
func (e *Engine) fetchObservations(ctx context.Context, spec formula.Specification) (map[string][]decimal.Decimal, error) {
	if spec.Kind() != formula.KindIndex && spec.Kind() != formula.KindMixedUnit {
		return nil, nil
	}

	start, end, ok := spec.PricingPeriod()
	if !ok {
		return nil, errors.Validation("pricing period not set on specification " + spec.Formula())
	}

	series, err := e.prices.PricesFor(ctx, spec.IndexName(), start, end)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, errors.DataUnavailable(spec.IndexName())
	}
	return map[string][]decimal.Decimal{spec.IndexName(): series.Values()}, nil
}

// reconcileQuantity converts the settlement quantity into the unit the
// benchmark price is quoted in. Only mixed-unit specifications convert;
// everything else consumes the measured quantity as reported.
func (e *Engine) reconcileQuantity(qty quantity.Quantity, spec formula.Specification) (quantity.Quantity, quantity.CalculationMode, error) {
	if spec.Kind() != formula.KindMixedUnit {
		return qty, quantity.ActualMeasuredQuantities, nil
	}

	conv, err := quantity.Convert(qty, spec.BenchmarkUnit(), spec.CalculationMode(), spec.ConversionRatio())
	if err != nil {
		return quantity.Quantity{}, "", err
	}
	return conv.Quantity, conv.ModeUsed, nil
}

func (e *Engine) settlementCurrency(spec formula.Specification) string {
	if c := spec.Currency(); c != "" {
		return c
	}
	return e.defaultCurrency
}
