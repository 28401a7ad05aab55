package reconcile_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/cannatrace/internal/application/reconcile"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	movements []*entity.Movement
}

func (r *fakeLedger) Append(_ context.Context, m *entity.Movement) error {
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *fakeLedger) GetByID(context.Context, string) (*entity.Movement, error) { return nil, nil }
func (r *fakeLedger) GetByIDForUpdate(context.Context, string) (*entity.Movement, error) {
	return nil, nil
}
func (r *fakeLedger) MarkVoided(context.Context, string, string, string, time.Time) error {
	return nil
}
func (r *fakeLedger) List(context.Context, repository.MovementFilter) ([]*entity.Movement, error) {
	return nil, nil
}

func (r *fakeLedger) SumSigned(_ context.Context, productID string, siteID *int, batchNumber string, asOf time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.ProductID != productID || m.RecordedAt.After(asOf) {
			continue
		}
		if siteID != nil && m.SiteID != *siteID {
			continue
		}
		if batchNumber != "" && m.BatchNumber != batchNumber {
			continue
		}
		sum = sum.Add(m.SignedQuantity())
	}
	return sum, nil
}

type fakeLevels struct {
	rows map[string]*entity.StockLevel
}

func newFakeLevels() *fakeLevels {
	return &fakeLevels{rows: make(map[string]*entity.StockLevel)}
}

func key(productID string, siteID int, batchNumber string) string {
	return fmt.Sprintf("%s|%d|%s", productID, siteID, batchNumber)
}

func (r *fakeLevels) Get(_ context.Context, productID string, siteID int, batchNumber string) (*entity.StockLevel, error) {
	row, ok := r.rows[key(productID, siteID, batchNumber)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeLevels) SumProductSite(context.Context, string, int) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *fakeLevels) ApplyDelta(_ context.Context, productID string, siteID int, batchNumber string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	k := key(productID, siteID, batchNumber)
	row, ok := r.rows[k]
	if !ok {
		row = &entity.StockLevel{ProductID: productID, SiteID: siteID, BatchNumber: batchNumber}
		r.rows[k] = row
	}
	row.Quantity = row.Quantity.Add(delta)
	if at.After(row.LastMovementRecordedAt) {
		row.LastMovementRecordedAt = at
	}
	row.UpdatedAt = at
	return row.Quantity, nil
}

func (r *fakeLevels) Overwrite(_ context.Context, productID string, siteID int, batchNumber string, quantity decimal.Decimal, at time.Time) error {
	k := key(productID, siteID, batchNumber)
	row, ok := r.rows[k]
	if !ok {
		row = &entity.StockLevel{ProductID: productID, SiteID: siteID, BatchNumber: batchNumber}
		r.rows[k] = row
	}
	row.Quantity = quantity
	if at.After(row.LastMovementRecordedAt) {
		row.LastMovementRecordedAt = at
	}
	row.UpdatedAt = at
	return nil
}

func (r *fakeLevels) List(_ context.Context, productID string, siteID *int) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, row := range r.rows {
		if productID != "" && row.ProductID != productID {
			continue
		}
		if siteID != nil && row.SiteID != *siteID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return key(out[i].ProductID, out[i].SiteID, out[i].BatchNumber) <
			key(out[j].ProductID, out[j].SiteID, out[j].BatchNumber)
	})
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, ledger *fakeLedger, levels *fakeLevels, productID string, siteID int, batch, qty string) {
	t.Helper()
	ctx := context.Background()
	m := &entity.Movement{
		ID:          fmt.Sprintf("%s-%d-%s", productID, siteID, batch),
		ProductID:   productID,
		SiteID:      siteID,
		BatchNumber: batch,
		Direction:   entity.DirectionIN,
		Quantity:    decimal.RequireFromString(qty),
		RecordedAt:  t0,
	}
	require.NoError(t, ledger.Append(ctx, m))
	_, err := levels.ApplyDelta(ctx, productID, siteID, batch, m.SignedQuantity(), t0)
	require.NoError(t, err)
}

func TestReconcile_SinDriftNoReporta(t *testing.T) {
	ledger := &fakeLedger{}
	levels := newFakeLevels()
	seed(t, ledger, levels, "CULT-001", 4, "0401202503100001", "1000")
	seed(t, ledger, levels, "PROD-002", 4, "0401202503100002", "95")

	uc := reconcile.NewUseCase(ledger, levels, logger.Discard()).
		WithClock(func() time.Time { return t0.Add(time.Hour) })

	reports, err := uc.Reconcile(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, reports, "proyección consistente: cero reportes")
}

// Drift inyectado de +10 en una fila: un solo reporte con el delta exacto y la
// fila reparada al valor del libro.
func TestReconcile_DetectaYReparaDrift(t *testing.T) {
	ledger := &fakeLedger{}
	levels := newFakeLevels()
	seed(t, ledger, levels, "CULT-001", 4, "0401202503100001", "1000")
	seed(t, ledger, levels, "PROD-002", 4, "0401202503100002", "95")

	ctx := context.Background()
	// Corromper la proyección: +10 sobre el valor correcto.
	require.NoError(t, levels.Overwrite(ctx, "CULT-001", 4, "0401202503100001",
		decimal.RequireFromString("1010"), t0))

	now := t0.Add(time.Hour)
	uc := reconcile.NewUseCase(ledger, levels, logger.Discard()).
		WithClock(func() time.Time { return now })

	reports, err := uc.Reconcile(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1, "solo la fila corrupta genera reporte")

	r := reports[0]
	assert.Equal(t, "CULT-001", r.ProductID)
	assert.True(t, r.Cached.Equal(decimal.RequireFromString("1010")))
	assert.True(t, r.Recomputed.Equal(decimal.RequireFromString("1000")))
	assert.True(t, r.Delta.Equal(decimal.RequireFromString("10")), "delta = cache - libro")
	assert.Equal(t, now, r.DetectedAt)

	repaired, err := levels.Get(ctx, "CULT-001", 4, "0401202503100001")
	require.NoError(t, err)
	assert.True(t, repaired.Quantity.Equal(decimal.RequireFromString("1000")),
		"la fila queda sobrescrita con el valor recalculado")
	assert.Equal(t, now, repaired.LastMovementRecordedAt,
		"el recálculo consumió el libro hasta la fecha del barrido")
}

// El barrido reparador es idempotente: un segundo pase no encuentra nada.
func TestReconcile_SegundoPaseLimpio(t *testing.T) {
	ledger := &fakeLedger{}
	levels := newFakeLevels()
	seed(t, ledger, levels, "CULT-001", 4, "0401202503100001", "1000")

	ctx := context.Background()
	require.NoError(t, levels.Overwrite(ctx, "CULT-001", 4, "0401202503100001",
		decimal.RequireFromString("990"), t0))

	uc := reconcile.NewUseCase(ledger, levels, logger.Discard()).
		WithClock(func() time.Time { return t0.Add(time.Hour) })

	first, err := uc.Reconcile(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := uc.Reconcile(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestReconcile_FiltraPorProductoYSede(t *testing.T) {
	ledger := &fakeLedger{}
	levels := newFakeLevels()
	seed(t, ledger, levels, "CULT-001", 4, "0401202503100001", "1000")
	seed(t, ledger, levels, "PROD-002", 5, "0501202503100001", "95")

	ctx := context.Background()
	// Ambas filas corruptas.
	require.NoError(t, levels.Overwrite(ctx, "CULT-001", 4, "0401202503100001",
		decimal.RequireFromString("1"), t0))
	require.NoError(t, levels.Overwrite(ctx, "PROD-002", 5, "0501202503100001",
		decimal.RequireFromString("2"), t0))

	uc := reconcile.NewUseCase(ledger, levels, logger.Discard()).
		WithClock(func() time.Time { return t0.Add(time.Hour) })

	site := 5
	reports, err := uc.Reconcile(ctx, "", &site)
	require.NoError(t, err)
	require.Len(t, reports, 1, "el filtro de sede acota el barrido")
	assert.Equal(t, "PROD-002", reports[0].ProductID)

	reports, err = uc.Reconcile(ctx, "CULT-001", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "CULT-001", reports[0].ProductID)
}
