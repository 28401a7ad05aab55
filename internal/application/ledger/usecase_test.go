package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/cannatrace/internal/application/ledger"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: libro + proyección + runner transaccional
// ──────────────────────────────────────────────────────────────────────────────

type fakeMovementRepo struct {
	byID  map[string]*entity.Movement
	order []string
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{byID: make(map[string]*entity.Movement)}
}

func (r *fakeMovementRepo) Append(_ context.Context, m *entity.Movement) error {
	if _, ok := r.byID[m.ID]; ok {
		return domain.ErrDuplicateIdentifier
	}
	cp := *m
	r.byID[m.ID] = &cp
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeMovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMovementRepo) MarkVoided(_ context.Context, id, reason, compensatedByID string, voidedAt time.Time) error {
	m, ok := r.byID[id]
	if !ok || m.Voided {
		return domain.ErrAlreadyVoided
	}
	m.Voided = true
	m.VoidReason = reason
	m.CompensatedByID = compensatedByID
	m.VoidedAt = &voidedAt
	return nil
}

func (r *fakeMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, id := range r.order {
		m := r.byID[id]
		if m.ProductID != f.ProductID || m.RecordedAt.After(f.AsOf) {
			continue
		}
		if f.SiteID != nil && m.SiteID != *f.SiteID {
			continue
		}
		if f.BatchNumber != "" && m.BatchNumber != f.BatchNumber {
			continue
		}
		// Originales ya anulados a la fecha de corte quedan fuera.
		if m.Voided && m.VoidedAt != nil && !m.VoidedAt.After(f.AsOf) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeMovementRepo) SumSigned(_ context.Context, productID string, siteID *int, batchNumber string, asOf time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, id := range r.order {
		m := r.byID[id]
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

type fakeLevelRepo struct {
	quantities map[string]decimal.Decimal
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{quantities: make(map[string]decimal.Decimal)}
}

func levelKey(productID string, siteID int, batchNumber string) string {
	return fmt.Sprintf("%s|%d|%s", productID, siteID, batchNumber)
}

func (r *fakeLevelRepo) Get(_ context.Context, productID string, siteID int, batchNumber string) (*entity.StockLevel, error) {
	q, ok := r.quantities[levelKey(productID, siteID, batchNumber)]
	if !ok {
		return nil, nil
	}
	return &entity.StockLevel{ProductID: productID, SiteID: siteID, BatchNumber: batchNumber, Quantity: q}, nil
}

func (r *fakeLevelRepo) SumProductSite(_ context.Context, productID string, siteID int) (decimal.Decimal, error) {
	sum := decimal.Zero
	prefix := fmt.Sprintf("%s|%d|", productID, siteID)
	for k, q := range r.quantities {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			sum = sum.Add(q)
		}
	}
	return sum, nil
}

func (r *fakeLevelRepo) ApplyDelta(_ context.Context, productID string, siteID int, batchNumber string, delta decimal.Decimal, _ time.Time) (decimal.Decimal, error) {
	k := levelKey(productID, siteID, batchNumber)
	r.quantities[k] = r.quantities[k].Add(delta)
	return r.quantities[k], nil
}

func (r *fakeLevelRepo) Overwrite(_ context.Context, productID string, siteID int, batchNumber string, quantity decimal.Decimal, _ time.Time) error {
	r.quantities[levelKey(productID, siteID, batchNumber)] = quantity
	return nil
}

func (r *fakeLevelRepo) List(_ context.Context, productID string, siteID *int) ([]*entity.StockLevel, error) {
	return nil, nil
}

// fakeTxRunner ejecuta el cuerpo directamente sobre los fakes: en los tests la
// atomicidad la da la ausencia de concurrencia.
type fakeTxRunner struct {
	movements *fakeMovementRepo
	levels    *fakeLevelRepo
}

func (tr fakeTxRunner) Run(_ context.Context, fn func(repository.MovementRepository, repository.StockLevelRepository) error) error {
	return fn(tr.movements, tr.levels)
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	uc        *ledger.UseCase
	movements *fakeMovementRepo
	levels    *fakeLevelRepo
	clock     *time.Time
}

func newHarness() *harness {
	movements := newFakeMovementRepo()
	levels := newFakeLevelRepo()
	clock := baseTime
	h := &harness{movements: movements, levels: levels, clock: &clock}
	h.uc = ledger.NewUseCase(fakeTxRunner{movements, levels}, movements, logger.Discard()).
		WithClock(func() time.Time { return *h.clock })
	return h
}

func (h *harness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

func inputIN(qty string) ledger.AppendInput {
	return ledger.AppendInput{
		ProductID:       "CULT-001",
		SiteID:          4,
		BatchNumber:     "0401202503100001",
		Direction:       entity.DirectionIN,
		Quantity:        decimal.RequireFromString(qty),
		UnitOfMeasure:   "g",
		TransactionType: "harvest",
		Actor:           "ana",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Append
// ──────────────────────────────────────────────────────────────────────────────

func TestAppend_RegistraYActualizaProyeccion(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	m, err := h.uc.Append(ctx, inputIN("1000"))
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID, "sin MovementID el libro genera uno")
	assert.Equal(t, baseTime, m.RecordedAt, "recorded_at lo asigna el libro, en UTC")
	assert.Equal(t, baseTime, m.OccurredAt, "occurred_at vacío toma recorded_at")

	balance, err := h.levels.Get(ctx, "CULT-001", 4, "0401202503100001")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.True(t, balance.Quantity.Equal(decimal.RequireFromString("1000")),
		"la proyección se actualiza en la misma transacción")
}

func TestAppend_IdempotentePorMovementID(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	in := inputIN("1000")
	in.MovementID = "e4b1f6b2-0000-4000-8000-000000000001"

	first, err := h.uc.Append(ctx, in)
	require.NoError(t, err)

	h.advance(time.Minute)
	second, err := h.uc.Append(ctx, in)
	require.NoError(t, err, "el reintento con el mismo ID no es un error")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RecordedAt, second.RecordedAt, "se devuelve el hecho ya durable")

	sum, err := h.movements.SumSigned(ctx, "CULT-001", nil, "", h.clock.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("1000")), "sin duplicados en el libro")
}

// delayedVisibilityRepo simula al perdedor de una carrera de replays: la
// verificación previa no ve el movimiento (skipReads > 0) aunque el ganador ya
// lo confirmó en el libro.
type delayedVisibilityRepo struct {
	*fakeMovementRepo
	skipReads int
}

func (r *delayedVisibilityRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if r.skipReads > 0 {
		r.skipReads--
		return nil, nil
	}
	return r.fakeMovementRepo.GetByID(ctx, id)
}

func TestAppend_ReplayConcurrenteDevuelveElConfirmado(t *testing.T) {
	ctx := context.Background()
	movements := newFakeMovementRepo()
	levels := newFakeLevelRepo()
	racing := &delayedVisibilityRepo{fakeMovementRepo: movements, skipReads: 1}
	uc := ledger.NewUseCase(fakeTxRunner{movements, levels}, racing, logger.Discard()).
		WithClock(func() time.Time { return baseTime.Add(time.Minute) })

	// El ganador ya confirmó este movimiento.
	winner := &entity.Movement{
		ID:              "e4b1f6b2-0000-4000-8000-000000000002",
		ProductID:       "CULT-001",
		SiteID:          4,
		BatchNumber:     "0401202503100001",
		Direction:       entity.DirectionIN,
		Quantity:        decimal.RequireFromString("1000"),
		UnitOfMeasure:   "g",
		TransactionType: "harvest",
		OccurredAt:      baseTime,
		RecordedAt:      baseTime,
	}
	require.NoError(t, movements.Append(ctx, winner))

	in := inputIN("1000")
	in.MovementID = winner.ID
	m, err := uc.Append(ctx, in)
	require.NoError(t, err, "el perdedor de la carrera no ve un error de duplicado")

	assert.Equal(t, winner.ID, m.ID)
	assert.Equal(t, winner.RecordedAt, m.RecordedAt, "se devuelve el hecho que ganó la carrera")

	sum, err := movements.SumSigned(ctx, "CULT-001", nil, "", baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("1000")), "sin duplicados en el libro")
}

func TestAppend_ValidaEntrada(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	in := inputIN("10")
	in.ProductID = ""
	_, err := h.uc.Append(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "product_id vacío")

	in = inputIN("10")
	in.Direction = "SIDEWAYS"
	_, err = h.uc.Append(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "dirección desconocida")

	in = inputIN("-5")
	_, err = h.uc.Append(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "cantidad negativa: el signo lo da la dirección")

	in = inputIN("10")
	in.UnitOfMeasure = ""
	_, err = h.uc.Append(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// Un OUT mayor que el saldo se acepta: el stock puede quedar negativo
// (ajustes retroactivos); el libro solo lo advierte en el log.
func TestAppend_PermiteStockNegativo(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	in := inputIN("50")
	in.Direction = entity.DirectionOUT
	_, err := h.uc.Append(ctx, in)
	require.NoError(t, err)

	balance, err := h.levels.Get(ctx, "CULT-001", 4, "0401202503100001")
	require.NoError(t, err)
	assert.True(t, balance.Quantity.Equal(decimal.RequireFromString("-50")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Void (compensación)
// ──────────────────────────────────────────────────────────────────────────────

func TestVoid_CompensaYMarcaElOriginal(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	original, err := h.uc.Append(ctx, inputIN("1000"))
	require.NoError(t, err)

	h.advance(time.Hour)
	comp, err := h.uc.Void(ctx, original.ID, "cantidad digitada de más", "ana")
	require.NoError(t, err)

	assert.Equal(t, entity.DirectionOUT, comp.Direction, "dirección invertida")
	assert.True(t, comp.Quantity.Equal(original.Quantity), "misma cantidad")
	assert.Equal(t, original.ID, comp.CompensatesID)

	stored, err := h.movements.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, stored.Voided, "el original queda marcado, nunca borrado")
	assert.Equal(t, comp.ID, stored.CompensatedByID)
	assert.Equal(t, "cantidad digitada de más", stored.VoidReason)

	// El par anulado se cancela: la proyección vuelve a cero.
	balance, err := h.levels.Get(ctx, "CULT-001", 4, "0401202503100001")
	require.NoError(t, err)
	assert.True(t, balance.Quantity.IsZero())
}

func TestVoid_Rechazos(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	original, err := h.uc.Append(ctx, inputIN("100"))
	require.NoError(t, err)

	_, err = h.uc.Void(ctx, original.ID, "", "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "anular exige motivo")

	_, err = h.uc.Void(ctx, "e4b1f6b2-0000-4000-8000-00000000dead", "no existe", "ana")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	comp, err := h.uc.Void(ctx, original.ID, "error de captura", "ana")
	require.NoError(t, err)

	_, err = h.uc.Void(ctx, original.ID, "otra vez", "ana")
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided, "doble anulación del mismo original")

	_, err = h.uc.Void(ctx, comp.ID, "anular la compensación", "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument,
		"una compensación no se anula; se registra un movimiento nuevo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Query (proyección de lectura)
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_ExcluyeAnuladosDesdeSuAnulacion(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	original, err := h.uc.Append(ctx, inputIN("1000"))
	require.NoError(t, err)
	beforeVoid := *h.clock

	h.advance(time.Hour)
	comp, err := h.uc.Void(ctx, original.ID, "error", "ana")
	require.NoError(t, err)

	// A la fecha previa a la anulación el original era efectivo.
	rows, err := h.uc.Query(ctx, repository.MovementFilter{ProductID: "CULT-001", AsOf: beforeVoid})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, original.ID, rows[0].ID)

	// Después de la anulación: fuera el original, dentro la compensación.
	rows, err = h.uc.Query(ctx, repository.MovementFilter{ProductID: "CULT-001", AsOf: *h.clock})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, comp.ID, rows[0].ID)
}

func TestQuery_RequiereProducto(t *testing.T) {
	h := newHarness()
	_, err := h.uc.Query(context.Background(), repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
