package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla movements es append-only y particionable
// por recorded_at para archivado; no existe UPDATE salvo el marcado de
// anulación, ni DELETE jamás.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, product_id, site_id, batch_number, serial_number, direction, quantity,
		unit_of_measure, transaction_type, transaction_ref, occurred_at, recorded_at,
		voided, void_reason, compensates_id, compensated_by_id, voided_at, created_by`

// Append persiste un movimiento. Un movement_id repetido es violación de
// único: el caso de uso ya resolvió el replay idempotente antes de llegar
// aquí, así que se reporta como duplicado.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.SiteID, m.BatchNumber, nullIfEmpty(m.SerialNumber),
		m.Direction, m.Quantity, m.UnitOfMeasure, m.TransactionType,
		nullIfEmpty(m.TransactionRef), m.OccurredAt, m.RecordedAt,
		m.Voided, nullIfEmpty(m.VoidReason), nullIfEmpty(m.CompensatesID),
		nullIfEmpty(m.CompensatedByID), m.VoidedAt, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movement %s: %w", m.ID, domain.ErrDuplicateIdentifier)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate obtiene el movimiento bloqueando la fila (SELECT FOR UPDATE)
// para serializar anulaciones concurrentes.
func (r *MovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *MovementRepo) get(ctx context.Context, id, suffix string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1` + suffix
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// MarkVoided marca el original como anulado con la referencia a su compensación.
// Es la única mutación permitida sobre una fila del libro.
func (r *MovementRepo) MarkVoided(ctx context.Context, id, reason, compensatedByID string, voidedAt time.Time) error {
	query := `
		UPDATE movements
		SET voided = true, void_reason = $2, compensated_by_id = $3, voided_at = $4
		WHERE id = $1 AND NOT voided`
	tag, err := r.q.Exec(ctx, query, id, reason, compensatedByID, voidedAt)
	if err != nil {
		return fmt.Errorf("mark voided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movimiento %s: %w", id, domain.ErrAlreadyVoided)
	}
	return nil
}

// List devuelve los movimientos efectivos a la fecha del filtro: originales
// aún no anulados a esa fecha, más las compensaciones ya registradas.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE product_id = $1 AND recorded_at <= $2
		  AND (NOT voided OR voided_at > $2)`
	args := []any{f.ProductID, f.AsOf}
	pos := 3
	if f.SiteID != nil {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, *f.SiteID)
		pos++
	}
	if f.BatchNumber != "" {
		query += fmt.Sprintf(" AND batch_number = $%d", pos)
		args = append(args, f.BatchNumber)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY recorded_at, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumSigned suma con signo todos los movimientos hasta asOf, incluidos los
// pares original+compensación: se cancelan aritméticamente, lo que hace la
// suma correcta para cualquier fecha sin lógica de ventanas de anulación.
func (r *MovementRepo) SumSigned(ctx context.Context, productID string, siteID *int, batchNumber string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM movements
		WHERE product_id = $1 AND recorded_at <= $2`
	args := []any{productID, asOf}
	pos := 3
	if siteID != nil {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, *siteID)
		pos++
	}
	if batchNumber != "" {
		query += fmt.Sprintf(" AND batch_number = $%d", pos)
		args = append(args, batchNumber)
	}

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (*entity.Movement, error) {
	var m entity.Movement
	var serial, txRef, voidReason, compensates, compensatedBy, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.SiteID, &m.BatchNumber, &serial, &m.Direction, &m.Quantity,
		&m.UnitOfMeasure, &m.TransactionType, &txRef, &m.OccurredAt, &m.RecordedAt,
		&m.Voided, &voidReason, &compensates, &compensatedBy, &m.VoidedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	m.SerialNumber = deref(serial)
	m.TransactionRef = deref(txRef)
	m.VoidReason = deref(voidReason)
	m.CompensatesID = deref(compensates)
	m.CompensatedByID = deref(compensatedBy)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
