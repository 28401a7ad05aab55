package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// UseCase es el libro de movimientos: append-only, durable, nunca editado.
// La "anulación" de un movimiento erróneo es siempre un asiento compensatorio
// nuevo; el original queda retenido para auditoría (retención de 7 años,
// requisito duro del dominio regulado).
type UseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el libro.
func NewUseCase(txRunner TxRunner, movements repository.MovementRepository, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		movements: movements,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// WithClock fija el reloj del libro (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// AppendInput hecho a registrar. MovementID vacío genera uno; si el caller lo
// envía funciona como clave de idempotencia para reintentos tras fallas de
// durabilidad.
type AppendInput struct {
	MovementID      string
	ProductID       string
	SiteID          int
	BatchNumber     string
	SerialNumber    string
	Direction       string
	Quantity        decimal.Decimal
	UnitOfMeasure   string
	TransactionType string
	TransactionRef  string
	OccurredAt      time.Time
	Actor           string
}

// Append registra un movimiento: asigna recorded_at (UTC, clave de replay),
// inserta el hecho y aplica el delta a la proyección SOH en la misma
// transacción. Un reintento con el mismo MovementID devuelve el movimiento ya
// confirmado sin duplicar nada.
func (uc *UseCase) Append(ctx context.Context, in AppendInput) (*entity.Movement, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}
	if in.MovementID != "" {
		existing, err := uc.movements.GetByID(ctx, in.MovementID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			// Replay idempotente: el hecho ya es durable.
			return existing, nil
		}
	}

	now := uc.now().UTC()
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	m := &entity.Movement{
		ID:              in.MovementID,
		ProductID:       in.ProductID,
		SiteID:          in.SiteID,
		BatchNumber:     in.BatchNumber,
		SerialNumber:    in.SerialNumber,
		Direction:       in.Direction,
		Quantity:        in.Quantity,
		UnitOfMeasure:   in.UnitOfMeasure,
		TransactionType: in.TransactionType,
		TransactionRef:  in.TransactionRef,
		OccurredAt:      occurred,
		RecordedAt:      now,
		CreatedBy:       in.Actor,
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	err := uc.txRunner.Run(ctx, func(
		movements repository.MovementRepository,
		levels repository.StockLevelRepository,
	) error {
		if err := movements.Append(ctx, m); err != nil {
			return err
		}
		balance, err := levels.ApplyDelta(ctx, m.ProductID, m.SiteID, m.BatchNumber, m.SignedQuantity(), m.RecordedAt)
		if err != nil {
			return err
		}
		if balance.IsNegative() {
			// Saldo negativo: permitido (los ajustes lo necesitan) pero
			// siempre visible para el operador.
			uc.log.Warn().
				Str("product_id", m.ProductID).
				Int("site_id", m.SiteID).
				Str("batch_number", m.BatchNumber).
				Str("balance", balance.String()).
				Msg("stock negativo tras movimiento")
		}
		return nil
	})
	if err != nil {
		if in.MovementID != "" && errors.Is(err, domain.ErrDuplicateIdentifier) {
			// Dos replays concurrentes del mismo id: el perdedor de la
			// carrera devuelve el movimiento que el ganador ya confirmó.
			committed, getErr := uc.movements.GetByID(ctx, in.MovementID)
			if getErr == nil && committed != nil {
				return committed, nil
			}
		}
		return nil, err
	}

	uc.log.Info().
		Str("movement_id", m.ID).
		Str("direction", m.Direction).
		Str("quantity", m.Quantity.String()).
		Str("product_id", m.ProductID).
		Int("site_id", m.SiteID).
		Time("recorded_at", m.RecordedAt).
		Msg("movimiento registrado")
	return m, nil
}

// Void anula un movimiento registrando su compensación (dirección invertida,
// misma cantidad) y marcando el original como anulado con referencia cruzada.
// El original nunca se borra físicamente.
func (uc *UseCase) Void(ctx context.Context, movementID, reason, actor string) (*entity.Movement, error) {
	if reason == "" {
		return nil, fmt.Errorf("void_reason vacío: %w", domain.ErrInvalidArgument)
	}

	now := uc.now().UTC()
	comp := &entity.Movement{
		ID:            uuid.New().String(),
		RecordedAt:    now,
		OccurredAt:    now,
		CompensatesID: movementID,
		VoidReason:    reason,
		CreatedBy:     actor,
	}
	err := uc.txRunner.Run(ctx, func(
		movements repository.MovementRepository,
		levels repository.StockLevelRepository,
	) error {
		// FOR UPDATE serializa dos anulaciones concurrentes del mismo original.
		original, err := movements.GetByIDForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if original == nil {
			return fmt.Errorf("movimiento %s: %w", movementID, domain.ErrNotFound)
		}
		if original.Voided {
			return fmt.Errorf("movimiento %s: %w", movementID, domain.ErrAlreadyVoided)
		}
		if original.IsCompensation() {
			return fmt.Errorf("movimiento %s es una compensación: %w", movementID, domain.ErrInvalidArgument)
		}

		comp.ProductID = original.ProductID
		comp.SiteID = original.SiteID
		comp.BatchNumber = original.BatchNumber
		comp.SerialNumber = original.SerialNumber
		comp.Quantity = original.Quantity
		comp.UnitOfMeasure = original.UnitOfMeasure
		comp.TransactionType = original.TransactionType
		comp.TransactionRef = original.TransactionRef
		comp.Direction = entity.DirectionIN
		if original.Direction == entity.DirectionIN {
			comp.Direction = entity.DirectionOUT
		}

		if err := movements.Append(ctx, comp); err != nil {
			return err
		}
		if err := movements.MarkVoided(ctx, original.ID, reason, comp.ID, now); err != nil {
			return err
		}
		_, err = levels.ApplyDelta(ctx, comp.ProductID, comp.SiteID, comp.BatchNumber, comp.SignedQuantity(), now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("movement_id", movementID).
		Str("compensation_id", comp.ID).
		Str("reason", reason).
		Str("actor", actor).
		Msg("movimiento anulado por compensación")
	return comp, nil
}

// Query devuelve la proyección de movimientos efectivos a una fecha,
// ordenados por recorded_at. Es de solo lectura y reejecutable: originales ya
// anulados a esa fecha quedan fuera, sus compensaciones dentro.
func (uc *UseCase) Query(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.ProductID == "" {
		return nil, fmt.Errorf("product_id vacío: %w", domain.ErrInvalidArgument)
	}
	if f.AsOf.IsZero() {
		f.AsOf = uc.now().UTC()
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	return uc.movements.List(ctx, f)
}

func (uc *UseCase) validate(in AppendInput) error {
	if in.ProductID == "" {
		return fmt.Errorf("product_id vacío: %w", domain.ErrInvalidArgument)
	}
	if in.SiteID < 1 || in.SiteID > 99 {
		return fmt.Errorf("site_id %d: %w", in.SiteID, domain.ErrInvalidArgument)
	}
	if in.Direction != entity.DirectionIN && in.Direction != entity.DirectionOUT {
		return fmt.Errorf("direction %q: %w", in.Direction, domain.ErrInvalidArgument)
	}
	if in.Quantity.IsNegative() {
		return fmt.Errorf("quantity %s: %w", in.Quantity, domain.ErrInvalidArgument)
	}
	if in.UnitOfMeasure == "" || in.TransactionType == "" {
		return fmt.Errorf("unit_of_measure/transaction_type vacíos: %w", domain.ErrInvalidArgument)
	}
	return nil
}
