package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidArgument     = errors.New("argumento fuera de rango")
	ErrSequenceExhausted   = errors.New("secuencia agotada para la partición")
	ErrCheckDigitMismatch  = errors.New("dígito de verificación inválido")
	ErrDuplicateIdentifier = errors.New("identificador duplicado")
	ErrWeightOutOfRange    = errors.New("peso fuera de rango")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrAlreadyVoided       = errors.New("movimiento ya anulado")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrInvalidInput        = errors.New("entrada inválida")
)
