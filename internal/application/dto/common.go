package dto

import "github.com/go-playground/validator/v10"

// validate instancia compartida; los tags `validate:` de los DTOs se
// verifican en los handlers antes de tocar los casos de uso.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate aplica los tags de validación del struct. Devuelve el error del
// validador tal cual; los handlers lo traducen a 400.
func Validate(s any) error {
	return validate.Struct(s)
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
