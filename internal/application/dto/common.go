package dto

import "github.com/shopspring/decimal"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Details lista las líneas rechazadas cuando aplica.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail detalle por línea (venta o recepción) o por campo (validación).
type ErrorDetail struct {
	Line      *int             `json:"line,omitempty"`
	Field     string           `json:"field,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Requested *decimal.Decimal `json:"requested,omitempty"`
	Available *decimal.Decimal `json:"available,omitempty"`
	Reason    string           `json:"reason"`
}
