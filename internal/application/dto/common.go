package dto

// PageRequest paginación y orden para listados (page inicia en 1).
type PageRequest struct {
	Page           int    `query:"page"`
	Limit          int    `query:"limit"`
	OrderBy        string `query:"order_by"`
	OrderDirection string `query:"order_direction"`
}

// DefaultPage aplica valores por defecto si Page/Limit son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.OrderDirection != "asc" {
		p.OrderDirection = "desc"
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
