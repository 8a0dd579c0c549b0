package domain

// Principal identifica al cliente autenticado de una conexión.
type Principal struct {
	Subject string `json:"sub"`
}
