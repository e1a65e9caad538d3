package models

import "time"

// Turno is one appointment row. Rows created together share a GrupoID and
// carry identical booking fields; TurnoIndex is the 1-based position of the
// row inside its group.
type Turno struct {
	ID           string    `json:"id"`
	Nombre       string    `json:"nombre"`
	Servicio     string    `json:"servicio"`
	OtroServicio *string   `json:"otroServicio"`
	Fecha        time.Time `json:"-"`
	Hora         string    `json:"hora"`
	Telefono     *string   `json:"telefono"`
	GrupoID      *string   `json:"grupoId"`
	TurnoIndex   int       `json:"turnoIndex"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FechaString renders the date as a plain "YYYY-MM-DD" calendar date, the
// only form the API ever exposes.
func (t Turno) FechaString() string {
	return t.Fecha.UTC().Format("2006-01-02")
}
