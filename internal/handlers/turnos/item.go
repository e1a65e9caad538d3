package turnos

import (
	"time"

	"figaros/internal/models"
)

// turnoItem is the wire form of a row: identical to the model except that
// fecha is a plain calendar date, never a timestamp.
type turnoItem struct {
	ID           string    `json:"id"`
	Nombre       string    `json:"nombre"`
	Servicio     string    `json:"servicio"`
	OtroServicio *string   `json:"otroServicio"`
	Fecha        string    `json:"fecha"`
	Hora         string    `json:"hora"`
	Telefono     *string   `json:"telefono"`
	GrupoID      *string   `json:"grupoId"`
	TurnoIndex   int       `json:"turnoIndex"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func newTurnoItem(t models.Turno) turnoItem {
	return turnoItem{
		ID:           t.ID,
		Nombre:       t.Nombre,
		Servicio:     t.Servicio,
		OtroServicio: t.OtroServicio,
		Fecha:        t.FechaString(),
		Hora:         t.Hora,
		Telefono:     t.Telefono,
		GrupoID:      t.GrupoID,
		TurnoIndex:   t.TurnoIndex,
		ExpiresAt:    t.ExpiresAt,
	}
}
