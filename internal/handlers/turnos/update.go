package turnos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"figaros/internal/turnos"
	"figaros/internal/utils"
	"figaros/internal/ws"
)

type UpdateHandler struct {
	Rec      *turnos.Reconciler
	Hub      *ws.Hub
	Validate *validator.Validate
}

// UpdateRequest is a partial edit: nil means the field was not sent.
// Validation tags apply only to fields actually present.
type UpdateRequest struct {
	Nombre       *string  `json:"nombre" validate:"omitempty,min=1"`
	Servicio     *string  `json:"servicio" validate:"omitempty,min=1"`
	OtroServicio *string  `json:"otroServicio"`
	Fecha        *string  `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Hora         *string  `json:"hora" validate:"omitempty,datetime=15:04"`
	Telefono     *string  `json:"telefono"`
	NTurnos      *FlexInt `json:"nTurnos"`
	Turno        *FlexInt `json:"turno"`
}

// dropEmpty treats blank strings like absent keys: an untouched form field
// arrives as "" and must neither trip format validation nor overwrite stored
// data. A whitespace-only string is still an explicit value and clears the
// optional fields downstream.
func (r *UpdateRequest) dropEmpty() {
	if r.Nombre != nil && *r.Nombre == "" {
		r.Nombre = nil
	}
	if r.Servicio != nil && *r.Servicio == "" {
		r.Servicio = nil
	}
	if r.OtroServicio != nil && *r.OtroServicio == "" {
		r.OtroServicio = nil
	}
	if r.Fecha != nil && *r.Fecha == "" {
		r.Fecha = nil
	}
	if r.Hora != nil && *r.Hora == "" {
		r.Hora = nil
	}
	if r.Telefono != nil && *r.Telefono == "" {
		r.Telefono = nil
	}
}

// ServeHTTP handles PATCH /turnos/{id}
func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.Error(w, http.StatusBadRequest, "Falta el id del turno")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	req.dropEmpty()
	if err := h.Validate.Struct(req); err != nil {
		utils.Error(w, http.StatusBadRequest, utils.FirstValidationMessage(err))
		return
	}

	in := turnos.UpdateInput{
		Nombre:       req.Nombre,
		Servicio:     req.Servicio,
		OtroServicio: req.OtroServicio,
		Fecha:        req.Fecha,
		Hora:         req.Hora,
		Telefono:     req.Telefono,
	}
	if req.NTurnos != nil {
		n := int(*req.NTurnos)
		in.NTurnos = &n
	} else if req.Turno != nil {
		n := int(*req.Turno)
		in.NTurnos = &n
	}

	item, err := h.Rec.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(w, http.StatusNotFound, "Turno no encontrado")
			return
		}
		log.WithError(err).Error("update: reconcile failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo actualizar el turno")
		return
	}

	ev := ws.Event{Type: "updated", ID: item.ID}
	if item.GrupoID != nil {
		ev.GrupoID = *item.GrupoID
	}
	h.Hub.Publish(ev)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"item": newTurnoItem(*item),
	})
}
