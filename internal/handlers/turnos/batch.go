package turnos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"figaros/internal/turnos"
	"figaros/internal/utils"
	"figaros/internal/ws"
)

type BatchHandler struct {
	Rec      *turnos.Reconciler
	Hub      *ws.Hub
	Validate *validator.Validate
}

type BatchRequest struct {
	Nombre       string   `json:"nombre" validate:"required,min=1"`
	Servicio     string   `json:"servicio" validate:"required,min=1"`
	OtroServicio string   `json:"otroServicio"`
	Fecha        string   `json:"fecha" validate:"required,datetime=2006-01-02"`
	Hora         string   `json:"hora" validate:"required,datetime=15:04"`
	Telefono     string   `json:"telefono"`
	NTurnos      *FlexInt `json:"nTurnos"`
	Turno        *FlexInt `json:"turno"`
}

// count resolves the 'nTurnos'/'turno' alias pair.
func (r BatchRequest) count() (int, bool) {
	if r.NTurnos != nil {
		return int(*r.NTurnos), true
	}
	if r.Turno != nil {
		return int(*r.Turno), true
	}
	return 0, false
}

// ServeHTTP handles POST /turnos/batch
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.Error(w, http.StatusBadRequest, utils.FirstValidationMessage(err))
		return
	}
	n, ok := req.count()
	if !ok || n < turnos.MinBatchSize || n > turnos.MaxBatchSize {
		utils.Error(w, http.StatusBadRequest, "Número de turnos inválido (1-20)")
		return
	}

	groupID, count, err := h.Rec.CreateBatch(r.Context(), turnos.BatchInput{
		Nombre:       req.Nombre,
		Servicio:     req.Servicio,
		OtroServicio: req.OtroServicio,
		Fecha:        req.Fecha,
		Hora:         req.Hora,
		Telefono:     req.Telefono,
		NTurnos:      n,
	})
	if err != nil {
		if errors.Is(err, turnos.ErrBatchSize) {
			utils.Error(w, http.StatusBadRequest, "Número de turnos inválido (1-20)")
			return
		}
		log.WithError(err).Error("batch: create failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo crear el lote de turnos")
		return
	}

	h.Hub.Publish(ws.Event{Type: "batch_created", GrupoID: groupID, Count: count})
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"groupId": groupID,
		"count":   count,
	})
}
