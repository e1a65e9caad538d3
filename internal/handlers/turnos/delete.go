package turnos

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"figaros/internal/turnos"
	"figaros/internal/utils"
	"figaros/internal/ws"
)

type DeleteHandler struct {
	Rec *turnos.Reconciler
	Hub *ws.Hub
}

// ServeHTTP handles DELETE /turnos/{id}
func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.Error(w, http.StatusBadRequest, "Falta el id del turno")
		return
	}

	if err := h.Rec.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(w, http.StatusNotFound, "Turno no encontrado")
			return
		}
		log.WithError(err).Error("delete: failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo eliminar el turno")
		return
	}

	h.Hub.Publish(ws.Event{Type: "deleted", ID: id})
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
