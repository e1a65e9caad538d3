package turnos

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"figaros/internal/turnos"
	"figaros/internal/utils"
)

type ListHandler struct {
	Rec *turnos.Reconciler
}

// ServeHTTP handles GET /turnos
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Rec.List(r.Context())
	if err != nil {
		log.WithError(err).Error("list: query failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo listar turnos")
		return
	}

	items := make([]turnoItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, newTurnoItem(row))
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"items": items,
	})
}
