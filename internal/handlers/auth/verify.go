package auth

import (
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"figaros/internal/tokens"
)

type VerifyHandler struct {
	Tokens *tokens.Service
	AppURL string
}

// ServeHTTP handles GET /auth/verify?token=...
// The link lands in a browser, so success and failure are plain HTML, not
// JSON like the rest of the API.
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token faltante.", http.StatusBadRequest)
		return
	}

	if _, err := h.Tokens.Consume(r.Context(), token); err != nil {
		var msg string
		switch {
		case errors.Is(err, tokens.ErrInvalidToken):
			msg = "Token inválido."
		case errors.Is(err, tokens.ErrAlreadyUsed):
			msg = "Token ya usado."
		case errors.Is(err, tokens.ErrExpired):
			msg = "Token expirado."
		default:
			log.WithError(err).Error("verify: consume failed")
			http.Error(w, "No se pudo verificar la cuenta.", http.StatusInternalServerError)
			return
		}
		http.Error(w, "No se pudo verificar: "+msg, http.StatusBadRequest)
		return
	}

	url := h.AppURL + "/?verified=1"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<meta http-equiv="refresh" content="0;url=%s" /><p>Cuenta verificada. Redirigiendo…</p>`, url)
}
