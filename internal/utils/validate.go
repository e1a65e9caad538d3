package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FirstValidationMessage renders the first violation of a validator error
// as the human-readable message the API returns. Responses only ever carry
// the first problem, matching the rest of the error surface.
func FirstValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Datos inválidos"
	}
	e := verrs[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("El campo '%s' es obligatorio", field)
	case "min":
		return fmt.Sprintf("El campo '%s' es demasiado corto", field)
	case "email":
		return "Email inválido"
	case "datetime":
		if e.Param() == "2006-01-02" {
			return fmt.Sprintf("El campo '%s' debe tener formato YYYY-MM-DD", field)
		}
		return fmt.Sprintf("El campo '%s' debe tener formato HH:MM", field)
	}
	return fmt.Sprintf("El campo '%s' es inválido", field)
}
