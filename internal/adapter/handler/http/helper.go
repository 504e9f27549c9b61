package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/users_crud_service/internal/core/domain"
)

const (
	msgInvalidID   = "ID inválido"
	msgNotFound    = "Usuário não encontrado"
	msgDuplicate   = "Valor duplicado (cpf ou email já cadastrado)."
	msgInvalidJSON = "JSON inválido."
	msgDeleted     = "Usuário deletado."
)

// parseID accepts only a full base-10 integer.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// errorStatus maps service errors to a status code and client message.
func errorStatus(err error) (int, string) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &conflictErr):
		return http.StatusBadRequest, msgDuplicate
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
