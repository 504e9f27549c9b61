package http

import (
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error" example:"Usuário não encontrado"`
}

type messageResponse struct {
	Message string `json:"message" example:"Usuário deletado."`
}

type healthResponse struct {
	Status string `json:"status" example:"ok"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Error: message,
	})
}
