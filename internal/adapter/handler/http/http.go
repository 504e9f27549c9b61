package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/users_crud_service/internal/core/domain"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type UserRequest = domain.UserInput

type UpdateUser = domain.UserPatch

type UserDTO struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"Ana Souza"`
	BirthDate string    `json:"birthDate" example:"15-06-1990"`
	CPF       string    `json:"cpf" example:"123.456.789-00"`
	Nickname  string    `json:"nickname" example:"aninha"`
	Gender    string    `json:"gender" example:"Feminino"`
	Email     string    `json:"email" example:"ana@example.com"`
	Telephone string    `json:"telephone" example:"+55 11 99999-0000"`
	State     string    `json:"state" example:"SP"`
	Country   string    `json:"country" example:"Brasil"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		BirthDate: domain.FormatBirthDate(user.BirthDate),
		CPF:       user.CPF,
		Nickname:  user.Nickname,
		Gender:    string(user.Gender),
		Email:     user.Email,
		Telephone: user.Telephone,
		State:     user.State,
		Country:   user.Country,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func NewUserHandler(
	userService ports.UserService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Listar usuários
// @Description Retorna todos os usuários cadastrados
// @Tags users
// @Produce json
// @Success 200 {array} UserDTO
// @Failure 500 {object} errorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, toUserDTO(&users[i]))
	}
	c.JSON(http.StatusOK, dtos)
}

// @Summary Buscar usuário
// @Description Retorna um usuário pelo ID
// @Tags users
// @Produce json
// @Param id path int true "ID do usuário"
// @Success 200 {object} UserDTO
// @Failure 400 {object} errorResponse "ID inválido"
// @Failure 404 {object} errorResponse "Usuário não encontrado"
// @Failure 500 {object} errorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseID(c)
	if !ok {
		newErrorResponse(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserDTO(user))
}

// @Summary Criar usuário
// @Description Cria um usuário. birthDate no formato dd-MM-yyyy
// @Tags users
// @Accept json
// @Produce json
// @Param request body UserRequest true "Dados do usuário"
// @Success 201 {object} UserDTO
// @Failure 400 {object} errorResponse "Campo ausente/inválido ou cpf/email duplicado"
// @Failure 500 {object} errorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("Failed JSON parse in create user", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserDTO(user))
}

// @Summary Atualizar usuário
// @Description Atualiza apenas os campos enviados
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "ID do usuário"
// @Param request body UpdateUser true "Campos a atualizar"
// @Success 200 {object} UserDTO
// @Failure 400 {object} errorResponse "ID/campo inválido, nada para atualizar ou valor duplicado"
// @Failure 404 {object} errorResponse "Usuário não encontrado"
// @Failure 500 {object} errorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseID(c)
	if !ok {
		newErrorResponse(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	var req UpdateUser
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("Failed JSON parse in update user", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserDTO(user))
}

// @Summary Remover usuário
// @Tags users
// @Produce json
// @Param id path int true "ID do usuário"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorResponse "ID inválido"
// @Failure 404 {object} errorResponse "Usuário não encontrado"
// @Failure 500 {object} errorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseID(c)
	if !ok {
		newErrorResponse(c, http.StatusBadRequest, msgInvalidID)
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgDeleted})
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorCtx(c.Request.Context(), c.Request.Method+" "+c.FullPath()+" error", map[string]interface{}{
			"error": err.Error(),
		})
	}
	newErrorResponse(c, status, message)
}
