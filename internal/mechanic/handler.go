package mechanic

import (
	"net/http"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/httpx"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/MechanicWorks/MechanicWorks/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// Handler 技师 HTTP 路由。
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	log    logger.Logger
}

func NewHandler(svc *Service, tokens *auth.TokenService, log logger.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, log: log}
}

// RegisterRoutes 挂载 /mechanics 路由。
// 注意：列表/更新/删除沿用对外无鉴权的历史行为。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginLimiter *middleware.KeyedLimiter) {
	rg.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	rg.GET("/statistics", middleware.RequireMechanic(h.tokens, h.log, h.statistics))
	rg.GET("", h.list)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/register", h.register)
}

func (h *Handler) login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Email == "" || payload.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	m, err := h.svc.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	token, _, err := h.tokens.IssueMechanicToken(m.ID)
	if err != nil {
		h.log.Errorf("issue mechanic token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) statistics(c *gin.Context, _ uint) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if stats == nil {
		stats = []Stat{}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) list(c *gin.Context) {
	mechanics, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if mechanics == nil {
		mechanics = []Mechanic{}
	}
	c.JSON(http.StatusOK, mechanics)
}

func (h *Handler) register(c *gin.Context) {
	var payload struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Phone    string  `json:"phone"`
		Salary   float64 `json:"salary"`
		Password string  `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Salary:   payload.Salary,
		Password: payload.Password,
	}); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Mechanic registered successfully"})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	m, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mechanic deleted successfully"})
}
