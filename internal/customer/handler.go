package customer

import (
	"net/http"
	"strconv"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/httpx"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/MechanicWorks/MechanicWorks/internal/common/middleware"
	"github.com/MechanicWorks/MechanicWorks/internal/ticket"
	"github.com/gin-gonic/gin"
)

// Handler 客户 HTTP 路由。
type Handler struct {
	svc     *Service
	tickets *ticket.Service
	tokens  *auth.TokenService
	log     logger.Logger
}

func NewHandler(svc *Service, tickets *ticket.Service, tokens *auth.TokenService, log logger.Logger) *Handler {
	return &Handler{svc: svc, tickets: tickets, tokens: tokens, log: log}
}

// RegisterRoutes 挂载 /customers 路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginLimiter *middleware.KeyedLimiter) {
	rg.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	rg.GET("/my-tickets", middleware.RequireCustomer(h.tokens, h.log, h.myTickets))
	rg.GET("", h.list)
	rg.POST("/register", h.register)
	rg.POST("/create-ticket", middleware.RequireCustomer(h.tokens, h.log, h.createTicket))
}

func (h *Handler) login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Email == "" || payload.Password == "" {
		fields := gin.H{}
		if payload.Email == "" {
			fields["email"] = "Missing data for required field."
		}
		if payload.Password == "" {
			fields["password"] = "Missing data for required field."
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return
	}

	cust, err := h.svc.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	token, _, err := h.tokens.IssueCustomerToken(cust.ID)
	if err != nil {
		h.log.Errorf("issue customer token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) myTickets(c *gin.Context, customerID uint) {
	views, err := h.svc.MyTickets(c.Request.Context(), customerID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	result, err := h.svc.List(c.Request.Context(), page, perPage)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) register(c *gin.Context) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
	}); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer registered successfully"})
}

func (h *Handler) createTicket(c *gin.Context, customerID uint) {
	var payload struct {
		VIN         string `json:"VIN"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "VIN and description are required"})
		return
	}

	if _, err := h.tickets.Create(c.Request.Context(), customerID, payload.VIN, payload.Description); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service ticket created successfully"})
}
