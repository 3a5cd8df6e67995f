package inventory

import (
	"net/http"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/httpx"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/MechanicWorks/MechanicWorks/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// Handler 库存配件 HTTP 路由。
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	log    logger.Logger
}

func NewHandler(svc *Service, tokens *auth.TokenService, log logger.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, log: log}
}

// RegisterRoutes 挂载 /inventory 路由。
// CRUD 沿用对外无鉴权的历史行为；add-part 仅限技师。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/add-part", middleware.RequireMechanic(h.tokens, h.log, h.addPart))
}

func (h *Handler) create(c *gin.Context) {
	var payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	item, err := h.svc.Create(c.Request.Context(), payload.Name, payload.Price)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if items == nil {
		items = []Inventory{}
	}
	c.JSON(http.StatusOK, items)
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

	item, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
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
	c.JSON(http.StatusOK, gin.H{"message": "Inventory deleted"})
}

func (h *Handler) addPart(c *gin.Context, _ uint) {
	id, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		TicketID uint `json:"ticket_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.TicketID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Service Ticket ID is required"})
		return
	}

	if err := h.svc.AddPartToTicket(c.Request.Context(), id, payload.TicketID); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part added to service ticket"})
}
