package roomhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coplay/internal/catalog"
	"coplay/internal/session"
)

type Handler struct {
	coord *session.Coordinator
	cat   catalog.ICatalogService
}

func New(coord *session.Coordinator, cat catalog.ICatalogService) *Handler {
	return &Handler{coord: coord, cat: cat}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/rooms", h.listRooms)
	r.GET("/catalog/titles", h.listTitles)
	r.GET("/healthz", h.health)
}

// @Summary		List active rooms
// @Description	Returns the room directory: occupancy, participants and label per room. Same structure the coordinator pushes to connected clients.
// @Tags			Rooms
// @Success		200	{array}		session.RoomSnapshot
// @Failure		503	{object}	ErrorResponse
// @Router			/rooms [get]
func (h *Handler) listRooms(c *gin.Context) {
	snap, err := h.coord.DirectorySnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary		List catalog titles
// @Description	Title suggestions for the room label, served from the cache when warm.
// @Tags			Catalog
// @Success		200	{object}	TitleListResponse
// @Failure		503	{object}	ErrorResponse
// @Router			/catalog/titles [get]
func (h *Handler) listTitles(c *gin.Context) {
	titles, err := h.cat.ListTitles(c.Request.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, TitleListResponse{Titles: titles})
}

// @Summary		Health check
// @Tags			Ops
// @Success		200	{object}	map[string]string
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
