package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/handler"
	availabilitySvc "github.com/glowdesk/salon-api/internal/service/availability"
	"github.com/glowdesk/salon-api/internal/timeslot"
)

type Handler struct {
	service *availabilitySvc.Service
}

func NewHandler(service *availabilitySvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	providers := r.Group("/providers/:id")
	{
		providers.GET("/slots", h.ListSlots)
		providers.GET("/slots/check", h.CheckSlot)
		providers.GET("/status", h.Status)
		providers.GET("/unavailable-reasons", h.UnavailableReasons)
	}
	r.GET("/salons/:id/availability", h.ListAvailableProviders)
}

// queryDate reads the date query parameter, defaulting to today.
func queryDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return timeslot.TruncateDate(time.Now()), nil
	}
	return timeslot.ParseDate(raw)
}

func (h *Handler) ListSlots(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	date, err := queryDate(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), providerID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"provider_id": providerID,
		"date":        date.Format(timeslot.DateLayout),
		"slots":       slots,
	}))
}

func (h *Handler) CheckSlot(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	date, err := queryDate(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	label := c.Query("time")
	available, err := h.service.CheckSlot(c.Request.Context(), providerID, date, label)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"provider_id": providerID,
		"date":        date.Format(timeslot.DateLayout),
		"time":        label,
		"available":   available,
	}))
}

func (h *Handler) Status(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	date, err := queryDate(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	status, err := h.service.Status(c.Request.Context(), providerID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(status))
}

func (h *Handler) UnavailableReasons(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	date, err := queryDate(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	reasons, err := h.service.UnavailableReasons(c.Request.Context(), providerID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"provider_id": providerID,
		"date":        date.Format(timeslot.DateLayout),
		"reasons":     reasons,
	}))
}

func (h *Handler) ListAvailableProviders(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid salon ID"))
		return
	}

	date, err := queryDate(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	providers, err := h.service.ListAvailableProviders(c.Request.Context(), salonID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"salon_id":  salonID,
		"date":      date.Format(timeslot.DateLayout),
		"providers": providers,
	}))
}
