package handler

import (
	"errors"
	"net/http"

	"manu4/internal/scheduler"
	"manu4/internal/service"
	"manu4/internal/ws"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sched      *scheduler.Scheduler
	dispatcher *service.Dispatcher
	registry   *ws.Registry
}

func NewAdminHandler(sched *scheduler.Scheduler, dispatcher *service.Dispatcher, registry *ws.Registry) *AdminHandler {
	return &AdminHandler{sched: sched, dispatcher: dispatcher, registry: registry}
}

// TriggerCheck runs one scanner outside its schedule.
func (h *AdminHandler) TriggerCheck(c *gin.Context) {
	kind := c.Param("kind")
	if err := h.sched.RunManualCheck(c.Request.Context(), kind); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "check completed", "kind": kind})
}

// Dispatch sends one event (e.g. a system alert) through the dispatcher.
func (h *AdminHandler) Dispatch(c *gin.Context) {
	var ev service.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}
	res, err := h.dispatcher.Dispatch(c.Request.Context(), ev)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// DispatchBatch processes an array of events, aggregating per-item outcomes.
func (h *AdminHandler) DispatchBatch(c *gin.Context) {
	var events []service.Event
	if err := c.ShouldBindJSON(&events); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid events array"})
		return
	}
	c.JSON(http.StatusOK, h.dispatcher.DispatchBatch(c.Request.Context(), events))
}

// WSStats reports connected live clients.
func (h *AdminHandler) WSStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetStats())
}
