package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/monitor"
	"surgical-scheduling-backend/internal/notifier"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/scheduler"
	"surgical-scheduling-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const defaultEventLimit = 50

// MonitorHandler serves the read-only views: system snapshot, event feed
// and room occupancy.
type MonitorHandler struct {
	router   *dispatch.Router
	engine   *scheduler.Engine
	recorder *notifier.Recorder
	monitor  *monitor.Monitor
}

func NewMonitorHandler(router *dispatch.Router, engine *scheduler.Engine, recorder *notifier.Recorder, mon *monitor.Monitor) *MonitorHandler {
	return &MonitorHandler{router: router, engine: engine, recorder: recorder, monitor: mon}
}

// GetSnapshot returns a point-in-time summary of system state
func (h *MonitorHandler) GetSnapshot(c *gin.Context) {
	// Bring subtask states up to the wall clock so the summary reflects now.
	// Serving a slightly stale snapshot beats failing the read.
	if _, err := h.engine.RefreshStates(time.Now()); err != nil {
		log.Printf("State refresh failed: %v", err)
	}

	env := protocol.NewEnvelope(
		protocol.PerformativeRequest,
		protocol.RoleUI,
		protocol.RoleMonitor,
		protocol.KindSnapshot,
		nil,
	)

	reply, err := h.router.Dispatch(env)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to build snapshot")
		return
	}
	utils.SuccessResponse(c, reply.Content.Payload)
}

// ListEvents returns the most recent events, newest first
func (h *MonitorHandler) ListEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events, err := h.recorder.List(limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	utils.SuccessResponse(c, gin.H{"events": events, "count": len(events)})
}

// GetRooms returns the fixed room pool with current occupancy
func (h *MonitorHandler) GetRooms(c *gin.Context) {
	snapshot, err := h.monitor.Snapshot(time.Now())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch rooms")
		return
	}
	utils.SuccessResponse(c, gin.H{"rooms": snapshot.Rooms, "count": len(snapshot.Rooms)})
}
