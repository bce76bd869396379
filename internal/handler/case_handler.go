package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/planner"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/scheduler"
	"surgical-scheduling-backend/internal/store"
	"surgical-scheduling-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CaseHandler turns HTTP requests from the UI into protocol envelopes and
// dispatches them through the router. Reads refresh subtask states with
// the current wall clock first, so a rendered case is never stale.
type CaseHandler struct {
	router *dispatch.Router
	engine *scheduler.Engine
	store  store.Store
}

func NewCaseHandler(router *dispatch.Router, engine *scheduler.Engine, st store.Store) *CaseHandler {
	return &CaseHandler{router: router, engine: engine, store: st}
}

type CreateCaseRequest struct {
	PatientName    string    `json:"patient_name" binding:"required"`
	ProcedureName  string    `json:"procedure_name" binding:"required"`
	Priority       string    `json:"priority" binding:"required,oneof=urgent elective"`
	RequestedStart time.Time `json:"requested_start" binding:"required"`
}

type ScheduleCaseRequest struct {
	RequestedStart *time.Time `json:"requested_start"`
}

// CreateCase registers a new surgical case and composes its plan
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	env := protocol.NewEnvelope(
		protocol.PerformativeRequest,
		protocol.RoleUI,
		protocol.RolePlanner,
		protocol.KindNewCase,
		protocol.NewCasePayload{
			PatientName:    req.PatientName,
			ProcedureName:  req.ProcedureName,
			Priority:       req.Priority,
			RequestedStart: req.RequestedStart,
		},
	)

	reply, err := h.router.Dispatch(env)
	if err != nil {
		h.writeError(c, err)
		return
	}

	payload, ok := reply.Content.Payload.(protocol.NewCaseCreatedPayload)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Unexpected planner reply")
		return
	}
	payload.Case.Status = payload.Case.DeriveStatus()
	utils.CreatedResponse(c, payload.Case)
}

// ScheduleCase assigns a room to an existing case
func (h *CaseHandler) ScheduleCase(c *gin.Context) {
	caseID := c.Param("id")

	var req ScheduleCaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
			return
		}
	}

	env := protocol.NewEnvelope(
		protocol.PerformativeRequest,
		protocol.RoleUI,
		protocol.RoleExecutor,
		protocol.KindScheduleCase,
		protocol.ScheduleCasePayload{CaseID: caseID, RequestedStart: req.RequestedStart},
	)

	reply, err := h.router.Dispatch(env)
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch payload := reply.Content.Payload.(type) {
	case protocol.CaseScheduledPayload:
		utils.SuccessResponse(c, payload)
	case protocol.SchedulingConflictPayload:
		utils.ConflictResponse(c, payload)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "Unexpected executor reply")
	}
}

// DeleteCase removes a case entirely (admin only)
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	caseID := c.Param("id")

	env := protocol.NewEnvelope(
		protocol.PerformativeRequest,
		protocol.RoleUI,
		protocol.RoleExecutor,
		protocol.KindDeleteCase,
		protocol.DeleteCasePayload{CaseID: caseID},
	)

	if _, err := h.router.Dispatch(env); err != nil {
		h.writeError(c, err)
		return
	}
	utils.MessageResponse(c, "Case deleted")
}

// ListCases returns all cases with up-to-date subtask states
func (h *CaseHandler) ListCases(c *gin.Context) {
	h.refresh()

	cases, err := h.store.ListCases()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch cases")
		return
	}
	for i := range cases {
		cases[i].Status = cases[i].DeriveStatus()
	}
	utils.SuccessResponse(c, gin.H{"cases": cases, "count": len(cases)})
}

// GetCase returns one case with up-to-date subtask states
func (h *CaseHandler) GetCase(c *gin.Context) {
	h.refresh()

	result, err := h.store.GetCase(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	result.Status = result.DeriveStatus()
	utils.SuccessResponse(c, result)
}

// refresh advances subtask states to the current wall clock before a read.
// Failures are logged; serving a slightly stale view beats failing the read.
func (h *CaseHandler) refresh() {
	if _, err := h.engine.RefreshStates(time.Now()); err != nil {
		log.Printf("State refresh failed: %v", err)
	}
}

func (h *CaseHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Case not found")
	case errors.Is(err, scheduler.ErrInvalidRequest), errors.Is(err, planner.ErrInvalidCaseInput):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, dispatch.ErrUnroutable):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
