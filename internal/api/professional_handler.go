package api

import (
	"log/slog"
	"net/http"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfessionalHandler serves request triage and per-client settings.
type ProfessionalHandler struct {
	planRequestService service.PlanRequestService
	progressService    service.ProgressService
	scheduleService    service.ScheduleService
	mediaService       service.MediaService
	logger             *slog.Logger
}

func NewProfessionalHandler(
	planRequestService service.PlanRequestService,
	progressService service.ProgressService,
	scheduleService service.ScheduleService,
	mediaService service.MediaService,
	logger *slog.Logger,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		planRequestService: planRequestService,
		progressService:    progressService,
		scheduleService:    scheduleService,
		mediaService:       mediaService,
		logger:             logger,
	}
}

// SetTargetRequest clears the target when weekly_target is null.
type SetTargetRequest struct {
	WeeklyTarget *int `json:"weekly_target"`
}

type UploadURLRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ScheduleRequest maps mon..sun to "A", "B", "C" or null. Missing days are rest.
type ScheduleRequest map[string]*string

func (r ScheduleRequest) week() domain.WeekSchedule {
	week := domain.WeekSchedule{}
	for rawDay, rawLabel := range r {
		day, ok := domain.ParseWeekday(rawDay)
		if !ok {
			day = domain.Weekday(rawDay)
		}
		if rawLabel == nil {
			week[day] = nil
			continue
		}
		label, ok := domain.ParseDivisionLabel(*rawLabel)
		if !ok {
			label = domain.DivisionLabel(*rawLabel)
		}
		week[day] = &label
	}
	return week
}

func (h *ProfessionalHandler) ListOpenRequests(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	requests, err := h.planRequestService.ListOpen(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *ProfessionalHandler) ClaimRequest(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, err := h.planRequestService.Claim(c.Request.Context(), principal.ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// SetClientTarget godoc
// @Summary Set or clear a client's weekly session target
// @Tags Professional
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client id"
// @Param target body SetTargetRequest true "1..7 or null"
// @Success 200 {object} domain.GamificationSummary
// @Failure 400 {object} gin.H "Target out of range"
// @Failure 403 {object} gin.H "Caller does not work with this client"
// @Router /professional/clients/{clientId}/target [put]
func (h *ProfessionalHandler) SetClientTarget(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req SetTargetRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.progressService.SetWeeklyTarget(c.Request.Context(), principal, clientID, req.WeeklyTarget)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ProfessionalHandler) PutClientSchedule(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	week, err := h.scheduleService.Put(c.Request.Context(), principal, clientID, req.week())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// CreateUploadURL presigns a PUT for a new exercise demonstration file.
func (h *ProfessionalHandler) CreateUploadURL(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	upload, err := h.mediaService.UploadURL(c.Request.Context(), principal.ID, req.ContentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// GetExerciseMediaURL is reachable by anyone who may read the workout.
func (h *ProfessionalHandler) GetExerciseMediaURL(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	workoutID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := uuidParam(c, "exerciseId")
	if !ok {
		return
	}
	u, err := h.mediaService.DownloadURL(c.Request.Context(), principal, workoutID, exerciseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
