package api

import (
	"log/slog"
	"net/http"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler serves everything a client does with their own plans.
type ClientHandler struct {
	planService        service.PlanService
	planRequestService service.PlanRequestService
	progressService    service.ProgressService
	scheduleService    service.ScheduleService
	logger             *slog.Logger
}

func NewClientHandler(
	planService service.PlanService,
	planRequestService service.PlanRequestService,
	progressService service.ProgressService,
	scheduleService service.ScheduleService,
	logger *slog.Logger,
) *ClientHandler {
	return &ClientHandler{
		planService:        planService,
		planRequestService: planRequestService,
		progressService:    progressService,
		scheduleService:    scheduleService,
		logger:             logger,
	}
}

// --- DTOs ---

type CreatePlanRequestRequest struct {
	Type  domain.PlanRequestType `json:"type" binding:"required,oneof=workout diet both"`
	Notes string                 `json:"notes"`
}

type ToggleExerciseRequest struct {
	WorkoutID  uuid.UUID `json:"workout_id" binding:"required"`
	ExerciseID uuid.UUID `json:"exercise_id" binding:"required"`
}

type ConfirmYesterdayRequest struct {
	WorkoutID uuid.UUID `json:"workout_id" binding:"required"`
}

// --- Plans ---

func (h *ClientHandler) GetMyDiets(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	expired, ok := expiredFilter(c)
	if !ok {
		return
	}
	diets, err := h.planService.ClientDiets(c.Request.Context(), principal.ID, expired)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapDietsToResponse(diets))
}

func (h *ClientHandler) GetMyWorkouts(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	expired, ok := expiredFilter(c)
	if !ok {
		return
	}
	workouts, err := h.planService.ClientWorkouts(c.Request.Context(), principal.ID, expired)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// expiredFilter reads ?status=active|expired. Active is the default.
func expiredFilter(c *gin.Context) (bool, bool) {
	switch c.Query("status") {
	case "", "active":
		return false, true
	case "expired":
		return true, true
	}
	abortWithError(c, http.StatusBadRequest, "status must be active or expired.")
	return false, false
}

// --- Plan requests ---

// CreatePlanRequest godoc
// @Summary Ask for a new plan
// @Description Rejected while an active plan or an open request of the same kind exists.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePlanRequestRequest true "Requested plan type"
// @Success 201 {object} domain.PlanRequest
// @Failure 400 {object} gin.H "Invalid type"
// @Failure 409 {object} gin.H "Active plan or open request exists"
// @Router /client/plan-requests [post]
func (h *ClientHandler) CreatePlanRequest(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req CreatePlanRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.planRequestService.Create(c.Request.Context(), principal.ID, req.Type, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ClientHandler) GetMyPlanRequests(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	requests, err := h.planRequestService.ListMine(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *ClientHandler) CancelPlanRequest(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, err := h.planRequestService.Cancel(c.Request.Context(), principal.ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// --- Sessions and gamification ---

// ToggleExercise godoc
// @Summary Check or uncheck an exercise for today
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param toggle body ToggleExerciseRequest true "Workout and exercise"
// @Success 200 {object} service.SessionUpdate
// @Failure 404 {object} gin.H "Workout not active for this client, or exercise not in workout"
// @Router /client/sessions/toggle [post]
func (h *ClientHandler) ToggleExercise(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req ToggleExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := h.progressService.ToggleExercise(c.Request.Context(), principal.ID, req.WorkoutID, req.ExerciseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

func (h *ClientHandler) ConfirmYesterday(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req ConfirmYesterdayRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := h.progressService.ConfirmYesterday(c.Request.Context(), principal.ID, req.WorkoutID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// PendingConfirmation answers {"pending": null} when yesterday needs nothing.
func (h *ClientHandler) PendingConfirmation(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	pending, err := h.progressService.PendingConfirmation(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (h *ClientHandler) GetMySessions(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	sessions, err := h.progressService.SessionsBetween(c.Request.Context(), principal.ID, from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *ClientHandler) GetMyGamification(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	summary, err := h.progressService.Summary(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Schedule ---

func (h *ClientHandler) GetMySchedule(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	week, err := h.scheduleService.Week(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *ClientHandler) GetToday(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	today, err := h.scheduleService.Today(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, today)
}

// GetCalendar projects the week over ?month=YYYY-MM, or over ?from=&to= for
// at most 62 days.
func (h *ClientHandler) GetCalendar(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if raw := c.Query("month"); raw != "" {
		month, err := time.Parse("2006-01", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "month must be YYYY-MM.")
			return
		}
		days, err := h.scheduleService.Month(c.Request.Context(), principal.ID, month.Year(), month.Month())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, days)
		return
	}
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	days, err := h.scheduleService.Calendar(c.Request.Context(), principal.ID, from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// dateRange reads the required ?from= and ?to= query dates.
func (h *ClientHandler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw == "" || toRaw == "" {
		abortWithError(c, http.StatusBadRequest, "from and to are required (YYYY-MM-DD).")
		return time.Time{}, time.Time{}, false
	}
	from, err := parseDate("from", &fromRaw)
	if err != nil {
		respondError(c, h.logger, err)
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDate("to", &toRaw)
	if err != nil {
		respondError(c, h.logger, err)
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}
