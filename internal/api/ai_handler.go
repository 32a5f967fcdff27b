package api

import (
	"log/slog"
	"net/http"

	"alcyxob/ecofit/internal/ai"
	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
)

// AIHandler returns unsaved drafts for the professional to edit.
type AIHandler struct {
	draftService service.DraftService
	logger       *slog.Logger
}

func NewAIHandler(draftService service.DraftService, logger *slog.Logger) *AIHandler {
	return &AIHandler{draftService: draftService, logger: logger}
}

type DietDraftRequest struct {
	ClientName    string   `json:"client_name"`
	Objective     string   `json:"objective" binding:"required"`
	DailyCalories int      `json:"daily_calories" binding:"min=0"`
	MealsPerDay   int      `json:"meals_per_day" binding:"min=0,max=10"`
	Restrictions  []string `json:"restrictions"`
	Notes         string   `json:"notes"`
}

type WorkoutDraftRequest struct {
	ClientName      string   `json:"client_name"`
	Objective       string   `json:"objective" binding:"required"`
	Level           string   `json:"level"`
	DurationMinutes int      `json:"duration_minutes" binding:"min=0"`
	Equipment       []string `json:"equipment"`
	Focus           string   `json:"focus"`
	Notes           string   `json:"notes"`
}

type DivisionsDraftRequest struct {
	ClientName  string   `json:"client_name"`
	Objective   string   `json:"objective" binding:"required"`
	Level       string   `json:"level"`
	Divisions   int      `json:"divisions" binding:"required,min=2,max=3"`
	DaysPerWeek int      `json:"days_per_week" binding:"min=0,max=7"`
	Equipment   []string `json:"equipment"`
	Notes       string   `json:"notes"`
}

type ScheduleSuggestionRequest struct {
	Divisions       []string `json:"divisions" binding:"required,min=1,max=3"`
	DaysPerWeek     int      `json:"days_per_week" binding:"required,min=1,max=7"`
	UnavailableDays []string `json:"unavailable_days"`
	Notes           string   `json:"notes"`
}

// input drops nothing silently: an unknown label or day is a 400.
func (r ScheduleSuggestionRequest) input() (ai.ScheduleInput, bool) {
	in := ai.ScheduleInput{DaysPerWeek: r.DaysPerWeek, Notes: r.Notes}
	for _, raw := range r.Divisions {
		label, ok := domain.ParseDivisionLabel(raw)
		if !ok {
			return in, false
		}
		in.Divisions = append(in.Divisions, label)
	}
	for _, raw := range r.UnavailableDays {
		day, ok := domain.ParseWeekday(raw)
		if !ok {
			return in, false
		}
		in.UnavailableDays = append(in.UnavailableDays, day)
	}
	return in, true
}

// DietDraft godoc
// @Summary Draft a diet with the configured LLM
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body DietDraftRequest true "Diet brief"
// @Success 200 {object} ai.DietDraft
// @Failure 502 {object} gin.H "Provider failed or returned an unusable draft"
// @Failure 503 {object} gin.H "AI drafting not configured"
// @Router /ai/diet-draft [post]
func (h *AIHandler) DietDraft(c *gin.Context) {
	var req DietDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.draftService.Diet(c.Request.Context(), ai.DietInput{
		ClientName:    req.ClientName,
		Objective:     req.Objective,
		DailyCalories: req.DailyCalories,
		MealsPerDay:   req.MealsPerDay,
		Restrictions:  req.Restrictions,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *AIHandler) WorkoutDraft(c *gin.Context) {
	var req WorkoutDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.draftService.Workout(c.Request.Context(), ai.WorkoutInput{
		ClientName:      req.ClientName,
		Objective:       req.Objective,
		Level:           req.Level,
		DurationMinutes: req.DurationMinutes,
		Equipment:       req.Equipment,
		Focus:           req.Focus,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *AIHandler) DivisionsDraft(c *gin.Context) {
	var req DivisionsDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.draftService.Divisions(c.Request.Context(), ai.DivisionsInput{
		ClientName:  req.ClientName,
		Objective:   req.Objective,
		Level:       req.Level,
		Divisions:   req.Divisions,
		DaysPerWeek: req.DaysPerWeek,
		Equipment:   req.Equipment,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *AIHandler) ScheduleSuggestion(c *gin.Context) {
	var req ScheduleSuggestionRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input()
	if !ok {
		abortWithError(c, http.StatusBadRequest, "divisions must be A, B or C and unavailable_days must be weekdays.")
		return
	}
	draft, err := h.draftService.Schedule(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
