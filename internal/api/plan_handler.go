package api

import (
	"context"
	"log/slog"
	"net/http"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanHandler serves the professional's diet and workout authoring.
type PlanHandler struct {
	planService service.PlanService
	logger      *slog.Logger
}

func NewPlanHandler(planService service.PlanService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger}
}

// --- DTOs ---

type PlanHeaderRequest struct {
	ClientID    *uuid.UUID `json:"client_id"`
	Name        string     `json:"name" binding:"required"`
	Objective   string     `json:"objective"`
	Methodology string     `json:"methodology"`
	Notes       string     `json:"notes"`
}

func (r PlanHeaderRequest) input() service.PlanInput {
	return service.PlanInput{
		ClientID:    r.ClientID,
		Name:        r.Name,
		Objective:   r.Objective,
		Methodology: r.Methodology,
		Notes:       r.Notes,
	}
}

type FoodRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories" binding:"omitempty,min=0"`
	Notes    string   `json:"notes"`
}

type MealRequest struct {
	Name  string        `json:"name" binding:"required"`
	Time  string        `json:"time"`
	Notes string        `json:"notes"`
	Foods []FoodRequest `json:"foods" binding:"dive"`
}

type DietRequest struct {
	PlanHeaderRequest
	Meals []MealRequest `json:"meals" binding:"dive"`
}

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Sets        int    `json:"sets" binding:"min=0"`
	Reps        string `json:"reps"`
	Rest        string `json:"rest"`
	Notes       string `json:"notes"`
	Alternative string `json:"alternative"`
	MediaKey    string `json:"media_key"`
}

type WorkoutRequest struct {
	PlanHeaderRequest
	Division  *domain.DivisionLabel `json:"division" binding:"omitempty,oneof=A B C"`
	DayOfWeek *domain.Weekday       `json:"day_of_week" binding:"omitempty,oneof=mon tue wed thu fri sat sun"`
	Exercises []ExerciseRequest     `json:"exercises" binding:"dive"`
}

type SendRequest struct {
	StartDate     *string    `json:"start_date"`
	DurationWeeks *int       `json:"duration_weeks" binding:"omitempty,min=1,max=104"`
	EndDate       *string    `json:"end_date"`
	PlanRequestID *uuid.UUID `json:"plan_request_id"`
}

// DietResponse adds the computed calorie total to the stored diet.
type DietResponse struct {
	*domain.Diet
	TotalCalories float64 `json:"total_calories"`
}

func (r DietRequest) input() service.DietPlanInput {
	meals := make([]domain.DietMeal, len(r.Meals))
	for i, m := range r.Meals {
		foods := make([]domain.Food, len(m.Foods))
		for j, f := range m.Foods {
			foods[j] = domain.Food{Name: f.Name, Quantity: f.Quantity, Calories: f.Calories, Notes: f.Notes}
		}
		meals[i] = domain.DietMeal{Name: m.Name, Time: m.Time, Notes: m.Notes, Foods: foods}
	}
	return service.DietPlanInput{PlanInput: r.PlanHeaderRequest.input(), Meals: meals}
}

func (r WorkoutRequest) input() service.WorkoutPlanInput {
	exercises := make([]domain.WorkoutExercise, len(r.Exercises))
	for i, e := range r.Exercises {
		exercises[i] = domain.WorkoutExercise{
			Name:        e.Name,
			Sets:        e.Sets,
			Reps:        e.Reps,
			Rest:        e.Rest,
			Notes:       e.Notes,
			Alternative: e.Alternative,
			MediaKey:    e.MediaKey,
		}
	}
	return service.WorkoutPlanInput{
		PlanInput: r.PlanHeaderRequest.input(),
		Division:  r.Division,
		DayOfWeek: r.DayOfWeek,
		Exercises: exercises,
	}
}

func MapDietToResponse(d *domain.Diet) DietResponse {
	return DietResponse{Diet: d, TotalCalories: d.TotalCalories()}
}

func MapDietsToResponse(diets []domain.Diet) []DietResponse {
	out := make([]DietResponse, len(diets))
	for i := range diets {
		out[i] = MapDietToResponse(&diets[i])
	}
	return out
}

// --- Diets ---

// CreateDiet godoc
// @Summary Create a draft diet
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param diet body DietRequest true "Diet header and meals"
// @Success 201 {object} DietResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Professional type cannot author diets"
// @Router /professional/diets [post]
func (h *PlanHandler) CreateDiet(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req DietRequest
	if !bindJSON(c, &req) {
		return
	}
	diet, err := h.planService.CreateDiet(c.Request.Context(), principal, req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapDietToResponse(diet))
}

func (h *PlanHandler) GetDiet(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	diet, err := h.planService.GetDiet(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapDietToResponse(diet))
}

func (h *PlanHandler) ListDiets(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	diets, err := h.planService.ListDiets(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapDietsToResponse(diets))
}

// UpdateDiet replaces the header and every meal. Sent diets are locked.
func (h *PlanHandler) UpdateDiet(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req DietRequest
	if !bindJSON(c, &req) {
		return
	}
	diet, err := h.planService.UpdateDiet(c.Request.Context(), principal, id, req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapDietToResponse(diet))
}

func (h *PlanHandler) DeleteDiet(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeleteDiet(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Workouts ---

func (h *PlanHandler) CreateWorkout(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	workout, err := h.planService.CreateWorkout(c.Request.Context(), principal, req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// GetWorkout is shared by authors, admins and the assigned client.
func (h *PlanHandler) GetWorkout(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	workout, err := h.planService.GetWorkout(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *PlanHandler) ListWorkouts(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	workouts, err := h.planService.ListWorkouts(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *PlanHandler) UpdateWorkout(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	workout, err := h.planService.UpdateWorkout(c.Request.Context(), principal, id, req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *PlanHandler) DeleteWorkout(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeleteWorkout(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Lifecycle ---

// Submit moves a draft of kind into review.
func (h *PlanHandler) Submit(kind domain.PlanKind) gin.HandlerFunc {
	return h.transition(kind, h.planService.Submit)
}

// BackToDraft returns a plan under review to draft.
func (h *PlanHandler) BackToDraft(kind domain.PlanKind) gin.HandlerFunc {
	return h.transition(kind, h.planService.BackToDraft)
}

type transitionFunc func(ctx context.Context, author service.Principal, kind domain.PlanKind, id uuid.UUID) (*domain.Plan, error)

func (h *PlanHandler) transition(kind domain.PlanKind, apply transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := mustPrincipal(c)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		plan, err := apply(c.Request.Context(), principal, kind, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}

// Send godoc
// @Summary Send a plan to its client
// @Description Activates the plan and resolves the client's matching plan request in one transaction.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan id"
// @Param send body SendRequest false "Activation window and request"
// @Success 200 {object} service.SendResult
// @Failure 400 {object} gin.H "Invalid dates or no client assigned"
// @Failure 409 {object} gin.H "Already sent"
// @Router /professional/{kind}s/{id}/send [post]
func (h *PlanHandler) Send(kind domain.PlanKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := mustPrincipal(c)
		if !ok {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var req SendRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
			return
		}

		start, err := parseDate("start_date", req.StartDate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		end, err := parseDate("end_date", req.EndDate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		res, err := h.planService.Send(c.Request.Context(), principal, kind, id, service.SendInput{
			StartDate:     start,
			DurationWeeks: req.DurationWeeks,
			EndDate:       end,
			PlanRequestID: req.PlanRequestID,
		})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
