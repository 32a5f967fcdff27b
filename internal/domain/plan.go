package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PlanKind distinguishes the two plan families.
type PlanKind string

const (
	PlanKindWorkout PlanKind = "workout"
	PlanKindDiet    PlanKind = "diet"
)

// PlanStatus is the lifecycle state of a plan: draft → review → sent.
type PlanStatus string

const (
	PlanStatusDraft  PlanStatus = "draft"
	PlanStatusReview PlanStatus = "review"
	PlanStatusSent   PlanStatus = "sent"
)

// MaxPlanWeeks bounds the activation window of a sent plan.
const MaxPlanWeeks = 104

var (
	ErrInvalidTransition = errors.New("invalid plan status transition")
	ErrPlanNotAssigned   = errors.New("plan has no client assigned")
	ErrInvalidPlanDates  = errors.New("invalid plan start/end dates")
	ErrPlanLocked        = errors.New("plan has been sent and can no longer be edited")
	ErrPlanNameRequired  = errors.New("plan name is required")
)

// Plan holds the fields shared by diets and workouts.
type Plan struct {
	ID             uuid.UUID  `json:"id"`
	ProfessionalID uuid.UUID  `json:"professional_id"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	Name           string     `json:"name"`
	Objective      string     `json:"objective,omitempty"`
	Methodology    string     `json:"methodology,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         PlanStatus `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	DurationWeeks  *int       `json:"duration_weeks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewPlan returns a draft plan owned by professionalID.
func NewPlan(professionalID uuid.UUID, clientID *uuid.UUID, name string, now time.Time) Plan {
	return Plan{
		ID:             uuid.New(),
		ProfessionalID: professionalID,
		ClientID:       clientID,
		Name:           name,
		Status:         PlanStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SendOptions are the professional-chosen parameters applied when a plan is sent.
// DurationWeeks takes precedence over EndDate. Without either the plan is open-ended.
type SendOptions struct {
	StartDate     *time.Time
	DurationWeeks *int
	EndDate       *time.Time
}

// Editable reports whether the plan content may still change.
func (p *Plan) Editable() bool {
	return p.Status != PlanStatusSent
}

// SubmitForReview moves a draft into review.
func (p *Plan) SubmitForReview(now time.Time) error {
	if p.Status != PlanStatusDraft {
		return ErrInvalidTransition
	}
	p.Status = PlanStatusReview
	p.SubmittedAt = &now
	p.UpdatedAt = now
	return nil
}

// SendBackToDraft rolls a plan under review back to draft. No other field is cleared.
func (p *Plan) SendBackToDraft(now time.Time) error {
	if p.Status != PlanStatusReview {
		return ErrInvalidTransition
	}
	p.Status = PlanStatusDraft
	p.UpdatedAt = now
	return nil
}

// Send delivers the plan to its client. The activation window is computed here and
// nowhere else; today is the calendar day used when no start date is given.
func (p *Plan) Send(now, today time.Time, opts SendOptions) error {
	if p.Status == PlanStatusSent {
		return ErrInvalidTransition
	}
	if p.ClientID == nil {
		return ErrPlanNotAssigned
	}

	start := DateOf(today)
	if opts.StartDate != nil {
		start = DateOf(*opts.StartDate)
	}

	var end *time.Time
	var weeks *int
	switch {
	case opts.DurationWeeks != nil:
		if *opts.DurationWeeks <= 0 || *opts.DurationWeeks > MaxPlanWeeks {
			return ErrInvalidPlanDates
		}
		w := *opts.DurationWeeks
		e := AddDays(start, 7*w-1)
		end, weeks = &e, &w
	case opts.EndDate != nil:
		e := DateOf(*opts.EndDate)
		if e.Before(start) {
			return ErrInvalidPlanDates
		}
		days := int(e.Sub(start).Hours()/24) + 1
		w := (days + 6) / 7
		if w > MaxPlanWeeks {
			return ErrInvalidPlanDates
		}
		end, weeks = &e, &w
	}

	p.Status = PlanStatusSent
	p.SentAt = &now
	p.StartDate = &start
	p.EndDate = end
	p.DurationWeeks = weeks
	p.UpdatedAt = now
	return nil
}

// IsActive reports whether the plan is visible to its client as current on today.
func (p *Plan) IsActive(today time.Time) bool {
	if p.Status != PlanStatusSent {
		return false
	}
	if p.EndDate == nil {
		return true
	}
	return !DateOf(*p.EndDate).Before(DateOf(today))
}

// IsExpired reports whether a sent plan's window has closed.
func (p *Plan) IsExpired(today time.Time) bool {
	return p.Status == PlanStatusSent && !p.IsActive(today)
}
