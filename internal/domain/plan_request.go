package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PlanRequestType is what a client asks for.
type PlanRequestType string

const (
	PlanRequestWorkout PlanRequestType = "workout"
	PlanRequestDiet    PlanRequestType = "diet"
	PlanRequestBoth    PlanRequestType = "both"
)

// PlanRequestStatus tracks a request from creation to resolution.
type PlanRequestStatus string

const (
	PlanRequestPending    PlanRequestStatus = "pending"
	PlanRequestInProgress PlanRequestStatus = "in_progress"
	PlanRequestCompleted  PlanRequestStatus = "completed"
	PlanRequestCancelled  PlanRequestStatus = "cancelled"
)

var (
	ErrActivePlanExists      = errors.New("an active plan of this kind already exists")
	ErrOpenRequestExists     = errors.New("an open request of this kind already exists")
	ErrInvalidRequestType    = errors.New("invalid plan request type")
	ErrRequestNotOpen        = errors.New("plan request is no longer open")
	ErrRequestAlreadyClaimed = errors.New("plan request is already assigned to a professional")
)

func (t PlanRequestType) Valid() bool {
	switch t {
	case PlanRequestWorkout, PlanRequestDiet, PlanRequestBoth:
		return true
	}
	return false
}

// Kinds lists the plan kinds the request asks for.
func (t PlanRequestType) Kinds() []PlanKind {
	switch t {
	case PlanRequestWorkout:
		return []PlanKind{PlanKindWorkout}
	case PlanRequestDiet:
		return []PlanKind{PlanKindDiet}
	case PlanRequestBoth:
		return []PlanKind{PlanKindWorkout, PlanKindDiet}
	}
	return nil
}

// Covers reports whether a plan of kind k contributes to this request.
func (t PlanRequestType) Covers(k PlanKind) bool {
	for _, kind := range t.Kinds() {
		if kind == k {
			return true
		}
	}
	return false
}

// Overlaps reports whether two request types ask for at least one common kind.
func (t PlanRequestType) Overlaps(o PlanRequestType) bool {
	for _, k := range o.Kinds() {
		if t.Covers(k) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can no longer change.
func (s PlanRequestStatus) IsTerminal() bool {
	return s == PlanRequestCompleted || s == PlanRequestCancelled
}

// PlanRequest is a client's ask for a new plan.
type PlanRequest struct {
	ID             uuid.UUID         `json:"id"`
	ClientID       uuid.UUID         `json:"client_id"`
	ProfessionalID *uuid.UUID        `json:"professional_id,omitempty"`
	Type           PlanRequestType   `json:"type"`
	Status         PlanRequestStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// NewPlanRequest returns a pending request.
func NewPlanRequest(clientID uuid.UUID, professionalID *uuid.UUID, t PlanRequestType, notes string, now time.Time) (*PlanRequest, error) {
	if !t.Valid() {
		return nil, ErrInvalidRequestType
	}
	return &PlanRequest{
		ID:             uuid.New(),
		ClientID:       clientID,
		ProfessionalID: professionalID,
		Type:           t,
		Status:         PlanRequestPending,
		Notes:          notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (r *PlanRequest) IsOpen() bool { return !r.Status.IsTerminal() }

// Claim assigns an unassigned open request to professionalID.
func (r *PlanRequest) Claim(professionalID uuid.UUID, now time.Time) error {
	if !r.IsOpen() {
		return ErrRequestNotOpen
	}
	if r.ProfessionalID != nil && *r.ProfessionalID != professionalID {
		return ErrRequestAlreadyClaimed
	}
	r.ProfessionalID = &professionalID
	r.Status = PlanRequestInProgress
	r.UpdatedAt = now
	return nil
}

// Cancel withdraws an open request.
func (r *PlanRequest) Cancel(now time.Time) error {
	if !r.IsOpen() {
		return ErrRequestNotOpen
	}
	r.Status = PlanRequestCancelled
	r.UpdatedAt = now
	return nil
}

// Fulfil records that a plan of kind k was sent for this request. activeKinds holds
// the kinds the client has an active plan for after that send. The request completes
// once every kind it asks for is active; until then it stays in progress.
func (r *PlanRequest) Fulfil(k PlanKind, activeKinds map[PlanKind]bool, professionalID uuid.UUID, now time.Time) error {
	if !r.IsOpen() {
		return ErrRequestNotOpen
	}
	if !r.Type.Covers(k) {
		return ErrInvalidRequestType
	}
	if r.ProfessionalID == nil {
		r.ProfessionalID = &professionalID
	}
	r.UpdatedAt = now
	for _, kind := range r.Type.Kinds() {
		if kind != k && !activeKinds[kind] {
			r.Status = PlanRequestInProgress
			return nil
		}
	}
	r.Status = PlanRequestCompleted
	r.CompletedAt = &now
	return nil
}

// CheckPlanRequestAllowed applies the creation guards: no active plan of a requested
// kind, and no open request whose type overlaps t.
func CheckPlanRequestAllowed(t PlanRequestType, activeKinds map[PlanKind]bool, existing []PlanRequest) error {
	if !t.Valid() {
		return ErrInvalidRequestType
	}
	for _, k := range t.Kinds() {
		if activeKinds[k] {
			return ErrActivePlanExists
		}
	}
	for _, r := range existing {
		if r.IsOpen() && r.Type.Overlaps(t) {
			return ErrOpenRequestExists
		}
	}
	return nil
}

// MatchProfessional picks the professional responsible for a new request: the inviter
// of the client's most recently used invitation, else the author of the client's most
// recent prior plan, else nobody. Invitation wins over plan history when both exist.
func MatchProfessional(lastUsedInvitation *Invitation, priorPlans ...*Plan) *uuid.UUID {
	if lastUsedInvitation != nil && lastUsedInvitation.InvitedBy != nil {
		id := *lastUsedInvitation.InvitedBy
		return &id
	}
	var latest *Plan
	for _, p := range priorPlans {
		if p == nil {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil
	}
	id := latest.ProfessionalID
	return &id
}
