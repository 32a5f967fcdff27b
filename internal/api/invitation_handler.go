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

type InvitationHandler struct {
	invitationService service.InvitationService
	logger            *slog.Logger
}

func NewInvitationHandler(invitationService service.InvitationService, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService, logger: logger}
}

type CreateInvitationRequest struct {
	Email            string                   `json:"email" binding:"required,email"`
	Role             domain.Role              `json:"role" binding:"required,oneof=admin professional client"`
	ProfessionalType *domain.ProfessionalType `json:"professional_type" binding:"omitempty,oneof=trainer nutritionist both"`
}

type InvitationResponse struct {
	ID               uuid.UUID                `json:"id"`
	Email            string                   `json:"email"`
	Role             domain.Role              `json:"role"`
	ProfessionalType *domain.ProfessionalType `json:"professional_type,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	ExpiresAt        time.Time                `json:"expires_at"`
	UsedAt           *time.Time               `json:"used_at,omitempty"`
}

type CreateInvitationResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	AcceptURL  string             `json:"accept_url"`
	EmailSent  bool               `json:"email_sent"`
}

type CreateAccountRequest struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Create godoc
// @Summary Invite someone to create an account
// @Description Admins invite any role; professionals invite clients. The email is best effort.
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitation body CreateInvitationRequest true "Invitee"
// @Success 201 {object} CreateInvitationResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Role may not invite this role"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.invitationService.Create(c.Request.Context(), principal, service.CreateInvitationInput{
		Email:            req.Email,
		Role:             req.Role,
		ProfessionalType: req.ProfessionalType,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, CreateInvitationResponse{
		Invitation: MapInvitationToResponse(res.Invitation),
		AcceptURL:  res.AcceptURL,
		EmailSent:  res.EmailSent,
	})
}

// Check is public: the accept page asks whether a token is usable.
func (h *InvitationHandler) Check(c *gin.Context) {
	status, err := h.invitationService.Check(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *InvitationHandler) ListMine(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	invitations, err := h.invitationService.ListMine(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]InvitationResponse, len(invitations))
	for i := range invitations {
		out[i] = MapInvitationToResponse(&invitations[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *InvitationHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	token, profile, err := h.invitationService.CreateAccount(c.Request.Context(), service.CreateAccountInput{
		Token:    req.Token,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, LoginResponse{Token: token, Profile: MapProfileToResponse(profile)})
}

func MapInvitationToResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:               inv.ID,
		Email:            inv.Email,
		Role:             inv.Role,
		ProfessionalType: inv.ProfessionalType,
		CreatedAt:        inv.CreatedAt,
		ExpiresAt:        inv.ExpiresAt,
		UsedAt:           inv.UsedAt,
	}
}
