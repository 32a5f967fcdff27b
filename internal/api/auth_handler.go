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

// AuthHandler serves login, self-profile and password reset.
type AuthHandler struct {
	authService    service.AuthService
	profileService service.ProfileService
	logger         *slog.Logger
}

func NewAuthHandler(authService service.AuthService, profileService service.ProfileService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, profileService: profileService, logger: logger}
}

// --- Request/Response Structs ---

// ProfileResponse excludes sensitive info like password hash
type ProfileResponse struct {
	ID               uuid.UUID                `json:"id"`
	Email            string                   `json:"email"`
	Name             string                   `json:"name"`
	Role             domain.Role              `json:"role"`
	ProfessionalType *domain.ProfessionalType `json:"professional_type,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

type UpdateMeRequest struct {
	Name string `json:"name" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --- Handler Methods ---

// Login godoc
// @Summary Log in a user
// @Description Authenticates a profile and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, profile, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, Profile: MapProfileToResponse(profile)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Get(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profileService.UpdateName(c.Request.Context(), principal.ID, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// RequestPasswordReset godoc
// @Summary Email a password reset link
// @Description Always answers 202 so callers cannot learn which addresses exist.
// @Tags Auth
// @Accept json
// @Param request body ResetPasswordRequest true "Account email"
// @Success 202
// @Router /auth/reset-password [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the address is registered, a reset link is on its way."})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req ConfirmResetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated."})
}

// MapProfileToResponse converts a domain Profile to a ProfileResponse DTO.
func MapProfileToResponse(p *domain.Profile) ProfileResponse {
	if p == nil {
		return ProfileResponse{}
	}
	return ProfileResponse{
		ID:               p.ID,
		Email:            p.Email,
		Name:             p.Name,
		Role:             p.Role,
		ProfessionalType: p.ProfessionalType,
		CreatedAt:        p.CreatedAt,
	}
}

// MapProfilesToResponse converts a slice of domain.Profile to ProfileResponse DTOs.
func MapProfilesToResponse(profiles []domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, len(profiles))
	for i := range profiles {
		out[i] = MapProfileToResponse(&profiles[i])
	}
	return out
}
