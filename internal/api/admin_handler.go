package api

import (
	"log/slog"
	"net/http"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	profileService service.ProfileService
	logger         *slog.Logger
}

func NewAdminHandler(profileService service.ProfileService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{profileService: profileService, logger: logger}
}

type AdminUpdateProfileRequest struct {
	Name             *string                  `json:"name"`
	Role             *domain.Role             `json:"role" binding:"omitempty,oneof=admin professional client"`
	ProfessionalType *domain.ProfessionalType `json:"professional_type" binding:"omitempty,oneof=trainer nutritionist both"`
}

// ListProfiles returns every profile, or those of ?role=.
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.List(c.Request.Context(), domain.Role(c.Query("role")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfilesToResponse(profiles))
}

func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req AdminUpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profileService.AdminUpdate(c.Request.Context(), id, service.ProfileUpdate{
		Name:             req.Name,
		Role:             req.Role,
		ProfessionalType: req.ProfessionalType,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}
