package api

import (
	"log/slog"
	"net/http"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Profiles     service.ProfileService
	Invitations  service.InvitationService
	Plans        service.PlanService
	PlanRequests service.PlanRequestService
	Progress     service.ProgressService
	Schedules    service.ScheduleService
	Media        service.MediaService
	Drafts       service.DraftService
}

func SetupRoutes(router *gin.Engine, services Services, logger *slog.Logger) {
	authHandler := NewAuthHandler(services.Auth, services.Profiles, logger)
	invitationHandler := NewInvitationHandler(services.Invitations, logger)
	adminHandler := NewAdminHandler(services.Profiles, logger)
	planHandler := NewPlanHandler(services.Plans, logger)
	clientHandler := NewClientHandler(services.Plans, services.PlanRequests, services.Progress, services.Schedules, logger)
	professionalHandler := NewProfessionalHandler(services.PlanRequests, services.Progress, services.Schedules, services.Media, logger)
	aiHandler := NewAIHandler(services.Drafts, logger)

	authMiddleware := AuthMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/reset-password", authHandler.RequestPasswordReset)
			authGroup.POST("/reset-password/confirm", authHandler.ConfirmPasswordReset)
			authGroup.POST("/create-account", invitationHandler.CreateAccount)
		}
		// The accept page checks a token before the invitee has an account.
		apiV1.GET("/invitations/:token", invitationHandler.Check)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.PATCH("/me", authHandler.UpdateMe)

		inviters := RoleMiddleware(domain.RoleAdmin, domain.RoleProfessional)
		protected.POST("/invitations", inviters, invitationHandler.Create)
		protected.GET("/invitations", inviters, invitationHandler.ListMine)

		// Authors, admins and the assigned client all read workouts here.
		protected.GET("/workouts/:id", planHandler.GetWorkout)
		protected.GET("/workouts/:id/exercises/:exerciseId/media-url", professionalHandler.GetExerciseMediaURL)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/profiles", adminHandler.ListProfiles)
			adminGroup.PATCH("/profiles/:id", adminHandler.UpdateProfile)
		}

		professionalGroup := protected.Group("/professional")
		professionalGroup.Use(RoleMiddleware(domain.RoleProfessional))
		{
			diets := professionalGroup.Group("/diets")
			{
				diets.POST("", planHandler.CreateDiet)
				diets.GET("", planHandler.ListDiets)
				diets.GET("/:id", planHandler.GetDiet)
				diets.PUT("/:id", planHandler.UpdateDiet)
				diets.DELETE("/:id", planHandler.DeleteDiet)
				diets.POST("/:id/submit", planHandler.Submit(domain.PlanKindDiet))
				diets.POST("/:id/draft", planHandler.BackToDraft(domain.PlanKindDiet))
				diets.POST("/:id/send", planHandler.Send(domain.PlanKindDiet))
			}

			workouts := professionalGroup.Group("/workouts")
			{
				workouts.POST("", planHandler.CreateWorkout)
				workouts.GET("", planHandler.ListWorkouts)
				workouts.GET("/:id", planHandler.GetWorkout)
				workouts.PUT("/:id", planHandler.UpdateWorkout)
				workouts.DELETE("/:id", planHandler.DeleteWorkout)
				workouts.POST("/:id/submit", planHandler.Submit(domain.PlanKindWorkout))
				workouts.POST("/:id/draft", planHandler.BackToDraft(domain.PlanKindWorkout))
				workouts.POST("/:id/send", planHandler.Send(domain.PlanKindWorkout))
			}

			professionalGroup.GET("/plan-requests", professionalHandler.ListOpenRequests)
			professionalGroup.POST("/plan-requests/:id/claim", professionalHandler.ClaimRequest)
			professionalGroup.POST("/media/upload-url", professionalHandler.CreateUploadURL)
		}

		// Admins may also manage a client's target and schedule.
		coachGroup := protected.Group("/professional/clients/:clientId")
		coachGroup.Use(RoleMiddleware(domain.RoleProfessional, domain.RoleAdmin))
		{
			coachGroup.PUT("/target", professionalHandler.SetClientTarget)
			coachGroup.PUT("/schedule", professionalHandler.PutClientSchedule)
		}

		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/diets", clientHandler.GetMyDiets)
			clientGroup.GET("/workouts", clientHandler.GetMyWorkouts)
			clientGroup.GET("/workouts/:id", planHandler.GetWorkout)

			clientGroup.POST("/plan-requests", clientHandler.CreatePlanRequest)
			clientGroup.GET("/plan-requests", clientHandler.GetMyPlanRequests)
			clientGroup.POST("/plan-requests/:id/cancel", clientHandler.CancelPlanRequest)

			clientGroup.GET("/sessions", clientHandler.GetMySessions)
			clientGroup.POST("/sessions/toggle", clientHandler.ToggleExercise)
			clientGroup.POST("/sessions/confirm-yesterday", clientHandler.ConfirmYesterday)
			clientGroup.GET("/sessions/pending-confirmation", clientHandler.PendingConfirmation)
			clientGroup.GET("/gamification", clientHandler.GetMyGamification)

			clientGroup.GET("/schedule", clientHandler.GetMySchedule)
			clientGroup.GET("/schedule/today", clientHandler.GetToday)
			clientGroup.GET("/schedule/calendar", clientHandler.GetCalendar)
		}

		aiGroup := protected.Group("/ai")
		aiGroup.Use(RoleMiddleware(domain.RoleProfessional))
		{
			aiGroup.POST("/diet-draft", aiHandler.DietDraft)
			aiGroup.POST("/workout-draft", aiHandler.WorkoutDraft)
			aiGroup.POST("/workout-divisions-draft", aiHandler.DivisionsDraft)
			aiGroup.POST("/schedule-suggestion", aiHandler.ScheduleSuggestion)
		}
	}
}
