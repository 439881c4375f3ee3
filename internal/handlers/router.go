package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/clock"
	"github.com/yukikurage/household-task-api/internal/middleware"
	"github.com/yukikurage/household-task-api/internal/repository"
	"github.com/yukikurage/household-task-api/internal/services"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Store      *repository.Store
	Clock      clock.Clock
	Auth       *services.AuthService
	Households *services.HouseholdService
	Tasks      *services.TaskService
	Events     *services.EventService
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	householdHandler := NewHouseholdHandler(deps.Households, deps.Tasks, deps.Events, deps.Clock)
	taskHandler := NewTaskHandler(deps.Tasks)
	eventHandler := NewEventHandler(deps.Events, deps.Households)

	householdAccess := middleware.RequireHouseholdAccess(deps.Store)
	ownerOnly := middleware.RequireHouseholdOwner()
	taskAccess := middleware.RequireTaskAccess(deps.Store)
	eventAccess := middleware.RequireEventAccess(deps.Store)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Household Task API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(deps.Store), authHandler.GetCurrentUser)
		}

		api.GET("/plans", middleware.RequireAuth(deps.Store), householdHandler.ListPlans)

		households := api.Group("/households")
		households.Use(middleware.RequireAuth(deps.Store))
		{
			households.POST("", householdHandler.CreateHousehold)
			households.GET("", householdHandler.ListHouseholds)
			households.POST("/join", householdHandler.JoinHouseholdByInvite)
			households.GET("/:id", householdAccess, householdHandler.GetHousehold)
			households.PUT("/:id", householdAccess, ownerOnly, householdHandler.UpdateHousehold)
			households.DELETE("/:id", householdAccess, ownerOnly, householdHandler.DeleteHousehold)
			households.POST("/:id/regenerate-code", householdAccess, ownerOnly, householdHandler.RegenerateInviteCode)
			households.DELETE("/:id/members/:user_id", householdAccess, ownerOnly, householdHandler.RemoveMember)
			households.PUT("/:id/plan", householdAccess, ownerOnly, householdHandler.ChangePlan)
			households.GET("/:id/usage", householdAccess, householdHandler.GetUsage)
			households.POST("/:id/refill", householdAccess, householdHandler.RefillEvents)
			households.GET("/:id/tasks", householdAccess, householdHandler.ListTasks)
			households.GET("/:id/events", householdAccess, householdHandler.ListEvents)
			households.GET("/:id/history", householdAccess, householdHandler.ListHistory)
			households.GET("/:id/calendar.ics", householdAccess, householdHandler.ExportCalendar)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(deps.Store))
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
			tasks.POST("/:id/complete", taskAccess, taskHandler.CompleteTask)
		}

		events := api.Group("/events")
		events.Use(middleware.RequireAuth(deps.Store))
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("/:id", eventAccess, eventHandler.GetEvent)
			events.DELETE("/:id", eventAccess, eventHandler.DeleteEvent)
			events.POST("/:id/complete", eventAccess, eventHandler.CompleteEvent)
			events.POST("/:id/postpone", eventAccess, eventHandler.PostponeEvent)
			events.POST("/:id/cancel", eventAccess, eventHandler.CancelEvent)
		}
	}
}
