package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the handlers' dependencies.
type Services struct {
	Auth    service.AuthService
	Trainer service.TrainerService
	Client  service.ClientService
	Catalog service.CatalogService
	Video   service.VideoService
}

// RouteOptions configure the cross-cutting parts of the router. Every field
// is optional.
type RouteOptions struct {
	Metrics  *metrics.Manager
	Registry *prometheus.Registry
	// LoginLimiter rate limits logins per client IP when set.
	LoginLimiter   RequestRateLimiter
	LoginPerMinute int
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services, opts RouteOptions) {
	authHandler := NewAuthHandler(services.Auth)
	trainerHandler := NewTrainerHandler(services.Trainer)
	clientHandler := NewClientHandler(services.Client)
	catalogHandler := NewCatalogHandler(services.Catalog)
	videoHandler := NewVideoHandler(services.Video)

	router.Use(RequestLogger())
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		if opts.LoginLimiter != nil && opts.LoginPerMinute > 0 {
			authGroup.POST("/login", RateLimit(opts.LoginLimiter, "login", opts.LoginPerMinute, opts.Metrics), authHandler.Login)
		} else {
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))

	trainerOnly := RoleMiddleware(domain.RoleTrainer)
	professional := RoleMiddleware(domain.RoleTrainer, domain.RoleNutritionist)

	protected.GET("/me", authHandler.Me)
	protected.PUT("/me/password", authHandler.ChangePassword)

	// --- Catalog: any role reads, trainers write ---
	exerciseGroup := protected.Group("/exercises")
	{
		exerciseGroup.GET("", catalogHandler.ListExercises)
		exerciseGroup.GET("/:exerciseId", catalogHandler.GetExercise)
		exerciseGroup.POST("", trainerOnly, catalogHandler.CreateExercise)
		exerciseGroup.PUT("/:exerciseId", trainerOnly, catalogHandler.UpdateExercise)
		exerciseGroup.DELETE("/:exerciseId", trainerOnly, catalogHandler.DeleteExercise)
	}
	warmupGroup := protected.Group("/warmups")
	{
		warmupGroup.GET("", catalogHandler.ListWarmups)
		warmupGroup.POST("", trainerOnly, catalogHandler.CreateWarmup)
		warmupGroup.PUT("/:warmupId", trainerOnly, catalogHandler.UpdateWarmup)
		warmupGroup.DELETE("/:warmupId", trainerOnly, catalogHandler.DeleteWarmup)
	}

	// --- Logs: the owning client or the plan's trainer ---
	protected.GET("/logs/:logId", clientHandler.GetLog)
	protected.GET("/logs/:logId/video", videoHandler.VideoURL)

	// --- Trainer Specific Routes ---
	trainerApiGroup := protected.Group("/trainer")
	{
		trainerApiGroup.POST("/clients", professional, trainerHandler.CreateClient)
		trainerApiGroup.GET("/clients", professional, trainerHandler.GetManagedClients)
		trainerApiGroup.POST("/clients/:clientId/plans", professional, trainerHandler.CreateTrainingPlan)
		trainerApiGroup.GET("/clients/:clientId/logs", trainerOnly, trainerHandler.GetClientLogs)

		trainerApiGroup.GET("/dashboard", trainerOnly, trainerHandler.Dashboard)

		trainerApiGroup.GET("/plans", trainerOnly, trainerHandler.GetTrainingPlans)
		trainerApiGroup.GET("/plans/:planId", trainerOnly, trainerHandler.GetTrainingPlan)
		trainerApiGroup.PUT("/plans/:planId", trainerOnly, trainerHandler.UpdateTrainingPlan)
		trainerApiGroup.DELETE("/plans/:planId", trainerOnly, trainerHandler.DeleteTrainingPlan)
		trainerApiGroup.POST("/plans/:planId/workouts", trainerOnly, trainerHandler.CreateWorkout)

		trainerApiGroup.GET("/workouts/:workoutId", trainerOnly, trainerHandler.GetWorkout)
		trainerApiGroup.PUT("/workouts/:workoutId", trainerOnly, trainerHandler.UpdateWorkout)
		trainerApiGroup.DELETE("/workouts/:workoutId", trainerOnly, trainerHandler.DeleteWorkout)
		trainerApiGroup.POST("/workouts/:workoutId/exercises", trainerOnly, trainerHandler.AddWorkoutExercise)

		trainerApiGroup.PUT("/workout-exercises/:workoutExerciseId", trainerOnly, trainerHandler.UpdateWorkoutExercise)
		trainerApiGroup.DELETE("/workout-exercises/:workoutExerciseId", trainerOnly, trainerHandler.DeleteWorkoutExercise)
	}

	// --- Client Specific Routes ---
	clientApiGroup := protected.Group("/client")
	clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
	{
		clientApiGroup.GET("/dashboard", clientHandler.Dashboard)
		clientApiGroup.GET("/plans", clientHandler.GetMyTrainingPlans)
		clientApiGroup.GET("/plans/:planId", clientHandler.GetMyTrainingPlan)
		clientApiGroup.GET("/workouts/:workoutId", clientHandler.GetMyWorkout)
		clientApiGroup.POST("/workout-exercises/:workoutExerciseId/logs", clientHandler.LogExercise)
		clientApiGroup.GET("/workout-exercises/:workoutExerciseId/best", clientHandler.GetBestLog)
		clientApiGroup.GET("/statistics", clientHandler.Statistics)

		clientApiGroup.POST("/logs/:logId/video/upload-url", videoHandler.RequestUploadURL)
		clientApiGroup.POST("/logs/:logId/video", videoHandler.ConfirmUpload)
		clientApiGroup.POST("/logs/:logId/video/multipart", videoHandler.StartMultipart)
		clientApiGroup.POST("/uploads/:uploadId/parts", videoHandler.PresignPart)
		clientApiGroup.POST("/uploads/:uploadId/complete", videoHandler.CompleteMultipart)
		clientApiGroup.DELETE("/uploads/:uploadId", videoHandler.AbortMultipart)
	}
}
