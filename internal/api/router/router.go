package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faenaapp/faena-backend/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "faena-api-service",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	matchingHandler := handler.NewMatchingHandler(deps)
	offerHandler := handler.NewOfferHandler(deps)
	workerHandler := handler.NewWorkerHandler(deps)
	userHandler := handler.NewUserHandler(deps)
	categoryHandler := handler.NewCategoryHandler(deps)

	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("/:job_id", jobHandler.GetJob)
			jobs.PATCH("/:job_id/status", jobHandler.UpdateJobStatus)
			jobs.POST("/:job_id/cancel", jobHandler.CancelJob)
		}

		matching := v1.Group("/matching")
		{
			matching.GET("/worker/:worker_id/jobs", matchingHandler.WorkerJobs)
			matching.GET("/job/:job_id/workers", matchingHandler.JobWorkers)
			matching.POST("/job/:job_id/apply", matchingHandler.Apply)
		}

		offers := v1.Group("/offers")
		{
			offers.GET("/my-offers", offerHandler.MyOffers)
			offers.POST("/:offer_id/accept", offerHandler.AcceptOffer)
			offers.POST("/:offer_id/reject", offerHandler.RejectOffer)
			offers.POST("/:offer_id/complete", offerHandler.CompleteOffer)
		}

		workers := v1.Group("/workers")
		{
			workers.GET("/me", workerHandler.GetProfile)
			workers.POST("/availability/toggle", workerHandler.ToggleAvailability)
		}

		users := v1.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.GET("/:user_id", userHandler.GetUser)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:category_id", categoryHandler.GetCategory)
		}

		if deps.Files != nil {
			fileHandler := handler.NewFileHandler(deps)
			v1.POST("/files", fileHandler.Upload)
		}
	}

	return r
}
