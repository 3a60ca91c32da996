package app

import (
	"onlinecourse_backend/docs"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

// registerLearnerRoutes 任何已认证用户可访问，报名相关接口在控制器中按报名归属校验
func (a *App) registerLearnerRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/courses", c.catalog.ListCourses)
	r.GET("/courses/:id", c.catalog.GetCourse)
	r.GET("/courses/:id/lessons", c.catalog.ListLessons)
	r.GET("/lessons/:id", c.catalog.GetLesson)
	r.GET("/lessons/:id/questions", c.catalog.ListQuestions)
	r.GET("/questions/:id/choices", c.catalog.ListChoices)

	r.POST("/learners", c.people.CreateLearner)
	r.GET("/learners/:id", c.people.GetLearner)
	r.GET("/instructors/:id", c.people.GetInstructor)

	r.POST("/enrollments", c.enrollment.Enroll)
	r.GET("/enrollments/:id", c.enrollment.GetEnrollment)
	r.DELETE("/enrollments/:id", c.enrollment.Unenroll)
	r.GET("/enrollments/:id/rating", c.stats.GetEnrollmentRating)

	r.POST("/enrollments/:id/submissions", c.submission.Grade)
	r.GET("/enrollments/:id/submissions", c.submission.ListSubmissions)
	r.GET("/submissions/:id", c.submission.GetSubmission)
}

func (a *App) registerInstructorRoutes(r *gin.RouterGroup, c *controllers) {
	instructor := r.Group("")
	instructor.Use(middleware.RoleMiddleware(util.RoleInstructor))
	{
		instructor.POST("/courses", c.catalog.CreateCourse)
		instructor.PUT("/courses/:id", c.catalog.UpdateCourse)
		instructor.GET("/courses/:id/enrollments", c.enrollment.ListEnrollments)
		instructor.GET("/courses/:id/stats", c.stats.GetCourseStats)

		instructor.POST("/courses/:id/lessons", c.catalog.CreateLesson)
		instructor.PUT("/lessons/:id", c.catalog.UpdateLesson)
		instructor.POST("/lessons/:id/publish", c.catalog.PublishLesson)
		instructor.POST("/lessons/:id/questions", c.catalog.CreateQuestion)
		instructor.PUT("/questions/:id", c.catalog.UpdateQuestion)
		instructor.POST("/questions/:id/choices", c.catalog.CreateChoice)
		instructor.PUT("/choices/:id", c.catalog.UpdateChoice)

		instructor.DELETE("/submissions/:id", c.submission.ResetSubmission)
	}
}

func (a *App) registerAdminRoutes(r *gin.RouterGroup, c *controllers) {
	admin := r.Group("")
	admin.Use(middleware.RoleMiddleware(util.RoleAdmin))
	{
		admin.POST("/instructors", c.people.CreateInstructor)
		admin.POST("/courses/:id/instructors/:instructorId", c.catalog.AssignInstructor)
	}
}
