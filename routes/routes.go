package routes

import (
	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/frolic-api/controllers"
	middleware "github.com/phillip/frolic-api/middleware"
	models "github.com/phillip/frolic-api/models"
)

func SetupRoutes(r *gin.Engine, deps *controllers.Deps) {
	root := r.Group("/api")

	// always answer, even while starting
	root.GET("/ping", controllers.Ping(deps))
	root.GET("/health", controllers.Health(deps))

	api := root.Group("")
	api.Use(middleware.RequireReady(deps.Phase))

	// public
	api.POST("/auth/register", controllers.Register(deps))
	api.POST("/auth/login", controllers.Login(deps))
	api.GET("/events", controllers.ListEvents(deps))
	api.GET("/events/:id", controllers.GetEvent(deps))
	api.GET("/galleries", controllers.ListGalleries(deps))
	api.GET("/galleries/:id", controllers.GetGallery(deps))
	api.GET("/institutes", controllers.ListInstitutes(deps))
	api.GET("/institutes/:id/departments", controllers.InstituteDepartments(deps))

	// protected
	auth := middleware.AuthMiddleware(deps.Auth)

	me := api.Group("/auth")
	me.Use(auth)
	{
		me.GET("/profile", controllers.GetProfile(deps))
		me.PUT("/profile", controllers.UpdateProfile(deps))
		me.GET("/registrations", controllers.MyRegistrations(deps))
	}

	events := api.Group("/events")
	events.Use(auth)
	{
		events.POST("/:id/register", controllers.RegisterForEvent(deps))
		events.GET("/:id/registration-status", controllers.RegistrationStatus(deps))
	}

	regs := api.Group("/registrations")
	regs.Use(auth)
	{
		regs.GET("/:id", controllers.GetRegistration(deps))
		regs.POST("/:id/checkout", controllers.Checkout(deps))
		regs.POST("/:id/confirm-payment", controllers.ConfirmPayment(deps))
	}

	// coordinators share this one admin route; scope is checked per event
	scoped := api.Group("/admin")
	scoped.Use(auth, middleware.RequireRoles(
		models.RoleAdmin,
		models.RoleEventCoordinator,
		models.RoleDepartmentCoordinator,
		models.RoleInstituteCoordinator,
	))
	scoped.GET("/events/:id/registrations", controllers.EventRegistrations(deps))

	admin := api.Group("/admin")
	admin.Use(auth, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", controllers.DashboardStats(deps))

		admin.POST("/institutes", controllers.CreateInstitute(deps))
		admin.GET("/institutes", controllers.ListInstitutes(deps))
		admin.GET("/institutes/:id", controllers.GetInstitute(deps))
		admin.PUT("/institutes/:id", controllers.UpdateInstitute(deps))
		admin.DELETE("/institutes/:id", controllers.DeleteInstitute(deps))

		admin.POST("/departments", controllers.CreateDepartment(deps))
		admin.GET("/departments", controllers.ListDepartments(deps))
		admin.GET("/departments/:id", controllers.GetDepartment(deps))
		admin.PUT("/departments/:id", controllers.UpdateDepartment(deps))
		admin.DELETE("/departments/:id", controllers.DeleteDepartment(deps))

		admin.POST("/events", controllers.CreateEvent(deps))
		admin.GET("/events", controllers.AdminListEvents(deps))
		admin.GET("/events/:id", controllers.AdminGetEvent(deps))
		admin.PUT("/events/:id", controllers.UpdateEvent(deps))
		admin.PATCH("/events/:id/publish", controllers.PublishEvent(deps))
		admin.DELETE("/events/:id", controllers.DeleteEvent(deps))

		admin.POST("/coordinators", controllers.CreateCoordinator(deps))
		admin.GET("/coordinators", controllers.ListCoordinators(deps))

		admin.GET("/users", controllers.ListUsers(deps))
		admin.DELETE("/users/:id", controllers.DeactivateUser(deps))

		admin.POST("/galleries", controllers.CreateGallery(deps))
		admin.GET("/galleries", controllers.ListGalleries(deps))
		admin.GET("/galleries/:id", controllers.GetGallery(deps))
		admin.PUT("/galleries/:id", controllers.UpdateGallery(deps))
		admin.DELETE("/galleries/:id", controllers.DeleteGallery(deps))
	}
}
