package http

import (
	"github.com/gin-gonic/gin"

	appConfig "instra/internal/infrastructure/config"
	"instra/internal/interfaces/http/handlers"
	"instra/internal/interfaces/http/middleware"
	"instra/internal/shared/logger"
)

// Router owns the gin engine and the handler set. Route guards reference
// permission codes from the seeded catalog; the resolver enforces them per
// caller and active role.
type Router struct {
	engine *gin.Engine
	logger logger.Interface

	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware

	authHandler          *handlers.AuthHandler
	roleHandler          *handlers.RoleHandler
	permissionHandler    *handlers.PermissionHandler
	userAccessHandler    *handlers.UserAccessHandler
	onboardingHandler    *handlers.OnboardingHandler
	registrationHandler  *handlers.RegistrationHandler
	profileConfigHandler *handlers.ProfileConfigHandler
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) SetupRoutes(cfg *appConfig.Config) {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.CORS([]string{cfg.Email.FrontendBaseURL}))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.setupAuthRoutes()
	r.setupAccessRoutes()
	r.setupOnboardingRoutes()
	r.setupProfileConfigRoutes()
}

func (r *Router) setupAuthRoutes() {
	auth := r.engine.Group("/auth")
	{
		auth.POST("/login", r.authHandler.Login)

		authProtected := auth.Group("")
		authProtected.Use(r.authMiddleware.RequireAuth())
		{
			authProtected.POST("/change-password", r.authHandler.ChangePassword)
			authProtected.GET("/permissions", r.authHandler.GetPermissions)
		}
	}
}

func (r *Router) setupAccessRoutes() {
	roles := r.engine.Group("/access/roles")
	roles.Use(r.authMiddleware.RequireAuth())
	{
		roles.GET("", r.roleHandler.ListRoles)
		roles.POST("", r.permissionMiddleware.RequirePermission("ACCESS_ROLE_MANAGE"), r.roleHandler.CreateRole)
		roles.PATCH("/:id", r.permissionMiddleware.RequirePermission("ACCESS_ROLE_MANAGE"), r.roleHandler.UpdateRole)
		roles.POST("/code/:code/deactivate", r.permissionMiddleware.RequirePermission("ACCESS_ROLE_MANAGE"), r.roleHandler.DeactivateRole)
		roles.GET("/:id/permissions", r.roleHandler.ListRolePermissions)
		roles.PUT("/:id/permissions", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_ASSIGN"), r.roleHandler.SetRolePermissions)
	}

	permissions := r.engine.Group("/access/permissions")
	permissions.Use(r.authMiddleware.RequireAuth())
	{
		permissions.GET("", r.permissionHandler.ListPermissions)
		permissions.POST("", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_MANAGE"), r.permissionHandler.CreatePermission)
		permissions.PATCH("/:id", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_MANAGE"), r.permissionHandler.UpdatePermission)
		permissions.DELETE("/:id", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_MANAGE"), r.permissionHandler.DeletePermission)
	}

	users := r.engine.Group("/access/users/:user_id")
	users.Use(r.authMiddleware.RequireAuth())
	{
		users.GET("/roles", r.userAccessHandler.ListRoles)
		users.DELETE("/roles/:role_id", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_ASSIGN"), r.userAccessHandler.RemoveRole)
		users.GET("/overrides", r.userAccessHandler.ListOverrides)
		users.DELETE("/overrides/:permission_id", r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_ASSIGN"), r.userAccessHandler.RemoveOverride)
	}

	assignments := r.engine.Group("/access")
	assignments.Use(r.authMiddleware.RequireAuth(), r.permissionMiddleware.RequirePermission("ACCESS_PERMISSION_ASSIGN"))
	{
		assignments.POST("/user-roles", r.userAccessHandler.AssignRole)
		assignments.POST("/overrides", r.userAccessHandler.SetOverride)
	}
}

func (r *Router) setupOnboardingRoutes() {
	// Public, token-gated endpoints for invitees. The signed token in the
	// link is the whole credential.
	public := r.engine.Group("/public/onboarding")
	{
		public.GET("/schema", r.registrationHandler.GetSchema)
		public.POST("/submit", r.registrationHandler.Submit)
	}

	// Admin review queue.
	requests := r.engine.Group("/onboarding/requests")
	requests.Use(r.authMiddleware.RequireAuth(), r.permissionMiddleware.RequirePermission("USER_ONBOARD"))
	{
		requests.POST("", r.onboardingHandler.CreateRequest)
		requests.GET("", r.onboardingHandler.ListRequests)
		requests.GET("/:rid", r.onboardingHandler.GetRequest)
		requests.PATCH("/:rid/payload", r.onboardingHandler.PatchAdminPayload)
		requests.POST("/:rid/approve", r.onboardingHandler.ApproveRequest)
		requests.POST("/:rid/action", r.onboardingHandler.ActionRequest)
	}
}

func (r *Router) setupProfileConfigRoutes() {
	configs := r.engine.Group("/profile-configs")
	configs.Use(r.authMiddleware.RequireAuth())
	{
		configs.GET("", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_VIEW"), r.profileConfigHandler.ListConfigs)
		configs.GET("/:role_code", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_VIEW"), r.profileConfigHandler.GetConfig)
		configs.POST("", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_MANAGE"), r.profileConfigHandler.CreateConfig)
		configs.PATCH("/:role_code", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_MANAGE"), r.profileConfigHandler.UpdateConfig)
		configs.POST("/:role_code/fields", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_MANAGE"), r.profileConfigHandler.CreateField)
		configs.PATCH("/fields/:field_id", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_MANAGE"), r.profileConfigHandler.UpdateField)
		configs.DELETE("/fields/:field_id", r.permissionMiddleware.RequirePermission("PROFILE_CONFIG_MANAGE"), r.profileConfigHandler.DeleteField)
	}
}
