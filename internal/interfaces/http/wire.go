package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	accessservices "instra/internal/application/access/services"
	accessusecases "instra/internal/application/access/usecases"
	identityusecases "instra/internal/application/identity/usecases"
	onboardingservices "instra/internal/application/onboarding/services"
	onboardingusecases "instra/internal/application/onboarding/usecases"
	profileconfigusecases "instra/internal/application/profileconfig/usecases"
	"instra/internal/application/provisioning"
	infraaudit "instra/internal/infrastructure/audit"
	"instra/internal/infrastructure/auth"
	"instra/internal/infrastructure/cache"
	appConfig "instra/internal/infrastructure/config"
	"instra/internal/infrastructure/email"
	infraprofile "instra/internal/infrastructure/profile"
	"instra/internal/infrastructure/repository"
	"instra/internal/interfaces/http/handlers"
	"instra/internal/interfaces/http/middleware"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
	"instra/internal/shared/logger"
)

// NewRouter wires the full dependency graph: repositories over the shared
// gorm handle, the redis-backed permission cache, application services and
// use cases, and finally the handlers.
func NewRouter(cfg *appConfig.Config, database *gorm.DB, redisClient *redis.Client, log logger.Interface) *Router {
	if cfg.Server.Mode == constants.EnvProduction || cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Infrastructure.
	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	permRepo := repository.NewPermissionRepository(database)
	userRoleRepo := repository.NewUserRoleRepository(database)
	overrideRepo := repository.NewOverrideRepository(database)
	requestRepo := repository.NewOnboardRequestRepository(database)
	configRepo := repository.NewProfileConfigRepository(database)
	fieldRepo := repository.NewFieldDefinitionRepository(database)

	txManager := db.NewTransactionManager(database)
	recorder := infraaudit.NewGormRecorder(database)

	permCache := cache.NewRedisPermissionCache(redisClient, time.Duration(cfg.Access.CacheTTLHours)*time.Hour)
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	registrationTokens := auth.NewRegistrationTokenService(
		cfg.Auth.RegistrationToken.Secret,
		time.Duration(cfg.Auth.RegistrationToken.MaxAgeHours)*time.Hour,
	)
	emailService := email.NewSMTPEmailService(&cfg.Email)
	profileStrategies := infraprofile.NewResolver(database)

	// Access context.
	resolver := accessservices.NewPermissionResolver(userRepo, permRepo, userRoleRepo, overrideRepo, permCache, log)
	invalidator := accessservices.NewCacheInvalidator(permCache, log)

	// Onboarding context.
	schemaService := onboardingservices.NewSchemaService(configRepo, fieldRepo, log)
	mergeService := onboardingservices.NewMergeService(schemaService)
	provisioner := provisioning.NewService(userRepo, roleRepo, userRoleRepo, configRepo, profileStrategies, hasher, recorder, log)

	authHandler := handlers.NewAuthHandler(
		identityusecases.NewLoginUseCase(userRepo, hasher, jwtService, recorder, log),
		identityusecases.NewChangePasswordUseCase(userRepo, hasher, log),
		accessusecases.NewResolvePermissionsUseCase(userRepo, resolver, log),
		log,
	)

	roleHandler := handlers.NewRoleHandler(
		accessusecases.NewCreateRoleUseCase(roleRepo, recorder, log),
		accessusecases.NewUpdateRoleUseCase(roleRepo, recorder, log),
		accessusecases.NewListRolesUseCase(roleRepo, log),
		accessusecases.NewDeactivateRoleUseCase(roleRepo, userRoleRepo, txManager, invalidator, recorder, cfg.Access.FallbackRoleCode, log),
		accessusecases.NewSetRolePermissionsUseCase(roleRepo, permRepo, txManager, invalidator, recorder, log),
		accessusecases.NewListRolePermissionsUseCase(roleRepo, permRepo, log),
		log,
	)

	permissionHandler := handlers.NewPermissionHandler(
		accessusecases.NewCreatePermissionUseCase(permRepo, invalidator, recorder, log),
		accessusecases.NewUpdatePermissionUseCase(permRepo, recorder, log),
		accessusecases.NewDeletePermissionUseCase(permRepo, invalidator, recorder, log),
		accessusecases.NewListPermissionsUseCase(permRepo, log),
		log,
	)

	userAccessHandler := handlers.NewUserAccessHandler(
		accessusecases.NewAssignUserRoleUseCase(userRepo, roleRepo, userRoleRepo, recorder, log),
		accessusecases.NewRemoveUserRoleUseCase(userRepo, roleRepo, userRoleRepo, recorder, log),
		accessusecases.NewListUserRolesUseCase(userRepo, userRoleRepo, log),
		accessusecases.NewSetOverrideUseCase(userRepo, permRepo, overrideRepo, invalidator, recorder, log),
		accessusecases.NewRemoveOverrideUseCase(overrideRepo, invalidator, recorder, log),
		accessusecases.NewListOverridesUseCase(overrideRepo, log),
		log,
	)

	onboardingHandler := handlers.NewOnboardingHandler(
		onboardingusecases.NewCreateRequestUseCase(requestRepo, roleRepo, userRepo, registrationTokens, emailService, txManager, recorder, cfg.Onboarding.InviteExpiryHours, log),
		onboardingusecases.NewListRequestsUseCase(requestRepo, log),
		onboardingusecases.NewGetRequestUseCase(requestRepo, log),
		onboardingusecases.NewPatchAdminPayloadUseCase(requestRepo, recorder, log),
		onboardingusecases.NewApproveRequestUseCase(requestRepo, mergeService, provisioner, emailService, txManager, recorder, log),
		onboardingusecases.NewActionRequestUseCase(requestRepo, registrationTokens, emailService, recorder, cfg.Onboarding.InviteExpiryHours, log),
		log,
	)

	profileConfigHandler := handlers.NewProfileConfigHandler(
		profileconfigusecases.NewListConfigsUseCase(configRepo, log),
		profileconfigusecases.NewGetConfigUseCase(configRepo, fieldRepo, log),
		profileconfigusecases.NewCreateConfigUseCase(configRepo, roleRepo, recorder, log),
		profileconfigusecases.NewUpdateConfigUseCase(configRepo, recorder, log),
		profileconfigusecases.NewCreateFieldUseCase(configRepo, fieldRepo, recorder, log),
		profileconfigusecases.NewUpdateFieldUseCase(fieldRepo, recorder, log),
		profileconfigusecases.NewDeleteFieldUseCase(fieldRepo, recorder, log),
		log,
	)

	registrationHandler := handlers.NewRegistrationHandler(
		onboardingusecases.NewGetRegistrationSchemaUseCase(requestRepo, registrationTokens, schemaService, log),
		onboardingusecases.NewSubmitRegistrationUseCase(requestRepo, registrationTokens, mergeService, recorder, log),
		log,
	)

	return &Router{
		engine:               gin.New(),
		logger:               log,
		authMiddleware:       middleware.NewAuthMiddleware(jwtService, log),
		permissionMiddleware: middleware.NewPermissionMiddleware(resolver, log),
		authHandler:          authHandler,
		roleHandler:          roleHandler,
		permissionHandler:    permissionHandler,
		userAccessHandler:    userAccessHandler,
		onboardingHandler:    onboardingHandler,
		registrationHandler:  registrationHandler,
		profileConfigHandler: profileConfigHandler,
	}
}
