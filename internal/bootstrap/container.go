package bootstrap

import (
	"log"

	"echolearn-client/internal/config"
	"echolearn-client/internal/credstore"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/service"
	"echolearn-client/internal/transport"
)

type Container struct {
	Logger logger.ILogger
	Store  *credstore.Store

	AuthService         service.IAuthService
	ChatService         service.IChatService
	NotificationService service.INotificationService
	AdminService        service.IAdminService
	UserService         service.IUserService
	LocationService     service.ILocationService
}

// NewContainer wires the managers once at process start; they live for the
// whole session and are passed by reference, never reached through ambient
// singletons.
func NewContainer(cfg *config.Config, nav service.Navigator) *Container {
	// 1. Core Facades
	sysLogger := logger.NewSilentLogger(cfg.App.LogFilePath)

	store, err := credstore.Open(cfg.App.StateFilePath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open state store: %v", err)
	}

	// 2. HTTP Client Core
	api := transport.New(cfg.Api.BaseURL, cfg.Api.Timeout, store, sysLogger)

	// 3. Managers
	notificationService := service.NewNotificationService(store, sysLogger)
	authService := service.NewAuthService(store, api, notificationService, nav, sysLogger)
	chatService := service.NewChatService(api, store, authService, notificationService, nav, sysLogger)
	adminService := service.NewAdminService(api, notificationService, sysLogger)
	userService := service.NewUserService(api, store, authService, notificationService, sysLogger)
	locationService := service.NewLocationService(cfg.Keys.GeocoderBaseURL)

	// The refresh interceptor tears stored credentials down itself; the auth
	// service only has to reset in-memory state and route to /auth.
	api.SetSessionExpiredHandler(authService.HandleSessionExpired)

	return &Container{
		Logger:              sysLogger,
		Store:               store,
		AuthService:         authService,
		ChatService:         chatService,
		NotificationService: notificationService,
		AdminService:        adminService,
		UserService:         userService,
		LocationService:     locationService,
	}
}
