//go:build wireinject
// +build wireinject

package injector

import (
	"travelapproval/internal/config"
	"travelapproval/internal/handler"
	"travelapproval/internal/middleware"
	"travelapproval/internal/repository"
	"travelapproval/internal/router"
	"travelapproval/internal/seed"
	"travelapproval/internal/service"
	"travelapproval/internal/validation"
	"travelapproval/internal/websocket"

	"github.com/google/wire"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	provideDB,
	provideTokenConfig,
	provideLoginLimiter,
	validation.NewValidator,
	websocket.NewHub,
	wire.Bind(new(service.NotificationPusher), new(*websocket.Hub)),
	middleware.NewAuth,
)

// Repository providers
var repositorySet = wire.NewSet(
	repository.NewTransactionManager,
	repository.NewUserRepository,
	repository.NewProjectRepository,
	repository.NewTAccountRepository,
	repository.NewTravelRequestRepository,
	repository.NewAuditRepository,
	repository.NewNotificationRepository,
)

// Service providers
var serviceSet = wire.NewSet(
	service.NewApproverResolver,
	service.NewAuditService,
	service.NewNotificationService,
	service.NewTravelRequestService,
	service.NewProjectService,
	service.NewTAccountService,
	service.NewReportService,
	service.NewUserService,
	seed.NewSeeder,
)

// Handler providers
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewTravelRequestHandler,
	handler.NewApprovalHandler,
	handler.NewNotificationHandler,
	handler.NewAuditHandler,
	handler.NewProjectHandler,
	handler.NewTAccountHandler,
	handler.NewReportHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

func InitializeApplication(cfg *config.Config) (*Application, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		serviceSet,
		handlerSet,
		newApplication,
	)
	return nil, nil
}
