//go:build wireinject
// +build wireinject

package di

import (
	"shear/config"
	"shear/infras/jwt"
	"shear/infras/kafka"
	"shear/infras/otel"
	"shear/infras/postgres"
	"shear/infras/redis"
	"shear/shared/cache"
	"shear/transport/http"
	"shear/transport/http/middleware"
	"shear/transport/http/router"

	auditlogRepository "shear/internal/domains/auditlog/repository"
	auditlogService "shear/internal/domains/auditlog/service"
	bookingRepository "shear/internal/domains/booking/repository"
	bookingService "shear/internal/domains/booking/service"
	catalogRepository "shear/internal/domains/catalog/repository"
	catalogService "shear/internal/domains/catalog/service"
	customerRepository "shear/internal/domains/customer/repository"
	customerService "shear/internal/domains/customer/service"
	staffRepository "shear/internal/domains/staff/repository"
	staffService "shear/internal/domains/staff/service"

	auditlogHandler "shear/internal/handlers/auditlog"
	bookingHandler "shear/internal/handlers/booking"
	catalogHandler "shear/internal/handlers/catalog"
	customerHandler "shear/internal/handlers/customer"
	staffHandler "shear/internal/handlers/staff"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var catalogDomain = wire.NewSet(
	catalogRepository.New,
	catalogService.New,
)

var staffDomain = wire.NewSet(
	staffRepository.New,
	staffService.New,
)

var customerDomain = wire.NewSet(
	customerRepository.New,
	customerService.New,
)

var auditlogDomain = wire.NewSet(
	auditlogRepository.New,
	auditlogService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	catalogDomain,
	staffDomain,
	customerDomain,
	auditlogDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	catalogHandler.New,
	staffHandler.New,
	customerHandler.New,
	auditlogHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
