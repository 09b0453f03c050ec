package router

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "shear/docs"
	"shear/internal/handlers/auditlog"
	"shear/internal/handlers/booking"
	"shear/internal/handlers/catalog"
	"shear/internal/handlers/customer"
	"shear/internal/handlers/staff"
)

type DomainHandlers struct {
	Booking  booking.Handler
	Catalog  catalog.Handler
	Staff    staff.Handler
	Customer customer.Handler
	AuditLog auditlog.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Catalog.Router(routerGroup)
		r.DomainHandlers.Staff.Router(routerGroup)
		r.DomainHandlers.Customer.Router(routerGroup)
		r.DomainHandlers.AuditLog.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
