package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"shear/infras/otel"
	"shear/internal/domains/auditlog/model"
	"shear/internal/domains/auditlog/service"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	"shear/transport/http/middleware"
	"shear/transport/http/response"
)

type Handler struct {
	service service.AuditLog
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.AuditLog, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/audit-logs", func(routerGroup chi.Router) {
		routerGroup.Use(handler.auth.Auth)
		routerGroup.Use(handler.auth.RequireRole(constant.RoleAdmin))
		routerGroup.Get("/", handler.GetAuditLogs)
	})
}

// GetAuditLogs lists recorded booking mutations.
// @Summary Get audit logs
// @Description Retrieve the audit trail of booking mutations with optional filtering and pagination.
// @Tags AuditLog
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param action query string false "Filter by action"
// @Param entity_id query string false "Filter by entity ID"
// @Success 200 {object} response.Data[dto.GetAuditLogsResponse] "List of audit entries"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/audit-logs [get]
// @Security BearerAuth
func (handler *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuditLogs")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldAction, model.FieldEntityID} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	logs, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get audit logs")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Audit logs retrieved successfully")

	response.WithJSON(w, http.StatusOK, logs)
}
