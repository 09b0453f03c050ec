package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shear/shared"
	"shear/shared/dto"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{"empty", 0, 10, 1},
		{"exact pages", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"zero limit", 5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get", shared.BuildCacheKey("booking:get"))
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "staff:get:a:b", shared.BuildCacheKey("staff:get", "a", "b"))
}

func TestBuildCacheKeyWithQueryIsStablePerQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "confirmed", Table: "appointments"},
		},
	}

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	assert.Equal(t, first, second)

	other := shared.BuildCacheKeyWithQuery("booking:gets", dto.QueryParams{Page: 2, Limit: 10}, filter)
	assert.NotEqual(t, first, other)
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("appt-1", "id", "appointments")
	where, args := group.GetWhereClause()

	assert.Contains(t, where, "appointments.id = :id")
	assert.Equal(t, "appt-1", args["id"])
}
