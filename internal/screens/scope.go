package screens

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

// ResolveViewedEmployee decides whose data a screen shows. Non-admins always
// see themselves; admins see requested, or themselves when it is zero.
func ResolveViewedEmployee(user vantixapi.Employee, requested int64) int64 {
	if !user.IsAdmin || requested <= 0 {
		return user.ID
	}
	return requested
}

type PlanLister interface {
	ListPlans(ctx context.Context, token string, f vantixapi.PlanFilter) ([]vantixapi.Plan, error)
}

// PlanScope is the plan list of one employee plus the plan the screen is
// focused on.
type PlanScope struct {
	EmployeeID int64
	Plans      []vantixapi.Plan
	Selected   vantixapi.Plan
	HasPlan    bool
}

// LoadPlanScope fetches the employee's plans. requestedPlanID wins when it
// is one of them; otherwise the plan for today's week (or the latest) is
// selected.
func LoadPlanScope(ctx context.Context, api PlanLister, token string, employeeID, requestedPlanID int64, today time.Time) (PlanScope, error) {
	plans, err := api.ListPlans(ctx, token, vantixapi.PlanFilter{
		ListParams: vantixapi.ListParams{Limit: 100},
		EmployeeID: employeeID,
	})
	if err != nil {
		return PlanScope{EmployeeID: employeeID}, err
	}
	scope := PlanScope{EmployeeID: employeeID, Plans: plans}
	if requestedPlanID > 0 {
		if p, ok := views.FindPlan(plans, requestedPlanID); ok {
			scope.Selected, scope.HasPlan = p, true
			return scope, nil
		}
	}
	scope.Selected, scope.HasPlan = views.SelectPlan(plans, today)
	return scope, nil
}

// Secondary runs a fetch that depends on a primary result. Any failure other
// than an expired session is logged and yields an empty result, so the
// screen still renders with its primary data.
func Secondary[T any](ctx context.Context, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx)
	if err == nil {
		return items, nil
	}
	if errors.Is(err, vantixapi.ErrSessionExpired) {
		return nil, err
	}
	logging.FromContext(ctx).Warn("secondary fetch failed", zap.String("fetch", name), zap.Error(err))
	return nil, nil
}
