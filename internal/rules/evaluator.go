// Package rules decides which configuration controls are visible for a
// dashboard instance.
//
// Every function here is total: malformed or missing data never panics and
// never hides a control by accident. No rule, an unknown operator or a nil
// template all mean "show".
package rules

import (
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// FindRule returns the first rule whose target is (widgetID, key).
func FindRule(t *models.DashboardTemplate, widgetID, key string) (models.ConditionalRule, bool) {
	if t == nil {
		return models.ConditionalRule{}, false
	}
	for _, r := range t.ConditionalRules {
		if r.TargetWidget == widgetID && r.ConfigKey == key {
			return r, true
		}
	}
	return models.ConditionalRule{}, false
}

// ShouldShow reports whether the control for key on widgetID should be
// rendered. Dashboard-level properties use models.GlobalScope as widgetID.
func ShouldShow(t *models.DashboardTemplate, d *models.UserDashboard, widgetID, key string) bool {
	rule, ok := FindRule(t, widgetID, key)
	if !ok {
		return true
	}
	return Holds(d, rule.DependsOn)
}

// Holds evaluates a single dependency against the instance. A missing
// source value is undefined and takes part in the comparison as such.
// Unknown operators hold.
func Holds(d *models.UserDashboard, dep models.Dependency) bool {
	src := d.Lookup(dep.Widget, dep.Key)
	switch dep.Operator {
	case models.OpEquals:
		return src.Equal(dep.Value)
	case models.OpNotEquals:
		return !src.Equal(dep.Value)
	case models.OpGreaterThan:
		a, b, ok := numbers(src, dep.Value)
		return ok && a > b
	case models.OpLessThan:
		a, b, ok := numbers(src, dep.Value)
		return ok && a < b
	default:
		return true
	}
}

func numbers(a, b models.Value) (float64, float64, bool) {
	x, okA := a.AsNumber()
	y, okB := b.AsNumber()
	return x, y, okA && okB
}

// VisibleOptions returns the options of scope (a widget id or
// models.GlobalScope) whose controls should be shown, in declaration order.
func VisibleOptions(t *models.DashboardTemplate, d *models.UserDashboard, scope string) []models.ConfigOption {
	var opts []models.ConfigOption
	if scope == models.GlobalScope {
		if t != nil {
			opts = t.Properties
		}
	} else if w, ok := t.Widget(scope); ok {
		opts = w.ConfigOptions
	}

	visible := make([]models.ConfigOption, 0, len(opts))
	for _, o := range opts {
		if ShouldShow(t, d, scope, o.Key) {
			visible = append(visible, o)
		}
	}
	return visible
}
