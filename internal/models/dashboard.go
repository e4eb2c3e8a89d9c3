package models

import "time"

// UserDashboard is one user's configured instance of a template.
// Instances are treated as immutable values: the engine returns a new
// UserDashboard for every change instead of editing one in place.
type UserDashboard struct {
	ID                  string            `json:"id"`
	TemplateID          string            `json:"templateId"`
	DashboardProperties Values            `json:"dashboardProperties"`
	ConfigValues        map[string]Values `json:"configValues"`
	Version             int64             `json:"version"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// Property returns a dashboard-level value, undefined when absent.
func (d *UserDashboard) Property(key string) Value {
	if d == nil {
		return Value{}
	}
	return d.DashboardProperties.Get(key)
}

// WidgetValue returns a widget-level value, undefined when absent.
func (d *UserDashboard) WidgetValue(widgetID, key string) Value {
	if d == nil {
		return Value{}
	}
	return d.ConfigValues[widgetID].Get(key)
}

// Lookup resolves a value by scope, where scope is a widget id or GlobalScope.
func (d *UserDashboard) Lookup(scope, key string) Value {
	if scope == GlobalScope {
		return d.Property(key)
	}
	return d.WidgetValue(scope, key)
}
