// Package engine is the only place a UserDashboard changes.
//
// Updates are pure: they take an instance and return a new one, copying the
// branches they touch and sharing everything else. The input is never
// modified, so callers can rely on pointer identity to detect change.
package engine

import (
	"fmt"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// Engine applies configuration updates for instances of one template.
type Engine struct {
	template *models.DashboardTemplate
	groups   []models.SyncGroup
}

// New binds an engine to t. The template's sync groups are enforced, then
// any extra groups in order.
func New(t *models.DashboardTemplate, extra ...models.SyncGroup) *Engine {
	if t == nil {
		t = &models.DashboardTemplate{}
	}
	e := &Engine{template: t}
	e.groups = append(e.groups, t.SyncGroups...)
	e.groups = append(e.groups, extra...)
	return e
}

func (e *Engine) Template() *models.DashboardTemplate { return e.template }

// UpdateDashboardConfig sets a dashboard-level property. It never cascades:
// flipping a sync flag only changes how later widget writes are routed.
func (e *Engine) UpdateDashboardConfig(d *models.UserDashboard, key string, v models.Value) (*models.UserDashboard, error) {
	if err := e.check(models.GlobalScope, key, v); err != nil {
		return d, err
	}
	next := copyOf(d)
	next.DashboardProperties = next.DashboardProperties.Clone()
	next.DashboardProperties[key] = v
	return next, nil
}

// UpdateWidgetConfig sets key on widgetID. When an active sync group owns
// key, the write goes to the group's global key and to key on every widget
// declaring it, the triggering widget included.
func (e *Engine) UpdateWidgetConfig(d *models.UserDashboard, widgetID, key string, v models.Value) (*models.UserDashboard, error) {
	if err := e.check(widgetID, key, v); err != nil {
		return d, err
	}

	g, synced := e.ActiveGroup(d, key)
	if !synced {
		next := copyOf(d)
		next.ConfigValues = copyConfig(next.ConfigValues)
		setWidget(next, widgetID, key, v)
		return next, nil
	}

	// Every target must accept v before anything is written.
	if err := e.check(models.GlobalScope, g.GlobalKey, v); err != nil {
		return d, err
	}
	targets := e.SyncTargets(widgetID, key)
	for _, id := range targets {
		if err := e.check(id, key, v); err != nil {
			return d, errs.NewValidationError(fmt.Sprintf("%s group: widget %s: %s", g.Name, id, err.Error()))
		}
	}

	next := copyOf(d)
	next.ConfigValues = copyConfig(next.ConfigValues)
	next.DashboardProperties = next.DashboardProperties.Clone()
	next.DashboardProperties[g.GlobalKey] = v
	for _, id := range targets {
		setWidget(next, id, key, v)
	}
	return next, nil
}

// check validates v against the declared option, if any. Undeclared keys
// are written as-is.
func (e *Engine) check(scope, key string, v models.Value) error {
	opt, ok := e.template.Option(scope, key)
	if !ok {
		return nil
	}
	if err := opt.Accepts(v); err != nil {
		return errs.NewValidationError(err.Error())
	}
	return nil
}

// SyncTargets lists the widgets a synced write of key from widgetID reaches.
func (e *Engine) SyncTargets(widgetID, key string) []string {
	ids := e.template.WidgetsDeclaring(key)
	for _, id := range ids {
		if id == widgetID {
			return ids
		}
	}
	return append(ids, widgetID)
}

// copyOf returns a shallow copy of d; a nil d becomes an empty instance.
func copyOf(d *models.UserDashboard) *models.UserDashboard {
	if d == nil {
		return &models.UserDashboard{}
	}
	next := *d
	return &next
}

func copyConfig(cv map[string]models.Values) map[string]models.Values {
	out := make(map[string]models.Values, len(cv)+1)
	for id, vals := range cv {
		out[id] = vals
	}
	return out
}

// setWidget replaces the widget's value map with an updated copy. The old
// map may still be shared with the previous instance.
func setWidget(d *models.UserDashboard, widgetID, key string, v models.Value) {
	vals := d.ConfigValues[widgetID].Clone()
	vals[key] = v
	d.ConfigValues[widgetID] = vals
}
