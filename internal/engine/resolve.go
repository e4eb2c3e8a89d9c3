package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// NewDashboard seeds an instance from every option's default value.
func (e *Engine) NewDashboard(id string) *models.UserDashboard {
	t := e.template
	d := &models.UserDashboard{
		ID:                  id,
		TemplateID:          t.ID,
		DashboardProperties: models.Values{},
		ConfigValues:        make(map[string]models.Values, len(t.Widgets)),
	}
	for _, o := range t.Properties {
		if o.DefaultValue.IsDefined() {
			d.DashboardProperties[o.Key] = o.DefaultValue
		}
	}
	for _, w := range t.Widgets {
		vals := models.Values{}
		for _, o := range w.ConfigOptions {
			if o.DefaultValue.IsDefined() {
				vals[o.Key] = o.DefaultValue
			}
		}
		d.ConfigValues[w.ID] = vals
	}
	return d
}

// Resolve returns the value a renderer should display for key on widgetID.
// An active sync group wins, then the widget's own value, then the
// option's default.
func (e *Engine) Resolve(d *models.UserDashboard, widgetID, key string) models.Value {
	if g, ok := e.ActiveGroup(d, key); ok {
		if v := e.ResolveGlobal(d, g.GlobalKey); v.IsDefined() {
			return v
		}
	}
	if v := d.WidgetValue(widgetID, key); v.IsDefined() {
		return v
	}
	opt, _ := e.template.Option(widgetID, key)
	return opt.DefaultValue
}

// ResolveGlobal returns a dashboard-level value, falling back to the default.
func (e *Engine) ResolveGlobal(d *models.UserDashboard, key string) models.Value {
	if v := d.Property(key); v.IsDefined() {
		return v
	}
	opt, _ := e.template.Option(models.GlobalScope, key)
	return opt.DefaultValue
}

// Validate checks that d belongs to the engine's template: the template id
// matches, every stored key is declared for its scope, and every value is
// acceptable to its option.
func (e *Engine) Validate(d *models.UserDashboard) error {
	if d == nil {
		return errs.NewValidationError("dashboard is required")
	}
	t := e.template
	var problems []string
	if d.TemplateID != t.ID {
		problems = append(problems, fmt.Sprintf("templateId %q does not match template %q", d.TemplateID, t.ID))
	}
	problems = append(problems, checkScope(t, models.GlobalScope, "dashboardProperties", d.DashboardProperties)...)

	ids := make([]string, 0, len(d.ConfigValues))
	for id := range d.ConfigValues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := t.Widget(id); !ok {
			problems = append(problems, fmt.Sprintf("configValues.%s: widget is not declared by the template", id))
			continue
		}
		problems = append(problems, checkScope(t, id, "configValues."+id, d.ConfigValues[id])...)
	}

	if len(problems) > 0 {
		return errs.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

func checkScope(t *models.DashboardTemplate, scope, path string, vals models.Values) []string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, k := range keys {
		opt, ok := t.Option(scope, k)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s.%s: key is not declared", path, k))
			continue
		}
		if err := opt.Accepts(vals[k]); err != nil {
			problems = append(problems, fmt.Sprintf("%s.%s: %v", path, k, err))
		}
	}
	return problems
}
