package templates

import (
	"fmt"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// Validate reports every well-formedness problem in t as one
// *errs.TemplateError. The engine and evaluator tolerate malformed
// templates, so this is the place they get rejected.
func Validate(t *models.DashboardTemplate) error {
	if t == nil {
		return errs.NewValidationError("template is required")
	}
	v := &validator{t: t}
	if t.ID == "" {
		v.add("id", "is required")
	}
	v.options("properties", t.Properties)

	widgetIDs := make(map[string]int, len(t.Widgets))
	for i, w := range t.Widgets {
		path := fmt.Sprintf("widgets[%d]", i)
		switch {
		case w.ID == "":
			v.add(path+".id", "is required")
		case w.ID == models.GlobalScope:
			v.add(path+".id", fmt.Sprintf("%q is reserved", models.GlobalScope))
		default:
			if prev, dup := widgetIDs[w.ID]; dup {
				v.add(path+".id", fmt.Sprintf("duplicate widget id %q (also widgets[%d])", w.ID, prev))
			} else {
				widgetIDs[w.ID] = i
			}
		}
		v.options(path+".configOptions", w.ConfigOptions)
	}

	type target struct{ widget, key string }
	ruleTargets := make(map[target]int, len(t.ConditionalRules))
	for i, r := range t.ConditionalRules {
		path := fmt.Sprintf("conditionalRules[%d]", i)
		if !v.declared(r.TargetWidget, r.ConfigKey) {
			v.add(path, fmt.Sprintf("target %s.%s is not declared", r.TargetWidget, r.ConfigKey))
		}
		tg := target{r.TargetWidget, r.ConfigKey}
		if prev, dup := ruleTargets[tg]; dup {
			v.add(path, fmt.Sprintf("duplicate rule for %s.%s (also conditionalRules[%d])", r.TargetWidget, r.ConfigKey, prev))
		} else {
			ruleTargets[tg] = i
		}
		v.dependency(path+".dependsOn", r.DependsOn)
	}

	for i, g := range t.SyncGroups {
		path := fmt.Sprintf("syncGroups[%d]", i)
		if g.Name == "" {
			v.add(path+".name", "is required")
		}
		if len(t.WidgetsDeclaring(g.WidgetKey)) == 0 {
			v.add(path+".widgetKey", fmt.Sprintf("no widget declares %q", g.WidgetKey))
		}
		if !v.declared(models.GlobalScope, g.GlobalKey) {
			v.add(path+".globalKey", fmt.Sprintf("dashboard property %q is not declared", g.GlobalKey))
		}
		v.dependency(path+".when", g.When)
	}

	if len(v.problems) > 0 {
		return errs.NewTemplateError(t.ID, v.problems)
	}
	return nil
}

type validator struct {
	t        *models.DashboardTemplate
	problems []string
}

func (v *validator) add(path, msg string) {
	v.problems = append(v.problems, path+": "+msg)
}

func (v *validator) declared(scope, key string) bool {
	_, ok := v.t.Option(scope, key)
	return ok
}

func (v *validator) options(path string, opts []models.ConfigOption) {
	keys := make(map[string]int, len(opts))
	for i, o := range opts {
		p := fmt.Sprintf("%s[%d]", path, i)
		if o.Key == "" {
			v.add(p+".key", "is required")
		} else if prev, dup := keys[o.Key]; dup {
			v.add(p+".key", fmt.Sprintf("duplicate key %q (also %s[%d])", o.Key, path, prev))
		} else {
			keys[o.Key] = i
		}
		v.option(p, o)
	}
}

func (v *validator) option(path string, o models.ConfigOption) {
	if !o.Type.Valid() {
		v.add(path+".type", fmt.Sprintf("unknown type %q", o.Type))
		return
	}
	if !o.UIControl.Valid() {
		v.add(path+".uiControl", fmt.Sprintf("unknown control %q", o.UIControl))
		return
	}

	switch o.UIControl {
	case models.ControlDropdown:
		if len(o.Options) == 0 {
			v.add(path+".options", "dropdown requires options")
		}
		for i, opt := range o.Options {
			if opt.Kind() != o.Type {
				v.add(fmt.Sprintf("%s.options[%d]", path, i), fmt.Sprintf("%s is not a %s", opt, o.Type))
			}
		}
	case models.ControlSlider:
		if o.Type != models.TypeNumber {
			v.add(path+".type", "slider requires a number option")
		}
		if o.Min == nil || o.Max == nil || o.Step == nil {
			v.add(path, "slider requires min, max and step")
		} else {
			if *o.Min > *o.Max {
				v.add(path, fmt.Sprintf("min %g is greater than max %g", *o.Min, *o.Max))
			}
			if *o.Step <= 0 {
				v.add(path+".step", "must be greater than zero")
			}
		}
	case models.ControlSwitch, models.ControlCheckbox:
		if o.Type != models.TypeBoolean {
			v.add(path+".type", fmt.Sprintf("%s requires a boolean option", o.UIControl))
		}
	case models.ControlNumber:
		if o.Type != models.TypeNumber {
			v.add(path+".type", "number control requires a number option")
		}
	}

	if err := o.Accepts(o.DefaultValue); err != nil {
		v.add(path+".defaultValue", err.Error())
	}
}

func (v *validator) dependency(path string, dep models.Dependency) {
	if !v.declared(dep.Widget, dep.Key) {
		v.add(path, fmt.Sprintf("source %s.%s is not declared", dep.Widget, dep.Key))
	}
	switch dep.Operator {
	case models.OpEquals, models.OpNotEquals:
	case models.OpGreaterThan, models.OpLessThan:
		if _, ok := dep.Value.AsNumber(); !ok {
			v.add(path+".value", fmt.Sprintf("%s requires a number, got %s", dep.Operator, dep.Value))
		}
	default:
		v.add(path+".operator", fmt.Sprintf("unknown operator %q", dep.Operator))
	}
}
