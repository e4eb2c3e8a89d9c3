package models

// GlobalScope is the widget id sentinel meaning "dashboard-level property",
// used by rules, dependencies and sync groups.
const GlobalScope = "global"

// Operator is the comparison a dependency applies to its source value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// Dependency is a single predicate over one instance value.
type Dependency struct {
	Widget   string   `json:"widget"`
	Key      string   `json:"key"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// ConditionalRule makes the control for (TargetWidget, ConfigKey) visible
// only while DependsOn holds. At most one rule exists per target pair.
type ConditionalRule struct {
	TargetWidget string     `json:"targetWidget"`
	ConfigKey    string     `json:"configKey"`
	DependsOn    Dependency `json:"dependsOn"`
}

// SyncGroup links a widget-level key to a dashboard-level key. While When
// holds, a widget write to WidgetKey is routed to GlobalKey and to
// WidgetKey on every widget that declares it.
type SyncGroup struct {
	Name      string     `json:"name"`
	WidgetKey string     `json:"widgetKey"`
	GlobalKey string     `json:"globalKey"`
	When      Dependency `json:"when"`
}

// DashboardTemplate is the immutable, admin-authored schema of a dashboard.
type DashboardTemplate struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Properties       []ConfigOption     `json:"properties"`
	Widgets          []WidgetDefinition `json:"widgets"`
	ConditionalRules []ConditionalRule  `json:"conditionalRules"`
	SyncGroups       []SyncGroup        `json:"syncGroups,omitempty"`
}

// Widget returns the widget definition with the given id.
func (t *DashboardTemplate) Widget(id string) (*WidgetDefinition, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.Widgets {
		if t.Widgets[i].ID == id {
			return &t.Widgets[i], true
		}
	}
	return nil, false
}

// Option returns the option declared for key in scope, where scope is a
// widget id or GlobalScope.
func (t *DashboardTemplate) Option(scope, key string) (ConfigOption, bool) {
	if t == nil {
		return ConfigOption{}, false
	}
	if scope == GlobalScope {
		return findOption(t.Properties, key)
	}
	w, ok := t.Widget(scope)
	if !ok {
		return ConfigOption{}, false
	}
	return w.Option(key)
}

// WidgetsDeclaring lists, in template order, the ids of widgets that
// declare an option named key.
func (t *DashboardTemplate) WidgetsDeclaring(key string) []string {
	if t == nil {
		return nil
	}
	var ids []string
	for _, w := range t.Widgets {
		if _, ok := w.Option(key); ok {
			ids = append(ids, w.ID)
		}
	}
	return ids
}
