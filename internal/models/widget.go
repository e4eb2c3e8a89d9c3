package models

import (
	"fmt"
	"strings"
)

// UIControl names the control a renderer draws for an option.
type UIControl string

const (
	ControlInput    UIControl = "input"
	ControlSlider   UIControl = "slider"
	ControlSwitch   UIControl = "switch"
	ControlCheckbox UIControl = "checkbox" // rendered like switch
	ControlDropdown UIControl = "dropdown"
	ControlNumber   UIControl = "number"
)

func (c UIControl) Valid() bool {
	switch c {
	case ControlInput, ControlSlider, ControlSwitch, ControlCheckbox, ControlDropdown, ControlNumber:
		return true
	}
	return false
}

// ConfigOption is an author-defined configurable property of a widget or of
// the dashboard itself.
type ConfigOption struct {
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Type         ValueType `json:"type"`
	UIControl    UIControl `json:"uiControl"`
	DefaultValue Value     `json:"defaultValue"`
	Options      []Value   `json:"options,omitempty"`
	Min          *float64  `json:"min,omitempty"`
	Max          *float64  `json:"max,omitempty"`
	Step         *float64  `json:"step,omitempty"`
}

// Accepts checks v against the option's declared type, its enumerated
// choices (dropdown) and its bounds (slider).
func (o ConfigOption) Accepts(v Value) error {
	if v.Kind() != o.Type {
		return fmt.Errorf("%s expects a %s value, got %s", o.Key, o.Type, kindName(v))
	}
	if o.UIControl == ControlDropdown && len(o.Options) > 0 {
		for _, opt := range o.Options {
			if opt.Equal(v) {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of: %s", o.Key, joinValues(o.Options))
	}
	if o.UIControl == ControlSlider {
		n, _ := v.AsNumber()
		if o.Min != nil && n < *o.Min {
			return fmt.Errorf("%s must be at least %g", o.Key, *o.Min)
		}
		if o.Max != nil && n > *o.Max {
			return fmt.Errorf("%s must be at most %g", o.Key, *o.Max)
		}
	}
	return nil
}

// WidgetDefinition is a widget slot in a template. Type is only used by
// renderers to pick a visual implementation.
type WidgetDefinition struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	ConfigOptions []ConfigOption `json:"configOptions"`
}

// Option returns the widget's option with the given key.
func (w WidgetDefinition) Option(key string) (ConfigOption, bool) {
	return findOption(w.ConfigOptions, key)
}

func findOption(opts []ConfigOption, key string) (ConfigOption, bool) {
	for _, o := range opts {
		if o.Key == key {
			return o, true
		}
	}
	return ConfigOption{}, false
}

func kindName(v Value) string {
	if !v.IsDefined() {
		return "undefined"
	}
	return string(v.Kind())
}

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
