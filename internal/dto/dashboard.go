package dto

import "github.com/GregMSThompson/dashboard-config/internal/models"

type CreateDashboardRequest struct {
	TemplateID string `json:"templateId"`
}

type UpdateDashboardConfigRequest struct {
	Key   string       `json:"key"`
	Value models.Value `json:"value"`
}

type UpdateWidgetConfigRequest struct {
	Key   string       `json:"key"`
	Value models.Value `json:"value"`
}

// PanelControl is one configurable control as the property panel renders it.
// Value is the effective value: the synced global value while a sync group
// owns the key, else the stored value, else the option default.
type PanelControl struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Type      models.ValueType `json:"type"`
	UIControl models.UIControl `json:"uiControl"`
	Options   []models.Value   `json:"options,omitempty"`
	Min       *float64         `json:"min,omitempty"`
	Max       *float64         `json:"max,omitempty"`
	Step      *float64         `json:"step,omitempty"`
	Value     models.Value     `json:"value"`
	Visible   bool             `json:"visible"`
	Synced    bool             `json:"synced"`
}

// PanelScope groups the controls of the dashboard or of one widget.
type PanelScope struct {
	Scope    string         `json:"scope"`
	Type     string         `json:"type,omitempty"`
	Controls []PanelControl `json:"controls"`
}

type PanelResponse struct {
	DashboardID string       `json:"dashboardId"`
	TemplateID  string       `json:"templateId"`
	Version     int64        `json:"version"`
	Dashboard   PanelScope   `json:"dashboard"`
	Widgets     []PanelScope `json:"widgets"`
}
