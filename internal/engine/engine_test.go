package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/rules"
	"github.com/GregMSThompson/dashboard-config/pkg/helpers"
)

// currencySync keeps every widget's currency on globalCurrency while
// syncCurrency is true.
var currencySync = models.SyncGroup{
	Name:      "currency",
	WidgetKey: "currency",
	GlobalKey: "globalCurrency",
	When: models.Dependency{
		Widget:   models.GlobalScope,
		Key:      "syncCurrency",
		Operator: models.OpEquals,
		Value:    models.BoolValue(true),
	},
}

func currencies() []models.Value {
	return []models.Value{
		models.StringValue("USD"), models.StringValue("EUR"),
		models.StringValue("JPY"), models.StringValue("GBP"),
	}
}

func salesTemplate() *models.DashboardTemplate {
	currency := models.ConfigOption{
		Key: "currency", Type: models.TypeString, UIControl: models.ControlDropdown,
		DefaultValue: models.StringValue("USD"), Options: currencies(),
	}
	hiddenWhileSynced := models.Dependency{
		Widget: models.GlobalScope, Key: "syncCurrency",
		Operator: models.OpNotEquals, Value: models.BoolValue(true),
	}
	return &models.DashboardTemplate{
		ID:   "template-001",
		Name: "Sales Overview",
		Properties: []models.ConfigOption{
			{Key: "syncCurrency", Type: models.TypeBoolean, UIControl: models.ControlCheckbox, DefaultValue: models.BoolValue(true)},
			{Key: "globalCurrency", Type: models.TypeString, UIControl: models.ControlDropdown, DefaultValue: models.StringValue("USD"), Options: currencies()},
		},
		Widgets: []models.WidgetDefinition{
			{ID: "chart-1", Type: "chart", ConfigOptions: []models.ConfigOption{currency}},
			{ID: "table-1", Type: "table", ConfigOptions: []models.ConfigOption{
				currency,
				{
					Key: "rowsPerPage", Type: models.TypeNumber, UIControl: models.ControlSlider,
					DefaultValue: models.NumberValue(10),
					Min:          helpers.Ptr(5.0), Max: helpers.Ptr(50.0), Step: helpers.Ptr(5.0),
				},
			}},
		},
		ConditionalRules: []models.ConditionalRule{
			{TargetWidget: "chart-1", ConfigKey: "currency", DependsOn: hiddenWhileSynced},
			{TargetWidget: "table-1", ConfigKey: "currency", DependsOn: hiddenWhileSynced},
		},
		SyncGroups: []models.SyncGroup{currencySync},
	}
}

func seeded(t *testing.T, sync bool) (*Engine, *models.UserDashboard) {
	t.Helper()
	e := New(salesTemplate())
	d := e.NewDashboard("user-dash-001")
	d, err := e.UpdateDashboardConfig(d, "syncCurrency", models.BoolValue(sync))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return e, d
}

func TestNewDashboard_SeedsDefaults(t *testing.T) {
	e := New(salesTemplate())
	d := e.NewDashboard("d1")

	if d.ID != "d1" || d.TemplateID != "template-001" {
		t.Fatalf("unexpected ids: %q %q", d.ID, d.TemplateID)
	}
	if !d.Property("syncCurrency").Equal(models.BoolValue(true)) {
		t.Errorf("syncCurrency = %v", d.Property("syncCurrency"))
	}
	if !d.WidgetValue("table-1", "rowsPerPage").Equal(models.NumberValue(10)) {
		t.Errorf("rowsPerPage = %v", d.WidgetValue("table-1", "rowsPerPage"))
	}
	if err := e.Validate(d); err != nil {
		t.Fatalf("seeded dashboard should validate: %v", err)
	}
}

func TestUpdateDashboardConfig_SetsOnlyTargetKey(t *testing.T) {
	e, d := seeded(t, true)

	next, err := e.UpdateDashboardConfig(d, "globalCurrency", models.StringValue("GBP"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Property("globalCurrency").Equal(models.StringValue("GBP")) {
		t.Errorf("globalCurrency = %v", next.Property("globalCurrency"))
	}
	if !next.Property("syncCurrency").Equal(models.BoolValue(true)) {
		t.Error("syncCurrency changed")
	}
	// No cascade into widgets.
	if !next.WidgetValue("chart-1", "currency").Equal(models.StringValue("USD")) {
		t.Error("widget currency changed on a global write")
	}
	// Input untouched.
	if !d.Property("globalCurrency").Equal(models.StringValue("USD")) {
		t.Error("input instance was mutated")
	}

	again, err := e.UpdateDashboardConfig(next, "globalCurrency", models.StringValue("GBP"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again.DashboardProperties) != len(next.DashboardProperties) ||
		!again.Property("globalCurrency").Equal(next.Property("globalCurrency")) {
		t.Error("repeating the same update changed the result")
	}
}

func TestUpdateWidgetConfig_SyncedCascades(t *testing.T) {
	e, d := seeded(t, true)

	next, err := e.UpdateWidgetConfig(d, "chart-1", "currency", models.StringValue("EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eur := models.StringValue("EUR")
	if !next.Property("globalCurrency").Equal(eur) {
		t.Errorf("globalCurrency = %v", next.Property("globalCurrency"))
	}
	if !next.WidgetValue("chart-1", "currency").Equal(eur) {
		t.Errorf("chart-1 currency = %v", next.WidgetValue("chart-1", "currency"))
	}
	if !next.WidgetValue("table-1", "currency").Equal(eur) {
		t.Errorf("table-1 currency = %v", next.WidgetValue("table-1", "currency"))
	}
	if !next.WidgetValue("table-1", "rowsPerPage").Equal(models.NumberValue(10)) {
		t.Error("unrelated key changed")
	}

	if !d.WidgetValue("table-1", "currency").Equal(models.StringValue("USD")) ||
		!d.Property("globalCurrency").Equal(models.StringValue("USD")) {
		t.Error("input instance was mutated")
	}
}

func TestUpdateWidgetConfig_UnsyncedIsLocal(t *testing.T) {
	e, d := seeded(t, false)

	next, err := e.UpdateWidgetConfig(d, "chart-1", "currency", models.StringValue("EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.WidgetValue("chart-1", "currency").Equal(models.StringValue("EUR")) {
		t.Errorf("chart-1 currency = %v", next.WidgetValue("chart-1", "currency"))
	}
	if !next.WidgetValue("table-1", "currency").Equal(models.StringValue("USD")) {
		t.Error("table-1 currency changed while sync was off")
	}
	if !next.Property("globalCurrency").Equal(models.StringValue("USD")) {
		t.Error("globalCurrency changed while sync was off")
	}
	if len(next.ConfigValues["table-1"]) != 2 {
		t.Error("table-1 values lost")
	}
}

func TestUpdateWidgetConfig_TogglingSyncDoesNotRewrite(t *testing.T) {
	e, d := seeded(t, false)
	d, _ = e.UpdateWidgetConfig(d, "chart-1", "currency", models.StringValue("JPY"))

	d, err := e.UpdateDashboardConfig(d, "syncCurrency", models.BoolValue(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.WidgetValue("chart-1", "currency").Equal(models.StringValue("JPY")) {
		t.Error("toggling sync rewrote chart-1 currency")
	}
	if !d.WidgetValue("table-1", "currency").Equal(models.StringValue("USD")) {
		t.Error("toggling sync rewrote table-1 currency")
	}
	// Read-time resolution follows the global value while synced.
	if got := e.Resolve(d, "chart-1", "currency"); !got.Equal(models.StringValue("USD")) {
		t.Errorf("Resolve while synced = %v, want global USD", got)
	}
}

func TestUpdateWidgetConfig_SyncToggleChangesVisibility(t *testing.T) {
	e, d := seeded(t, true)
	tmpl := e.Template()

	if rules.ShouldShow(tmpl, d, "chart-1", "currency") {
		t.Fatal("expected chart-1 currency hidden while synced")
	}
	d, err := e.UpdateDashboardConfig(d, "syncCurrency", models.BoolValue(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules.ShouldShow(tmpl, d, "table-1", "currency") {
		t.Fatal("expected table-1 currency visible after disabling sync")
	}
}

func TestUpdateWidgetConfig_RoundTrip(t *testing.T) {
	e, d := seeded(t, false)
	next, err := e.UpdateWidgetConfig(d, "table-1", "rowsPerPage", models.NumberValue(25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := next.WidgetValue("table-1", "rowsPerPage"); !got.Equal(models.NumberValue(25)) {
		t.Errorf("rowsPerPage = %v, want 25", got)
	}
}

func TestUpdateWidgetConfig_InsertsUnknownWidget(t *testing.T) {
	e, d := seeded(t, true)
	next, err := e.UpdateWidgetConfig(d, "map-9", "zoom", models.NumberValue(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.WidgetValue("map-9", "zoom").Equal(models.NumberValue(3)) {
		t.Error("expected insertion for unknown widget")
	}
	if _, ok := d.ConfigValues["map-9"]; ok {
		t.Error("input instance was mutated")
	}
}

func TestUpdateWidgetConfig_SyncIncludesUndeclaredTrigger(t *testing.T) {
	e, d := seeded(t, true)
	next, err := e.UpdateWidgetConfig(d, "map-9", "currency", models.StringValue("GBP"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"chart-1", "table-1", "map-9"} {
		if !next.WidgetValue(id, "currency").Equal(models.StringValue("GBP")) {
			t.Errorf("%s currency = %v", id, next.WidgetValue(id, "currency"))
		}
	}
}

func TestUpdate_RejectsWrongType(t *testing.T) {
	e, d := seeded(t, true)

	_, err := e.UpdateWidgetConfig(d, "table-1", "rowsPerPage", models.StringValue("25"))
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	_, err = e.UpdateDashboardConfig(d, "syncCurrency", models.StringValue("yes"))
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	_, err = e.UpdateWidgetConfig(d, "chart-1", "currency", models.StringValue("CHF"))
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for value outside options, got %T: %v", err, err)
	}

	_, err = e.UpdateWidgetConfig(d, "table-1", "rowsPerPage", models.NumberValue(500))
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for out-of-range slider, got %T: %v", err, err)
	}
}

func TestUpdateWidgetConfig_SyncedRejectsValueATargetRefuses(t *testing.T) {
	tmpl := salesTemplate()
	tmpl.Widgets[1].ConfigOptions[0].Options = []models.Value{models.StringValue("USD"), models.StringValue("GBP")}
	e := New(tmpl)
	d := e.NewDashboard("d1")

	next, err := e.UpdateWidgetConfig(d, "chart-1", "currency", models.StringValue("EUR"))
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !strings.Contains(ve.Message, "table-1") {
		t.Errorf("expected the refusing widget in the error, got %q", ve.Message)
	}
	if next != d {
		t.Fatal("expected the input instance back on rejection")
	}
	if !d.WidgetValue("chart-1", "currency").Equal(models.StringValue("USD")) ||
		!d.Property("globalCurrency").Equal(models.StringValue("USD")) {
		t.Fatal("input instance was modified")
	}

	// A value every target accepts still cascades and validates.
	next, err = e.UpdateWidgetConfig(d, "table-1", "currency", models.StringValue("USD"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Validate(next); err != nil {
		t.Fatalf("cascaded instance does not validate: %v", err)
	}
}

func TestUpdate_NilInstanceIsEmpty(t *testing.T) {
	e := New(salesTemplate())
	next, err := e.UpdateDashboardConfig(nil, "syncCurrency", models.BoolValue(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, err = e.UpdateWidgetConfig(next, "chart-1", "currency", models.StringValue("EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.WidgetValue("chart-1", "currency").Equal(models.StringValue("EUR")) {
		t.Error("expected write into empty instance")
	}
}

func TestNew_ExtraGroupsGeneraliseCascade(t *testing.T) {
	tmpl := salesTemplate()
	tmpl.SyncGroups = nil
	tmpl.Properties = append(tmpl.Properties,
		models.ConfigOption{Key: "lockRows", Type: models.TypeBoolean, UIControl: models.ControlSwitch, DefaultValue: models.BoolValue(true)},
		models.ConfigOption{Key: "rows", Type: models.TypeNumber, UIControl: models.ControlNumber, DefaultValue: models.NumberValue(10)},
	)
	e := New(tmpl, models.SyncGroup{
		Name: "rows", WidgetKey: "rowsPerPage", GlobalKey: "rows",
		When: models.Dependency{Widget: models.GlobalScope, Key: "lockRows", Operator: models.OpEquals, Value: models.BoolValue(true)},
	})
	d := e.NewDashboard("d1")

	next, err := e.UpdateWidgetConfig(d, "table-1", "rowsPerPage", models.NumberValue(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Property("rows").Equal(models.NumberValue(20)) {
		t.Errorf("rows = %v", next.Property("rows"))
	}
	// Currency is no longer synced for this engine.
	next, err = e.UpdateWidgetConfig(next, "chart-1", "currency", models.StringValue("EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.WidgetValue("table-1", "currency").Equal(models.StringValue("EUR")) {
		t.Error("currency cascaded without a currency sync group")
	}
}

func TestActiveGroup_IgnoresUnknownOperator(t *testing.T) {
	tmpl := salesTemplate()
	broken := currencySync
	broken.When.Operator = "sometimes"
	tmpl.SyncGroups = []models.SyncGroup{broken}
	e := New(tmpl)
	if _, ok := e.ActiveGroup(e.NewDashboard("d1"), "currency"); ok {
		t.Fatal("expected group with unknown operator to stay inactive")
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	e := New(salesTemplate())
	d := &models.UserDashboard{TemplateID: "template-001"}

	if got := e.Resolve(d, "table-1", "rowsPerPage"); !got.Equal(models.NumberValue(10)) {
		t.Errorf("rowsPerPage = %v, want default 10", got)
	}
	if got := e.ResolveGlobal(d, "globalCurrency"); !got.Equal(models.StringValue("USD")) {
		t.Errorf("globalCurrency = %v, want default USD", got)
	}
	if got := e.Resolve(d, "ghost", "nothing"); got.IsDefined() {
		t.Errorf("expected undefined for unknown option, got %v", got)
	}
}

func TestValidate_ReportsDrift(t *testing.T) {
	e, d := seeded(t, true)
	d, _ = e.UpdateWidgetConfig(d, "map-9", "zoom", models.NumberValue(3))
	d, _ = e.UpdateDashboardConfig(d, "theme", models.StringValue("dark"))
	d.TemplateID = "template-999"

	err := e.Validate(d)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	for _, want := range []string{"template-999", "configValues.map-9", "dashboardProperties.theme"} {
		if !strings.Contains(ve.Message, want) {
			t.Errorf("expected %q in %q", want, ve.Message)
		}
	}
}
