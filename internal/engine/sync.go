package engine

import (
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/rules"
)

// ActiveGroup returns the first sync group that owns key and whose
// predicate currently holds. Groups with an unknown operator never
// activate, unlike visibility rules which fail open.
func (e *Engine) ActiveGroup(d *models.UserDashboard, key string) (models.SyncGroup, bool) {
	for _, g := range e.groups {
		if g.WidgetKey != key || !g.When.Operator.Valid() {
			continue
		}
		if rules.Holds(d, g.When) {
			return g, true
		}
	}
	return models.SyncGroup{}, false
}
