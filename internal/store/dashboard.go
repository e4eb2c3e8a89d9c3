package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// dashboardDoc is the Firestore shape of a UserDashboard. Values are kept
// as native scalars so documents stay readable in the console.
type dashboardDoc struct {
	ID                  string                    `firestore:"id"`
	TemplateID          string                    `firestore:"templateId"`
	DashboardProperties map[string]any            `firestore:"dashboardProperties"`
	ConfigValues        map[string]map[string]any `firestore:"configValues"`
	Version             int64                     `firestore:"version"`
	CreatedAt           time.Time                 `firestore:"createdAt"`
	UpdatedAt           time.Time                 `firestore:"updatedAt"`
}

type dashboardStore struct {
	client *firestore.Client
}

func NewDashboardStore(client *firestore.Client) *dashboardStore {
	return &dashboardStore{client: client}
}

func (s *dashboardStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("dashboards")
}

func (s *dashboardStore) Create(ctx context.Context, uid string, d *models.UserDashboard) error {
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Version == 0 {
		d.Version = 1
	}
	_, err := s.collection(uid).Doc(d.ID).Create(ctx, toDashboardDoc(d))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("dashboard already exists")
		}
		return errs.NewDatabaseError("create", "failed to create dashboard", err)
	}
	return nil
}

func (s *dashboardStore) Get(ctx context.Context, uid, dashboardID string) (*models.UserDashboard, error) {
	snap, err := s.collection(uid).Doc(dashboardID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("dashboard not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get dashboard", err)
	}
	return decodeDashboard(snap)
}

func (s *dashboardStore) List(ctx context.Context, uid string) ([]*models.UserDashboard, error) {
	iter := s.collection(uid).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := make([]*models.UserDashboard, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list dashboards", err)
		}
		d, err := decodeDashboard(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Update reads the dashboard, applies fn and writes the result in one
// transaction. Concurrent updates to the same dashboard are retried by
// Firestore, so fn may run more than once and must not have side effects.
func (s *dashboardStore) Update(ctx context.Context, uid, dashboardID string, fn func(*models.UserDashboard) (*models.UserDashboard, error)) (*models.UserDashboard, error) {
	ref := s.collection(uid).Doc(dashboardID)
	var out *models.UserDashboard
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("dashboard not found")
			}
			return err
		}
		current, err := decodeDashboard(snap)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now()
		out = next
		return tx.Set(ref, toDashboardDoc(next))
	})
	if err != nil {
		return nil, classify(err, "update", "failed to update dashboard")
	}
	return out, nil
}

func (s *dashboardStore) Delete(ctx context.Context, uid, dashboardID string) error {
	_, err := s.collection(uid).Doc(dashboardID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("dashboard not found")
		}
		return errs.NewDatabaseError("delete", "failed to delete dashboard", err)
	}
	return nil
}

func toDashboardDoc(d *models.UserDashboard) dashboardDoc {
	cv := make(map[string]map[string]any, len(d.ConfigValues))
	for id, vals := range d.ConfigValues {
		cv[id] = vals.Plain()
	}
	return dashboardDoc{
		ID:                  d.ID,
		TemplateID:          d.TemplateID,
		DashboardProperties: d.DashboardProperties.Plain(),
		ConfigValues:        cv,
		Version:             d.Version,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func decodeDashboard(snap *firestore.DocumentSnapshot) (*models.UserDashboard, error) {
	var doc dashboardDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse dashboard data", err)
	}
	props, err := models.ValuesOf(doc.DashboardProperties)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse dashboard properties", err)
	}
	cv := make(map[string]models.Values, len(doc.ConfigValues))
	for id, raw := range doc.ConfigValues {
		vals, err := models.ValuesOf(raw)
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse config values for "+id, err)
		}
		cv[id] = vals
	}
	if doc.ID == "" {
		doc.ID = snap.Ref.ID
	}
	return &models.UserDashboard{
		ID:                  doc.ID,
		TemplateID:          doc.TemplateID,
		DashboardProperties: props,
		ConfigValues:        cv,
		Version:             doc.Version,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}, nil
}

// classify unwraps typed errors returned from inside a transaction and
// wraps anything else as a DatabaseError.
func classify(err error, op, msg string) error {
	var (
		nf *errs.NotFoundError
		ve *errs.ValidationError
		de *errs.DatabaseError
	)
	switch {
	case errors.As(err, &nf):
		return nf
	case errors.As(err, &ve):
		return ve
	case errors.As(err, &de):
		return de
	}
	return errs.NewDatabaseError(op, msg, err)
}
