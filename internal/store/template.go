package store

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

// templateDoc keeps the template definition as a nested map so that
// tagged-union values round-trip through their JSON form.
type templateDoc struct {
	Name       string         `firestore:"name"`
	Definition map[string]any `firestore:"definition"`
	UpdatedAt  time.Time      `firestore:"updatedAt"`
}

type templateStore struct {
	client *firestore.Client
}

func NewTemplateStore(client *firestore.Client) *templateStore {
	return &templateStore{client: client}
}

func (s *templateStore) collection() *firestore.CollectionRef {
	return s.client.Collection("dashboard_templates")
}

// Put creates or replaces the template stored under t.ID.
func (s *templateStore) Put(ctx context.Context, t *models.DashboardTemplate) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to encode template", err)
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		return errs.NewDatabaseError("update", "failed to encode template", err)
	}
	doc := templateDoc{Name: t.Name, Definition: def, UpdatedAt: time.Now()}
	if _, err := s.collection().Doc(t.ID).Set(ctx, doc); err != nil {
		return errs.NewDatabaseError("update", "failed to store template", err)
	}
	return nil
}

func (s *templateStore) Get(ctx context.Context, templateID string) (*models.DashboardTemplate, error) {
	snap, err := s.collection().Doc(templateID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("template not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get template", err)
	}
	return decodeTemplate(snap)
}

func (s *templateStore) List(ctx context.Context) ([]*models.DashboardTemplate, error) {
	iter := s.collection().OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := make([]*models.DashboardTemplate, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list templates", err)
		}
		t, err := decodeTemplate(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeTemplate(snap *firestore.DocumentSnapshot) (*models.DashboardTemplate, error) {
	var doc templateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse template data", err)
	}
	raw, err := json.Marshal(doc.Definition)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse template data", err)
	}
	var t models.DashboardTemplate
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse template data", err)
	}
	if t.ID == "" {
		t.ID = snap.Ref.ID
	}
	return &t, nil
}
