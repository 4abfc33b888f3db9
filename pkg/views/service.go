package views

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/metrics"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

const tableName = "saved_views"

var viewColumns = []string{
	"id",
	"user_id",
	"resource",
	"name",
	"state",
	"visibility",
	"is_default",
	"created_at",
	"updated_at",
}

var (
	errResourceRequired = domain.NewValidationError("resource required")
	errCreateRequired   = domain.NewValidationError("name, resource, state required")
	errNoFields         = domain.NewValidationError("no fields to update")
	errNameRequired     = domain.NewValidationError("name cannot be empty")
	errNameTaken        = domain.NewConflictError("view name already exists")
	errNotFound         = domain.NewNotFoundMessage("not found")
	errInvalidState     = domain.NewValidationError("state must be valid JSON")
)

// Service stores saved grid views per user and resource
type Service struct {
	db      *database.Client
	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new saved view service
func NewService(db *database.Client, opts ...Option) *Service {
	s := &Service{
		db:     db,
		logger: logger.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the views userID saved for resource, ordered by name
func (s *Service) List(ctx context.Context, userID int, resource string) ([]models.SavedView, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return nil, errResourceRequired
	}

	sel := s.dialect().Select(viewColumns...).
		From(entsql.Table(tableName)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("resource", resource),
		)).
		OrderExprFunc(func(b *entsql.Builder) {
			b.Ident("name").WriteString(" ASC")
		})

	views, err := s.query(ctx, s.db.Driver, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	return views, nil
}

// Get returns one view owned by userID
func (s *Service) Get(ctx context.Context, id, userID int) (*models.SavedView, error) {
	sel := s.dialect().Select(viewColumns...).
		From(entsql.Table(tableName)).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("user_id", userID),
		))

	views, err := s.query(ctx, s.db.Driver, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to get view: %w", err)
	}
	if len(views) == 0 {
		return nil, errNotFound
	}
	return &views[0], nil
}

// Create saves a new view. The name must be unique for the user and
// resource.
func (s *Service) Create(ctx context.Context, userID int, req models.CreateViewRequest) (*models.SavedView, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Resource = strings.TrimSpace(req.Resource)
	req.Visibility = strings.TrimSpace(req.Visibility)
	if req.Name == "" || req.Resource == "" || isNull(req.State) {
		return nil, errCreateRequired
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	state, err := encodeState(req.State)
	if err != nil {
		return nil, err
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPrivate
	}

	now := s.now().UTC()
	query, args := s.dialect().Insert(tableName).
		Columns("user_id", "resource", "name", "state", "visibility", "is_default", "created_at", "updated_at").
		Values(userID, req.Resource, req.Name, state, req.Visibility, req.IsDefault, now, now).
		Returning("id").
		Query()

	rows := &entsql.Rows{}
	if err := s.db.Driver.Query(ctx, query, args, rows); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errNameTaken
		}
		return nil, fmt.Errorf("failed to create view: %w", err)
	}
	id, err := entsql.ScanInt(rows)
	rows.Close()
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errNameTaken
		}
		return nil, fmt.Errorf("failed to create view: %w", err)
	}

	s.metrics.RecordViewMutation("create")
	s.logger.Info("View created", "view_id", id, "user_id", userID, "resource", req.Resource)

	return s.Get(ctx, id, userID)
}

// Update changes the supplied fields of a view owned by userID and
// refreshes updated_at.
func (s *Service) Update(ctx context.Context, id, userID int, req models.UpdateViewRequest) (*models.SavedView, error) {
	if req.Empty() {
		return nil, errNoFields
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errNameRequired
		}
		req.Name = &name
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	update := s.dialect().Update(tableName)
	if req.Name != nil {
		update.Set("name", *req.Name)
	}
	if len(req.State) > 0 {
		state, err := encodeState(req.State)
		if err != nil {
			return nil, err
		}
		update.Set("state", state)
	}
	if req.Visibility != nil {
		update.Set("visibility", *req.Visibility)
	}
	update.Set("updated_at", s.now().UTC())

	query, args := update.Where(entsql.And(
		entsql.EQ("id", id),
		entsql.EQ("user_id", userID),
	)).Query()

	var res entsql.Result
	if err := s.db.Driver.Exec(ctx, query, args, &res); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errNameTaken
		}
		return nil, fmt.Errorf("failed to update view: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update view: %w", err)
	}
	if affected == 0 {
		return nil, errNotFound
	}

	s.metrics.RecordViewMutation("update")

	return s.Get(ctx, id, userID)
}

// Delete removes a view owned by userID. Deleting a missing view is not an
// error; the returned count is 0.
func (s *Service) Delete(ctx context.Context, id, userID int) (int64, error) {
	query, args := s.dialect().Delete(tableName).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("user_id", userID),
		)).
		Query()

	var res entsql.Result
	if err := s.db.Driver.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("failed to delete view: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete view: %w", err)
	}
	if deleted > 0 {
		s.metrics.RecordViewMutation("delete")
	}
	return deleted, nil
}

func (s *Service) dialect() *entsql.DialectBuilder {
	return entsql.Dialect(s.db.Dialect())
}

func (s *Service) query(ctx context.Context, ex dialect.ExecQuerier, sel *entsql.Selector) ([]models.SavedView, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []models.SavedView{}
	for rows.Next() {
		var (
			v     models.SavedView
			state []byte
		)
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Resource, &v.Name, &state,
			&v.Visibility, &v.IsDefault, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		v.State = decodeState(state)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// encodeState compacts a state blob for storage
func encodeState(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", errInvalidState
	}
	return buf.String(), nil
}

// decodeState returns the stored blob, or an empty object when it is
// missing or not valid JSON
func decodeState(stored []byte) json.RawMessage {
	if len(stored) == 0 || !json.Valid(stored) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(stored)
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
