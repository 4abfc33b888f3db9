package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/text/unicode/norm"

	"github.com/jordanlanch/leadgrid/pkg/cache"
	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/filters"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/metrics"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

const (
	tableName = "leads"

	listCachePrefix     = "leads:list"
	listCacheGeneration = "leads:gen"
	cacheTypeRedis      = "redis"
)

// leadColumns is the select list matching scanLead
var leadColumns = []string{
	"id",
	"company_name",
	"contact_name",
	"email",
	"phone",
	"country",
	"stage",
	"source",
	"owner",
	"annual_revenue",
	"next_action_date",
	"notes",
	"created_at",
}

// Service handles lead business logic
type Service struct {
	db       *database.Client
	cache    *cache.Client
	cacheTTL time.Duration
	logger   logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithCacheTTL sets how long cached list pages live
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

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

// WithClock overrides the time source used for created_at
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new lead service. cache may be nil, which disables
// list caching.
func NewService(db *database.Client, cache *cache.Client, opts ...Option) *Service {
	s := &Service{
		db:       db,
		cache:    cache,
		cacheTTL: 5 * time.Minute,
		logger:   logger.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListParams describes one page of a filtered, sorted lead listing
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	Dir      string
	Filters  filters.State
}

// List returns one page of leads and the number of leads matching the
// filters regardless of paging.
func (s *Service) List(ctx context.Context, params ListParams) (*models.LeadListResponse, error) {
	params.Page, params.PageSize = filters.ClampPaging(params.Page, params.PageSize)
	params.Sort = filters.SortColumn(params.Sort)
	desc := filters.SortDesc(params.Dir)
	s.metrics.RecordLeadList()

	cacheKey := s.listCacheKey(ctx, params, desc)
	if cacheKey != "" {
		var cached models.LeadListResponse
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheHit(cacheTypeRedis)
			return &cached, nil
		}
		s.metrics.RecordCacheMiss(cacheTypeRedis)
	}

	start := time.Now()
	total, err := s.count(ctx, params.Filters)
	if err != nil {
		return nil, err
	}

	rows := []models.Lead{}
	if offset := (params.Page - 1) * params.PageSize; offset < total {
		sel := s.selectLeads(params.Filters, params.Sort, desc).
			Limit(params.PageSize).
			Offset(offset)
		rows, err = s.query(ctx, s.db.Driver, sel)
		if err != nil {
			return nil, fmt.Errorf("failed to list leads: %w", err)
		}
	}
	s.metrics.RecordDBQuery("select", time.Since(start))

	response := &models.LeadListResponse{Rows: rows, Total: total}

	if cacheKey != "" {
		if err := s.cache.SetJSON(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache lead list", "error", err)
		}
	}

	return response, nil
}

// Rows returns every lead matching state in the requested order, up to
// limit rows.
func (s *Service) Rows(ctx context.Context, state filters.State, sort, dir string, limit int) ([]models.Lead, error) {
	sel := s.selectLeads(state, filters.SortColumn(sort), filters.SortDesc(dir))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := s.query(ctx, s.db.Driver, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return rows, nil
}

// Count returns the number of leads matching state
func (s *Service) Count(ctx context.Context, state filters.State) (int, error) {
	return s.count(ctx, state)
}

// Get retrieves a single lead by ID
func (s *Service) Get(ctx context.Context, id int) (*models.Lead, error) {
	return s.get(ctx, s.db.Driver, id)
}

// Create inserts a new lead. The id and created_at are assigned here.
func (s *Service) Create(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	req = trimCreateRequest(req)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	var nextAction any
	if req.NextActionDate != nil {
		nextAction = *req.NextActionDate
	}
	var revenue any
	if req.AnnualRevenue != nil {
		revenue = *req.AnnualRevenue
	}

	insert := s.dialect().Insert(tableName).
		Columns(
			"company_name", "contact_name", "email", "phone", "country", "stage", "source",
			"owner", "annual_revenue", "next_action_date", "notes", "created_at",
		).
		Values(
			req.CompanyName, req.ContactName, req.Email, optional(req.Phone), optional(req.Country),
			req.Stage, req.Source, req.Owner, revenue, nextAction, optional(req.Notes), s.now().UTC(),
		)

	id, err := s.insert(ctx, s.db.Driver, insert)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.invalidateList(ctx)
	s.metrics.RecordLeadMutation("create")
	s.logger.Info("Lead created", "lead_id", id)

	return s.Get(ctx, id)
}

// Patch updates the editable columns present in fields and returns the
// updated lead. Unknown keys are ignored; each value is validated like a
// bulk edit of that column.
func (s *Service) Patch(ctx context.Context, id int, fields map[string]any) (*models.Lead, error) {
	update := s.dialect().Update(tableName)
	changed := 0
	for _, column := range EditableColumns {
		raw, ok := fields[column]
		if !ok {
			continue
		}
		value, err := CoerceColumnValue(column, raw)
		if err != nil {
			return nil, err
		}
		if value == nil {
			update.SetNull(column)
		} else {
			update.Set(column, value)
		}
		changed++
	}
	if changed == 0 {
		return nil, domain.NewValidationError("No updatable fields")
	}

	query, args := update.Where(entsql.EQ("id", id)).Query()
	var res entsql.Result
	if err := s.db.Driver.Exec(ctx, query, args, &res); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if affected == 0 {
		return nil, domain.NewNotFoundError("Lead")
	}

	s.invalidateList(ctx)
	s.metrics.RecordLeadMutation("patch")

	return s.Get(ctx, id)
}

// Options lists the values the grid offers for select fields: the fixed
// stages and sources plus the owners and countries present in the table.
func (s *Service) Options(ctx context.Context) (*models.LeadOptionsResponse, error) {
	owners, err := s.distinct(ctx, "owner")
	if err != nil {
		return nil, err
	}
	countries, err := s.distinct(ctx, "country")
	if err != nil {
		return nil, err
	}
	return &models.LeadOptionsResponse{
		Stages:    slices.Clone(models.Stages),
		Sources:   slices.Clone(models.Sources),
		Owners:    owners,
		Countries: countries,
	}, nil
}

// distinct returns the sorted, NFC-normalized distinct non-empty values of
// column.
func (s *Service) distinct(ctx context.Context, column string) ([]string, error) {
	query, args := s.dialect().Select(column).Distinct().
		From(entsql.Table(tableName)).
		Where(entsql.NotNull(column)).
		Query()

	rows := &entsql.Rows{}
	if err := s.db.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to fetch %s values: %w", column, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", column, err)
		}
		v = norm.NFC.String(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Sort(values)
	return values, nil
}

func (s *Service) dialect() *entsql.DialectBuilder {
	return entsql.Dialect(s.db.Dialect())
}

// selectLeads builds the filtered, ordered select. Ties on the sort column
// are broken by id so paging is stable.
func (s *Service) selectLeads(state filters.State, sort string, desc bool) *entsql.Selector {
	sel := s.dialect().Select(leadColumns...).From(entsql.Table(tableName))
	if p := filters.Compile(state); p != nil {
		sel.Where(p)
	}
	sel.OrderExprFunc(func(b *entsql.Builder) {
		b.Ident(sort)
		if desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	})
	if sort != filters.DefaultSort {
		sel.OrderExprFunc(func(b *entsql.Builder) {
			b.Ident("id").WriteString(" ASC")
		})
	}
	return sel
}

func (s *Service) count(ctx context.Context, state filters.State) (int, error) {
	sel := s.dialect().Select().Count().From(entsql.Table(tableName))
	if p := filters.Compile(state); p != nil {
		sel.Where(p)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.db.Driver.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	total, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return total, nil
}

func (s *Service) get(ctx context.Context, ex dialect.ExecQuerier, id int) (*models.Lead, error) {
	sel := s.dialect().Select(leadColumns...).
		From(entsql.Table(tableName)).
		Where(entsql.EQ("id", id))
	rows, err := s.query(ctx, ex, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.NewNotFoundError("Lead")
	}
	return &rows[0], nil
}

func (s *Service) query(ctx context.Context, ex dialect.ExecQuerier, sel *entsql.Selector) ([]models.Lead, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return scanLeads(rows)
}

// insert runs an INSERT ... RETURNING id and returns the new id
func (s *Service) insert(ctx context.Context, ex dialect.ExecQuerier, insert *entsql.InsertBuilder) (int, error) {
	query, args := insert.Returning("id").Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

func scanLeads(rows *entsql.Rows) ([]models.Lead, error) {
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var (
			l       models.Lead
			phone   entsql.NullString
			country entsql.NullString
			notes   entsql.NullString
			revenue entsql.NullFloat64
		)
		if err := rows.Scan(
			&l.ID, &l.CompanyName, &l.ContactName, &l.Email, &phone, &country,
			&l.Stage, &l.Source, &l.Owner, &revenue, &l.NextActionDate, &notes, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		if phone.Valid {
			l.Phone = &phone.String
		}
		if country.Valid {
			l.Country = &country.String
		}
		if notes.Valid {
			l.Notes = &notes.String
		}
		if revenue.Valid {
			l.AnnualRevenue = &revenue.Float64
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

// listCacheKey derives the cache key of a list request. It returns "" when
// caching is off or the generation counter cannot be read.
func (s *Service) listCacheKey(ctx context.Context, params ListParams, desc bool) string {
	if s.cache == nil {
		return ""
	}
	gen, err := s.cache.Generation(ctx, listCacheGeneration)
	if err != nil {
		s.logger.Warn("Lead list cache unavailable", "error", err)
		return ""
	}

	// Condition ids are opaque and must not split the cache.
	state := params.Filters
	conditions := make([]filters.Condition, len(state.Advanced.Conditions))
	copy(conditions, state.Advanced.Conditions)
	for i := range conditions {
		conditions[i].ID = ""
	}
	state.Advanced.Conditions = conditions

	payload, err := json.Marshal(struct {
		Page     int           `json:"page"`
		PageSize int           `json:"page_size"`
		Sort     string        `json:"sort"`
		Desc     bool          `json:"desc"`
		Filters  filters.State `json:"filters"`
	}{params.Page, params.PageSize, params.Sort, desc, state})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s:%d:%s", listCachePrefix, gen, hex.EncodeToString(sum[:]))
}

// invalidateList orphans every cached list page
func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Bump(ctx, listCacheGeneration); err != nil {
		s.logger.Warn("Failed to invalidate lead list cache", "error", err)
	}
}

func trimCreateRequest(req models.CreateLeadRequest) models.CreateLeadRequest {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.Email = strings.TrimSpace(req.Email)
	req.Stage = strings.TrimSpace(req.Stage)
	req.Source = strings.TrimSpace(req.Source)
	req.Owner = strings.TrimSpace(req.Owner)
	req.Phone = trimOptional(req.Phone)
	req.Country = trimOptional(req.Country)
	req.Notes = trimOptional(req.Notes)
	req.NextActionDate = trimOptional(req.NextActionDate)
	return req
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// optional converts a nil pointer to an untyped nil so it binds as NULL
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
