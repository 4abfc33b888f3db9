package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/filters"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/metrics"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// DefaultMaxRows caps exports when no limit is configured
const DefaultMaxRows = 10000

// LeadSource returns the leads matching a filter state, sorted and capped
type LeadSource interface {
	Rows(ctx context.Context, state filters.State, sort, dir string, limit int) ([]models.Lead, error)
}

// Request describes one export
type Request struct {
	Format  string
	Sort    string
	Dir     string
	Filters filters.State
}

// File is a rendered export. Body is nil once the file was handed to
// remote storage; URL and Key are set instead.
type File struct {
	Name        string
	ContentType string
	Rows        int
	Body        []byte
	Key         string
	URL         string
}

// Service renders filtered lead sets as CSV or XLSX
type Service struct {
	leads   LeadSource
	storage Storage
	maxRows int
	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithStorage uploads exports instead of returning them inline
func WithStorage(storage Storage) Option {
	return func(s *Service) {
		s.storage = storage
	}
}

// WithMaxRows caps the number of exported rows
func WithMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRows = n
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

// WithMetrics records export counts
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source used in file names
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new export service
func NewService(leads LeadSource, opts ...Option) *Service {
	s := &Service{
		leads:   leads,
		maxRows: DefaultMaxRows,
		logger:  logger.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders every lead matching req. An empty format means CSV.
func (s *Service) Export(ctx context.Context, req Request) (*File, error) {
	format := req.Format
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, domain.NewValidationError("format must be one of: csv, xlsx")
	}

	rows, err := s.leads.Rows(ctx, req.Filters, req.Sort, req.Dir, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	var buf bytes.Buffer
	if format == FormatXLSX {
		err = WriteXLSX(&buf, rows)
	} else {
		err = WriteCSV(&buf, rows)
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to render %s export: %w", format, err))
	}

	file := &File{
		Name:        fmt.Sprintf("leads-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: ContentType(format),
		Rows:        len(rows),
	}

	if s.storage == nil {
		file.Body = buf.Bytes()
	} else {
		file.Key = "exports/" + uuid.NewString() + "/" + file.Name
		url, err := s.storage.Put(ctx, file.Key, file.ContentType, buf.Bytes())
		if err != nil {
			return nil, domain.NewInternalError(fmt.Errorf("failed to store export: %w", err))
		}
		file.URL = url
	}

	s.metrics.RecordExportCreated(format)
	s.logger.Info("Export created", "format", format, "rows", file.Rows, "key", file.Key)

	return file, nil
}
