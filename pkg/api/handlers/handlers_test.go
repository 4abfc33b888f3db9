package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	apierrors "github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/export"
	"github.com/jordanlanch/leadgrid/pkg/leads"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/middleware"
	"github.com/jordanlanch/leadgrid/pkg/models"
	"github.com/jordanlanch/leadgrid/pkg/views"
)

const testUserID = 7

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	e     *echo.Echo
	leads *leads.Service
	views *views.Service
}

func setupTestDB(t *testing.T) *database.Client {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := database.NewClient("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Migrate(context.Background()))
	return client
}

// setupTestServer wires the real services on in-memory SQLite and mounts
// the handlers the way the API binary does.
func setupTestServer(t *testing.T, exportOpts ...export.Option) *testServer {
	db := setupTestDB(t)
	clock := func() time.Time { return fixedNow }

	leadService := leads.NewService(db, nil, leads.WithLogger(logger.Discard()), leads.WithClock(clock))
	viewService := views.NewService(db, views.WithLogger(logger.Discard()), views.WithClock(clock))
	exportOpts = append([]export.Option{export.WithLogger(logger.Discard()), export.WithClock(clock)}, exportOpts...)
	exportService := export.NewService(leadService, exportOpts...)

	e := echo.New()
	e.HTTPErrorHandler = apierrors.HTTPErrorHandler

	api := e.Group("/api", middleware.FixedIdentity(testUserID))
	leadsGroup := api.Group("/leads")
	NewLeadHandler(leadService, logger.Discard()).RegisterRoutes(leadsGroup)
	NewExportHandler(exportService, logger.Discard()).RegisterRoutes(leadsGroup)
	NewPhoneHandler().RegisterRoutes(leadsGroup)
	NewViewHandler(viewService).RegisterRoutes(api.Group("/views"))

	return &testServer{e: e, leads: leadService, views: viewService}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createLead(t *testing.T, company, stage string, revenue float64) *models.Lead {
	t.Helper()
	lead, err := s.leads.Create(context.Background(), models.CreateLeadRequest{
		CompanyName:   company,
		ContactName:   "Contact " + company,
		Email:         strings.ToLower(strings.ReplaceAll(company, " ", "")) + "@example.com",
		Stage:         stage,
		Source:        models.SourceAds,
		Owner:         "Teammate A",
		AnnualRevenue: &revenue,
	})
	require.NoError(t, err)
	return lead
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[models.ErrorResponse](t, rec).Error
}

func filtersQuery(raw string) string {
	return "filters=" + url.QueryEscape(raw)
}
