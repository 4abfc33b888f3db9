package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadgrid/pkg/leads"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

func TestLeadHandler_List(t *testing.T) {
	s := setupTestServer(t)
	for i := 1; i <= 5; i++ {
		stage := models.StageProspect
		if i%2 == 0 {
			stage = models.StageWon
		}
		s.createLead(t, fmt.Sprintf("Company %d", i), stage, float64(i*1000))
	}

	t.Run("defaults", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/leads", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[models.LeadListResponse](t, rec)
		assert.Equal(t, 5, resp.Total)
		require.Len(t, resp.Rows, 5)
		assert.Equal(t, "Company 1", resp.Rows[0].CompanyName)
	})

	t.Run("paging and sort", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/leads?page=2&pageSize=2&sort=annual_revenue&dir=desc", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[models.LeadListResponse](t, rec)
		assert.Equal(t, 5, resp.Total)
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, "Company 3", resp.Rows[0].CompanyName)
		assert.Equal(t, "Company 2", resp.Rows[1].CompanyName)
	})

	t.Run("malformed paging falls back to defaults", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/leads?page=abc&pageSize=-3", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[models.LeadListResponse](t, rec).Rows, 5)
	})

	t.Run("simple filter", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/leads?"+filtersQuery(`{"mode":"simple","simple":{"stage":"Won"}}`), "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[models.LeadListResponse](t, rec)
		assert.Equal(t, 2, resp.Total)
		for _, lead := range resp.Rows {
			assert.Equal(t, models.StageWon, lead.Stage)
		}
	})

	t.Run("advanced filter", func(t *testing.T) {
		raw := `{"mode":"advanced","advanced":{"conditions":[
			{"id":"a","field":"annual_revenue","operator":"gt","value":"2500"},
			{"id":"b","field":"stage","operator":"is","value":"Prospect","join":"AND"}]}}`
		rec := s.do(t, http.MethodGet, "/api/leads?"+filtersQuery(raw), "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[models.LeadListResponse](t, rec)
		require.Equal(t, 2, resp.Total)
		assert.Equal(t, "Company 3", resp.Rows[0].CompanyName)
		assert.Equal(t, "Company 5", resp.Rows[1].CompanyName)
	})

	t.Run("malformed filters are ignored", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/leads?filters=%7Bnot-json", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, decode[models.LeadListResponse](t, rec).Total)
	})
}

func TestLeadHandler_Get(t *testing.T) {
	s := setupTestServer(t)
	lead := s.createLead(t, "Acme", models.StageProspect, 1000)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/leads/%d", lead.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decode[models.Lead](t, rec).CompanyName)

	rec = s.do(t, http.MethodGet, "/api/leads/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead not found", errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/leads/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead not found", errorOf(t, rec))
}

func TestLeadHandler_Create(t *testing.T) {
	s := setupTestServer(t)

	body := `{"company_name":"  Acme  ","contact_name":"Ada","email":"ada@acme.test",
		"stage":"Qualified","source":"Referral","owner":"Teammate B","annual_revenue":1200.5,
		"next_action_date":"2024-04-01"}`
	rec := s.do(t, http.MethodPost, "/api/leads", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	lead := decode[models.Lead](t, rec)
	assert.NotZero(t, lead.ID)
	assert.Equal(t, "Acme", lead.CompanyName)
	assert.Equal(t, "2024-04-01", lead.NextActionDate.Date)
	assert.True(t, lead.CreatedAt.Equal(fixedNow))

	rec = s.do(t, http.MethodPost, "/api/leads", `{"company_name":"Acme","contact_name":"Ada","email":"a@b.c","stage":"Maybe","source":"Ads","owner":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "stage must be one of: Prospect, Qualified, Proposal, Won, Lost", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/leads", `{"company_name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "company_name is required", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/leads", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadHandler_Patch(t *testing.T) {
	s := setupTestServer(t)
	lead := s.createLead(t, "Acme", models.StageProspect, 1000)
	path := fmt.Sprintf("/api/leads/%d", lead.ID)

	t.Run("updates editable fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, `{"stage":"Won","annual_revenue":" 2500 ","id":99,"created_at":"2020-01-01"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decode[models.Lead](t, rec)
		assert.Equal(t, lead.ID, updated.ID)
		assert.Equal(t, models.StageWon, updated.Stage)
		require.NotNil(t, updated.AnnualRevenue)
		assert.Equal(t, 2500.0, *updated.AnnualRevenue)
		assert.True(t, updated.CreatedAt.Equal(lead.CreatedAt))
	})

	t.Run("no updatable fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, `{"id":5,"tags":["x"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No updatable fields", errorOf(t, rec))
	})

	t.Run("invalid value", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, `{"stage":"Maybe"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, leads.MsgStageInvalid, errorOf(t, rec))
	})

	t.Run("missing lead", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/leads/9999", `{"owner":"Teammate C"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Lead not found", errorOf(t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, path, `{"owner":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", errorOf(t, rec))
	})
}

func TestLeadHandler_Options(t *testing.T) {
	s := setupTestServer(t)
	s.createLead(t, "Acme", models.StageProspect, 1000)

	rec := s.do(t, http.MethodGet, "/api/leads/options", "")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[models.LeadOptionsResponse](t, rec)
	assert.Equal(t, models.Stages, opts.Stages)
	assert.Equal(t, models.Sources, opts.Sources)
	assert.Equal(t, []string{"Teammate A"}, opts.Owners)
}

func TestLeadHandler_UnknownRoute(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", errorOf(t, rec))
}
