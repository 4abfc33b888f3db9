package models

import (
	"time"
)

// Lead stages, in pipeline order
const (
	StageProspect  = "Prospect"
	StageQualified = "Qualified"
	StageProposal  = "Proposal"
	StageWon       = "Won"
	StageLost      = "Lost"
)

// Lead sources
const (
	SourceReferral = "Referral"
	SourceAds      = "Ads"
	SourceEvents   = "Events"
	SourceOutbound = "Outbound"
	SourceOrganic  = "Organic"
)

// Stages lists every valid lead stage
var Stages = []string{StageProspect, StageQualified, StageProposal, StageWon, StageLost}

// Sources lists every valid lead source
var Sources = []string{SourceReferral, SourceAds, SourceEvents, SourceOutbound, SourceOrganic}

// Lead is a single CRM lead row
type Lead struct {
	ID             int       `json:"id"`
	CompanyName    string    `json:"company_name"`
	ContactName    string    `json:"contact_name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	Country        *string   `json:"country"`
	Stage          string    `json:"stage"`
	Source         string    `json:"source"`
	Owner          string    `json:"owner"`
	AnnualRevenue  *float64  `json:"annual_revenue"`
	NextActionDate NullDate  `json:"next_action_date"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeadListRequest represents the query string of GET /api/leads. Paging
// values stay raw so malformed numbers fall back to defaults instead of
// failing the bind.
type LeadListRequest struct {
	Page     string `query:"page"`
	PageSize string `query:"pageSize"`
	Sort     string `query:"sort"`
	Dir      string `query:"dir"`
	Filters  string `query:"filters"`
}

// LeadListResponse is one page of leads plus the unpaginated match count
type LeadListResponse struct {
	Rows  []Lead `json:"rows"`
	Total int    `json:"total"`
}

// CreateLeadRequest represents the body of POST /api/leads
type CreateLeadRequest struct {
	CompanyName    string   `json:"company_name" validate:"required,max=255"`
	ContactName    string   `json:"contact_name" validate:"required,max=255"`
	Email          string   `json:"email" validate:"required,max=255"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=64"`
	Country        *string  `json:"country,omitempty" validate:"omitempty,max=128"`
	Stage          string   `json:"stage" validate:"required,oneof=Prospect Qualified Proposal Won Lost"`
	Source         string   `json:"source" validate:"required,oneof=Referral Ads Events Outbound Organic"`
	Owner          string   `json:"owner" validate:"required,max=128"`
	AnnualRevenue  *float64 `json:"annual_revenue,omitempty"`
	NextActionDate *string  `json:"next_action_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes          *string  `json:"notes,omitempty"`
}

// LeadOptionsResponse lists the values the grid offers for select fields
type LeadOptionsResponse struct {
	Stages    []string `json:"stages"`
	Sources   []string `json:"sources"`
	Owners    []string `json:"owners"`
	Countries []string `json:"countries"`
}
