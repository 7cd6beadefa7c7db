package model

import (
	"time"

	"github.com/jmartinez/canje/internal/rawpayload"
)

// Status is the posting lifecycle status (spec §3).
type Status string

const (
	StatusScraped   Status = "scraped"
	StatusQualified Status = "qualified"
	StatusSkipped   Status = "skipped"
	StatusExpired   Status = "expired"
)

// Posting is a uniquely-identifiable external job listing. Identity is
// (SourceID, ExternalID); ExternalID is either the source's own id or a
// deterministic hash over (source_id, title, company, location, date_prefix)
// computed by the adapter or the Scraper Runtime's ExternalID helper.
type Posting struct {
	ID           string
	SourceID     string
	ExternalID   string
	URL          string
	Title        string
	Company      string
	Location     string
	Description  string
	SalaryRaw    string
	ContractType string
	PostedAt     *time.Time
	IngestedAt   time.Time
	Status       Status
	ProfileTag   *string
	RawData      rawpayload.Value
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PostingDTO is the read-model projection returned to callers.
type PostingDTO struct {
	ID           string     `json:"id"`
	SourceID     string     `json:"source_id"`
	ExternalID   string     `json:"external_id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	SalaryRaw    string     `json:"salary_raw,omitempty"`
	ContractType string     `json:"contract_type,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	IngestedAt   time.Time  `json:"ingested_at"`
	Status       string     `json:"status"`
	ProfileTag   *string    `json:"profile_tag,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToDTO converts a Posting to its DTO.
func (p *Posting) ToDTO() *PostingDTO {
	return &PostingDTO{
		ID:           p.ID,
		SourceID:     p.SourceID,
		ExternalID:   p.ExternalID,
		URL:          p.URL,
		Title:        p.Title,
		Company:      p.Company,
		Location:     p.Location,
		Description:  p.Description,
		SalaryRaw:    p.SalaryRaw,
		ContractType: p.ContractType,
		PostedAt:     p.PostedAt,
		IngestedAt:   p.IngestedAt,
		Status:       string(p.Status),
		ProfileTag:   p.ProfileTag,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// RawPosting mirrors the inbound adapter contract of spec §6. The adapters
// yield their own adapters.RawPosting instead, and no code in the tree
// builds or reads this type.
type RawPosting struct {
	SourceID     string
	ExternalID   string
	URL          string
	Title        string
	Company      string
	Location     string
	Description  string
	SalaryRaw    string
	ContractType string
	PostedAt     *time.Time
	Profile      *string
	RawData      rawpayload.Value
}
