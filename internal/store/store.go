package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

// ErrLeadNotFound is returned when a lead id does not exist.
var ErrLeadNotFound = eris.New("store: lead not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status   model.LeadStatus `json:"status,omitempty"`
	MinScore float64          `json:"min_score,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for leads, custom personas,
// and the active-persona selection. It embeds persona.Repository so a
// single store backs both the lead log and persona resolution.
type Store interface {
	persona.Repository

	// Leads
	SaveLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error
	DeleteLead(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
