// Package store persists directory and marketplace records behind a single
// interface with SQLite and PostgreSQL implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/captiveadvisors/directory/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when an insert collides with a unique constraint.
// Ingestion treats it as a skip, not a failure.
var ErrDuplicate = errors.New("store: duplicate")

// ErrInvalidTransition is returned when a vehicle status change is not
// allowed from its current state.
var ErrInvalidTransition = errors.New("store: invalid status transition")

// AdvisorFilter specifies criteria for listing advisors.
type AdvisorFilter struct {
	// Query matches against advisor and firm names (substring,
	// case-insensitive).
	Query       string `json:"q,omitempty"`
	State       string `json:"state,omitempty"`
	City        string `json:"city,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Designation string `json:"designation,omitempty"`
	Verified    *bool  `json:"verified,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	SourceType model.LeadSourceType `json:"source_type,omitempty"`
	Unsynced   bool                 `json:"unsynced,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
	Offset     int                  `json:"offset,omitempty"`
}

// BlogFilter specifies criteria for listing blog posts.
type BlogFilter struct {
	Category      model.BlogCategory `json:"category,omitempty"`
	PublishedOnly bool               `json:"published_only,omitempty"`
	Limit         int                `json:"limit,omitempty"`
	Offset        int                `json:"offset,omitempty"`
}

// VehicleFilter specifies criteria for listing vehicles.
type VehicleFilter struct {
	DealerID string              `json:"dealer_id,omitempty"`
	Status   model.VehicleStatus `json:"status,omitempty"`
	Limit    int                 `json:"limit,omitempty"`
	Offset   int                 `json:"offset,omitempty"`
}

// OfferFilter specifies criteria for listing offers.
type OfferFilter struct {
	VehicleID string            `json:"vehicle_id,omitempty"`
	Status    model.OfferStatus `json:"status,omitempty"`
	Limit     int               `json:"limit,omitempty"`
	Offset    int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the directory and marketplace.
type Store interface {
	// Advisors
	CreateAdvisor(ctx context.Context, a *model.Advisor) error
	GetAdvisor(ctx context.Context, id string) (*model.Advisor, error)
	GetAdvisorBySlug(ctx context.Context, slug string) (*model.Advisor, error)
	ListAdvisors(ctx context.Context, filter AdvisorFilter) ([]model.Advisor, error)
	UpdateAdvisor(ctx context.Context, a *model.Advisor) error
	DeleteAdvisor(ctx context.Context, id string) error
	// AdvisorExists reports whether an advisor with the given slug, or a
	// non-empty matching website, is already stored. Used for dedup before
	// the rewrite step.
	AdvisorExists(ctx context.Context, slug, website string) (bool, error)

	// Leads (append-only)
	CreateLead(ctx context.Context, l *model.Lead) error
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	MarkLeadSynced(ctx context.Context, id string, at time.Time) error

	// Blog
	CreateBlogPost(ctx context.Context, p *model.BlogPost) error
	GetBlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	ListBlogPosts(ctx context.Context, filter BlogFilter) ([]model.BlogPost, error)
	UpdateBlogPost(ctx context.Context, p *model.BlogPost) error
	DeleteBlogPost(ctx context.Context, id string) error

	// Marketplace
	CreateDealer(ctx context.Context, d *model.Dealer) error
	GetDealer(ctx context.Context, id string) (*model.Dealer, error)
	ListDealers(ctx context.Context) ([]model.Dealer, error)
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error)
	// UpdateVehicleStatus enforces the listing lifecycle. Reverting a sold
	// vehicle to active cancels its open transaction.
	UpdateVehicleStatus(ctx context.Context, id string, to model.VehicleStatus) error
	CreateBuyCode(ctx context.Context, bc *model.BuyCode) error
	// RedeemBuyCode validates a code, records a transaction and marks the
	// vehicle sold, atomically.
	RedeemBuyCode(ctx context.Context, code, buyerName, buyerEmail string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, vehicleID string) ([]model.Transaction, error)
	CreateOffer(ctx context.Context, o *model.Offer) error
	ListOffers(ctx context.Context, filter OfferFilter) ([]model.Offer, error)
	// UpdateOfferStatus changes an offer's status and appends an activity
	// entry recording the change.
	UpdateOfferStatus(ctx context.Context, id string, status model.OfferStatus, note string) error
	ListOfferActivity(ctx context.Context, offerID string) ([]model.OfferActivity, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
