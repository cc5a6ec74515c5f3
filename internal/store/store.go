package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusReserved    AvailabilityStatus = "reserved"
	StatusLet         AvailabilityStatus = "let"
	StatusWithdrawn   AvailabilityStatus = "withdrawn"
	StatusMaintenance AvailabilityStatus = "maintenance"
)

// FeatureFlags is the closed vocabulary of boolean property features.
// On a listing, nil means "not recorded"; on a preference, nil means
// "no preference" and only true values impose a requirement.
type FeatureFlags struct {
	Furnished       *bool `json:"furnished,omitempty"`
	PetFriendly     *bool `json:"pet_friendly,omitempty"`
	Balcony         *bool `json:"balcony,omitempty"`
	ParkingIncluded *bool `json:"parking_included,omitempty"`
	AirConditioning *bool `json:"air_conditioning,omitempty"`
}

// UtilityFlags is the closed vocabulary of utilities included in rent.
type UtilityFlags struct {
	Water       *bool `json:"water,omitempty"`
	Electricity *bool `json:"electricity,omitempty"`
	Internet    *bool `json:"internet,omitempty"`
	Heating     *bool `json:"heating,omitempty"`
}

// Listing is a rental property snapshot. The matching engine only reads
// listings; all mutation happens through the store.
type Listing struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Rent      float64   `json:"rent"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Bedrooms  int       `json:"bedrooms"`
	Bathrooms int       `json:"bathrooms"`
	SizeSqm   *float64  `json:"size_sqm,omitempty"`
	Amenities []string  `json:"amenities"`

	Features  FeatureFlags       `json:"features"`
	Utilities UtilityFlags       `json:"utilities"`
	Status    AvailabilityStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceSpec is one tenant's constraint and preference bundle.
// Immutable for the duration of a single optimization run.
type PreferenceSpec struct {
	ID                uuid.UUID `json:"id"`
	TenantName        string    `json:"tenant_name"`
	BudgetMin         float64   `json:"budget_min"`
	BudgetMax         float64   `json:"budget_max"`
	PreferredLocation string    `json:"preferred_location,omitempty"`
	RequiredAmenities []string  `json:"required_amenities,omitempty"`
	MinBedrooms       int       `json:"min_bedrooms"`
	MinBathrooms      int       `json:"min_bathrooms"`
	MaxCommuteMinutes *int      `json:"max_commute_minutes,omitempty"`

	Features  FeatureFlags `json:"features"`
	Utilities UtilityFlags `json:"utilities"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListingFilter expresses the hard-constraint prefilter the store pushes
// down to SQL: range filters on rent and rooms, a status filter, and
// substring filters on location and amenities.
type ListingFilter struct {
	MinRent          *float64
	MaxRent          *float64
	MinBedrooms      int
	MinBathrooms     int
	Status           *AvailabilityStatus
	LocationContains string
	AnyAmenity       []string
	Limit            int
}

type PreferenceFilter struct {
	MaxBudgetAtLeast *float64
	Location         string
	Limit            int
}

type Store interface {
	CreateListing(ctx context.Context, l *Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	UpdateListing(ctx context.Context, l *Listing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error

	CreatePreference(ctx context.Context, p *PreferenceSpec) error
	GetPreference(ctx context.Context, id uuid.UUID) (*PreferenceSpec, error)
	ListPreferences(ctx context.Context, filter PreferenceFilter) ([]*PreferenceSpec, error)
	UpdatePreference(ctx context.Context, p *PreferenceSpec) error
	DeletePreference(ctx context.Context, id uuid.UUID) error

	// FindCandidates is the engine-facing read path: listings passing the
	// hard-constraint prefilter, capped at filter.Limit.
	FindCandidates(ctx context.Context, filter ListingFilter) ([]*Listing, error)

	// FindRequesters backs reverse matching (best tenants for a listing).
	FindRequesters(ctx context.Context, filter PreferenceFilter) ([]*PreferenceSpec, error)

	Close() error
}

// Requested returns the names of feature flags a preference sets to true.
// A false or absent flag imposes no requirement.
func (f FeatureFlags) Requested() []string {
	var out []string
	for _, e := range []struct {
		name string
		val  *bool
	}{
		{"furnished", f.Furnished},
		{"pet_friendly", f.PetFriendly},
		{"balcony", f.Balcony},
		{"parking_included", f.ParkingIncluded},
		{"air_conditioning", f.AirConditioning},
	} {
		if e.val != nil && *e.val {
			out = append(out, e.name)
		}
	}
	return out
}

// Has reports whether the listing records the named feature as present.
func (f FeatureFlags) Has(name string) bool {
	m := map[string]*bool{
		"furnished":        f.Furnished,
		"pet_friendly":     f.PetFriendly,
		"balcony":          f.Balcony,
		"parking_included": f.ParkingIncluded,
		"air_conditioning": f.AirConditioning,
	}
	v, ok := m[name]
	return ok && v != nil && *v
}

func (u UtilityFlags) Requested() []string {
	var out []string
	for _, e := range []struct {
		name string
		val  *bool
	}{
		{"water", u.Water},
		{"electricity", u.Electricity},
		{"internet", u.Internet},
		{"heating", u.Heating},
	} {
		if e.val != nil && *e.val {
			out = append(out, e.name)
		}
	}
	return out
}

func (u UtilityFlags) Has(name string) bool {
	m := map[string]*bool{
		"water":       u.Water,
		"electricity": u.Electricity,
		"internet":    u.Internet,
		"heating":     u.Heating,
	}
	v, ok := m[name]
	return ok && v != nil && *v
}
