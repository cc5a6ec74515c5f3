package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const listingColumns = `id, title, rent, address, city, bedrooms, bathrooms, size_sqm,
	amenities, features, utilities, status, created_at, updated_at`

func (s *PostgresStore) CreateListing(ctx context.Context, l *Listing) error {
	featuresJSON, _ := json.Marshal(l.Features)
	utilitiesJSON, _ := json.Marshal(l.Utilities)

	return s.pool.QueryRow(ctx, `
		INSERT INTO listings (title, rent, address, city, bedrooms, bathrooms, size_sqm,
			amenities, features, utilities, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		l.Title, l.Rent, l.Address, l.City, l.Bedrooms, l.Bathrooms, l.SizeSqm,
		l.Amenities, featuresJSON, utilitiesJSON, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (s *PostgresStore) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanListing(rows)
}

func scanListing(rows pgx.Rows) (*Listing, error) {
	l := &Listing{}
	var featuresJSON, utilitiesJSON []byte
	err := rows.Scan(
		&l.ID, &l.Title, &l.Rent, &l.Address, &l.City, &l.Bedrooms, &l.Bathrooms, &l.SizeSqm,
		&l.Amenities, &featuresJSON, &utilitiesJSON, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if featuresJSON != nil {
		_ = json.Unmarshal(featuresJSON, &l.Features)
	}
	if utilitiesJSON != nil {
		_ = json.Unmarshal(utilitiesJSON, &l.Utilities)
	}
	return l, nil
}

func (s *PostgresStore) ListListings(ctx context.Context, filter ListingFilter) ([]*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.MinRent != nil {
		n++
		query += fmt.Sprintf(" AND rent >= $%d", n)
		args = append(args, *filter.MinRent)
	}
	if filter.MaxRent != nil {
		n++
		query += fmt.Sprintf(" AND rent <= $%d", n)
		args = append(args, *filter.MaxRent)
	}
	if filter.MinBedrooms > 0 {
		n++
		query += fmt.Sprintf(" AND bedrooms >= $%d", n)
		args = append(args, filter.MinBedrooms)
	}
	if filter.MinBathrooms > 0 {
		n++
		query += fmt.Sprintf(" AND bathrooms >= $%d", n)
		args = append(args, filter.MinBathrooms)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.LocationContains != "" {
		n++
		query += fmt.Sprintf(" AND (city ILIKE $%d OR address ILIKE $%d)", n, n)
		args = append(args, "%"+filter.LocationContains+"%")
	}
	if len(filter.AnyAmenity) > 0 {
		// Overlap, not containment: one shared amenity is enough to pass
		// the hard filter, degree of match is scored downstream.
		n++
		query += fmt.Sprintf(" AND amenities && $%d", n)
		args = append(args, filter.AnyAmenity)
	}

	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateListing(ctx context.Context, l *Listing) error {
	featuresJSON, _ := json.Marshal(l.Features)
	utilitiesJSON, _ := json.Marshal(l.Utilities)

	_, err := s.pool.Exec(ctx, `
		UPDATE listings SET title = $2, rent = $3, address = $4, city = $5,
			bedrooms = $6, bathrooms = $7, size_sqm = $8, amenities = $9,
			features = $10, utilities = $11, status = $12, updated_at = now()
		WHERE id = $1`,
		l.ID, l.Title, l.Rent, l.Address, l.City, l.Bedrooms, l.Bathrooms, l.SizeSqm,
		l.Amenities, featuresJSON, utilitiesJSON, l.Status,
	)
	return err
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	return err
}

const preferenceColumns = `id, tenant_name, budget_min, budget_max, preferred_location,
	required_amenities, min_bedrooms, min_bathrooms, max_commute_minutes,
	features, utilities, created_at, updated_at`

func (s *PostgresStore) CreatePreference(ctx context.Context, p *PreferenceSpec) error {
	featuresJSON, _ := json.Marshal(p.Features)
	utilitiesJSON, _ := json.Marshal(p.Utilities)

	return s.pool.QueryRow(ctx, `
		INSERT INTO preferences (tenant_name, budget_min, budget_max, preferred_location,
			required_amenities, min_bedrooms, min_bathrooms, max_commute_minutes,
			features, utilities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		p.TenantName, p.BudgetMin, p.BudgetMax, p.PreferredLocation,
		p.RequiredAmenities, p.MinBedrooms, p.MinBathrooms, p.MaxCommuteMinutes,
		featuresJSON, utilitiesJSON,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PostgresStore) GetPreference(ctx context.Context, id uuid.UUID) (*PreferenceSpec, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+preferenceColumns+` FROM preferences WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPreference(rows)
}

func scanPreference(rows pgx.Rows) (*PreferenceSpec, error) {
	p := &PreferenceSpec{}
	var featuresJSON, utilitiesJSON []byte
	err := rows.Scan(
		&p.ID, &p.TenantName, &p.BudgetMin, &p.BudgetMax, &p.PreferredLocation,
		&p.RequiredAmenities, &p.MinBedrooms, &p.MinBathrooms, &p.MaxCommuteMinutes,
		&featuresJSON, &utilitiesJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if featuresJSON != nil {
		_ = json.Unmarshal(featuresJSON, &p.Features)
	}
	if utilitiesJSON != nil {
		_ = json.Unmarshal(utilitiesJSON, &p.Utilities)
	}
	return p, nil
}

func (s *PostgresStore) ListPreferences(ctx context.Context, filter PreferenceFilter) ([]*PreferenceSpec, error) {
	query := `SELECT ` + preferenceColumns + ` FROM preferences WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.MaxBudgetAtLeast != nil {
		n++
		query += fmt.Sprintf(" AND budget_max >= $%d", n)
		args = append(args, *filter.MaxBudgetAtLeast)
	}
	if filter.Location != "" {
		n++
		query += fmt.Sprintf(" AND preferred_location ILIKE $%d", n)
		args = append(args, "%"+filter.Location+"%")
	}

	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PreferenceSpec
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdatePreference(ctx context.Context, p *PreferenceSpec) error {
	featuresJSON, _ := json.Marshal(p.Features)
	utilitiesJSON, _ := json.Marshal(p.Utilities)

	_, err := s.pool.Exec(ctx, `
		UPDATE preferences SET tenant_name = $2, budget_min = $3, budget_max = $4,
			preferred_location = $5, required_amenities = $6, min_bedrooms = $7,
			min_bathrooms = $8, max_commute_minutes = $9, features = $10,
			utilities = $11, updated_at = now()
		WHERE id = $1`,
		p.ID, p.TenantName, p.BudgetMin, p.BudgetMax, p.PreferredLocation,
		p.RequiredAmenities, p.MinBedrooms, p.MinBathrooms, p.MaxCommuteMinutes,
		featuresJSON, utilitiesJSON,
	)
	return err
}

func (s *PostgresStore) DeletePreference(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM preferences WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) FindCandidates(ctx context.Context, filter ListingFilter) ([]*Listing, error) {
	return s.ListListings(ctx, filter)
}

func (s *PostgresStore) FindRequesters(ctx context.Context, filter PreferenceFilter) ([]*PreferenceSpec, error) {
	return s.ListPreferences(ctx, filter)
}
