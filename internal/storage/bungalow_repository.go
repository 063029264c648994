package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// BungalowRepository provides data access for the bungalow/bed topology.
// The topology is static: bungalows and beds are seeded once and only
// their occupant snapshots change afterwards.
type BungalowRepository struct {
	BaseRepository
}

// NewBungalowRepository creates a new bungalow repository.
func NewBungalowRepository(db *DB) *BungalowRepository {
	return &BungalowRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const bedColumns = `
	b.bungalow_id, b.id, b.type,
	b.occupant_registration_id, b.occupant_name, b.occupant_gender,
	b.occupant_age, b.occupant_nationality, b.occupant_languages,
	b.occupant_role, b.occupant_stage_name, b.occupant_arrival,
	b.occupant_departure, b.occupant_was_forced
`

// ListBungalows retrieves all bungalows with their beds, ordered by
// village and name.
func (r *BungalowRepository) ListBungalows(ctx context.Context) ([]models.Bungalow, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, village, type, amenities, created_at, updated_at
		FROM bungalows
		ORDER BY village, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying bungalows: %w", err)
	}
	defer rows.Close()

	var bungalows []models.Bungalow
	index := make(map[string]int)
	for rows.Next() {
		var bg models.Bungalow
		var amenities string
		if err := rows.Scan(&bg.ID, &bg.Name, &bg.Village, &bg.Type, &amenities, &bg.CreatedAt, &bg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning bungalow: %w", err)
		}
		bg.Amenities = splitAmenities(amenities)
		index[bg.ID] = len(bungalows)
		bungalows = append(bungalows, bg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bedRows, err := r.DB().QueryContext(ctx, `
		SELECT `+bedColumns+`
		FROM beds b
		ORDER BY b.bungalow_id, b.position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying beds: %w", err)
	}
	defer bedRows.Close()

	for bedRows.Next() {
		var bungalowID string
		bed, err := scanBed(bedRows, &bungalowID)
		if err != nil {
			return nil, fmt.Errorf("scanning bed: %w", err)
		}
		if i, ok := index[bungalowID]; ok {
			bungalows[i].Beds = append(bungalows[i].Beds, *bed)
		}
	}

	return bungalows, bedRows.Err()
}

// GetBungalow retrieves a single bungalow with its beds. Returns nil
// when not found.
func (r *BungalowRepository) GetBungalow(ctx context.Context, id string) (*models.Bungalow, error) {
	bg := &models.Bungalow{}
	var amenities string
	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, village, type, amenities, created_at, updated_at
		FROM bungalows WHERE id = ?
	`, id).Scan(&bg.ID, &bg.Name, &bg.Village, &bg.Type, &amenities, &bg.CreatedAt, &bg.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying bungalow: %w", err)
	}
	bg.Amenities = splitAmenities(amenities)

	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bedColumns+`
		FROM beds b
		WHERE b.bungalow_id = ?
		ORDER BY b.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying beds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bungalowID string
		bed, err := scanBed(rows, &bungalowID)
		if err != nil {
			return nil, fmt.Errorf("scanning bed: %w", err)
		}
		bg.Beds = append(bg.Beds, *bed)
	}

	return bg, rows.Err()
}

// PlaceOccupant writes an occupant snapshot onto a bed. Any previous
// snapshot on the bed is replaced.
func (r *BungalowRepository) PlaceOccupant(ctx context.Context, bungalowID, bedID string, occ models.Occupant) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE beds SET
			occupant_registration_id = ?, occupant_name = ?, occupant_gender = ?,
			occupant_age = ?, occupant_nationality = ?, occupant_languages = ?,
			occupant_role = ?, occupant_stage_name = ?, occupant_arrival = ?,
			occupant_departure = ?, occupant_was_forced = ?
		WHERE bungalow_id = ? AND id = ?
	`,
		occ.RegistrationID, occ.Name, occ.Gender, occ.Age, occ.Nationality,
		occ.Languages, occ.Role, occ.StageName, occ.Arrival, occ.Departure,
		occ.WasForced, bungalowID, bedID,
	)
	if err != nil {
		return fmt.Errorf("placing occupant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("bed not found: %s/%s", bungalowID, bedID)
	}

	return nil
}

// RemoveOccupant frees a bed. Freeing an already-free bed is a no-op.
func (r *BungalowRepository) RemoveOccupant(ctx context.Context, bungalowID, bedID string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE beds SET
			occupant_registration_id = NULL, occupant_name = NULL,
			occupant_gender = NULL, occupant_age = NULL,
			occupant_nationality = NULL, occupant_languages = NULL,
			occupant_role = NULL, occupant_stage_name = NULL,
			occupant_arrival = NULL, occupant_departure = NULL,
			occupant_was_forced = 0
		WHERE bungalow_id = ? AND id = ?
	`, bungalowID, bedID)
	if err != nil {
		return fmt.Errorf("removing occupant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("bed not found: %s/%s", bungalowID, bedID)
	}

	return nil
}

// SeedTopology inserts the default village topology when the bungalows
// table is empty. Villages A and C carry six type A bungalows each;
// village B carries six type B bungalows.
func (r *BungalowRepository) SeedTopology(ctx context.Context) error {
	var count int
	if err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM bungalows").Scan(&count); err != nil {
		return fmt.Errorf("counting bungalows: %w", err)
	}
	if count > 0 {
		return nil
	}

	return r.Transaction(func(tx *sql.Tx) error {
		now := r.Now()
		for _, bg := range models.DefaultTopology() {
			if err := insertBungalow(ctx, tx, bg, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBungalow(ctx context.Context, tx *sql.Tx, bg models.Bungalow, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bungalows (id, name, village, type, amenities, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, bg.ID, bg.Name, bg.Village, bg.Type, strings.Join(bg.Amenities, ","), now, now)
	if err != nil {
		return fmt.Errorf("seeding bungalow %s: %w", bg.ID, err)
	}

	for i, bed := range bg.Beds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO beds (bungalow_id, id, position, type)
			VALUES (?, ?, ?, ?)
		`, bg.ID, bed.ID, i, bed.Type)
		if err != nil {
			return fmt.Errorf("seeding bed %s/%s: %w", bg.ID, bed.ID, err)
		}
	}

	return nil
}

func scanBed(rows *sql.Rows, bungalowID *string) (*models.Bed, error) {
	bed := &models.Bed{}
	var (
		regID, name, gender, nationality, languages, role, stageName *string
		age                                                          *int
		arrival, departure                                           *time.Time
		wasForced                                                    bool
	)
	err := rows.Scan(
		bungalowID, &bed.ID, &bed.Type,
		&regID, &name, &gender, &age, &nationality, &languages,
		&role, &stageName, &arrival, &departure, &wasForced,
	)
	if err != nil {
		return nil, err
	}

	if regID != nil {
		bed.Occupant = &models.Occupant{
			RegistrationID: *regID,
			Name:           stringValue(name),
			Gender:         stringValue(gender),
			Age:            intValue(age),
			Nationality:    stringValue(nationality),
			Languages:      stringValue(languages),
			Role:           stringValue(role),
			StageName:      stringValue(stageName),
			WasForced:      wasForced,
		}
		if arrival != nil {
			bed.Occupant.Arrival = *arrival
		}
		if departure != nil {
			bed.Occupant.Departure = *departure
		}
	}

	return bed, nil
}

func splitAmenities(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intValue(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
