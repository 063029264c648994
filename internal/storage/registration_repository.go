package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// RegistrationRepository provides data access for registrations.
// Every read joins the parent stage so callers can resolve the
// registration's effective presence interval.
type RegistrationRepository struct {
	BaseRepository
}

// NewRegistrationRepository creates a new registration repository.
func NewRegistrationRepository(db *DB) *RegistrationRepository {
	return &RegistrationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const registrationColumns = `
	r.id, r.stage_id, s.name, s.start_date, s.end_date,
	r.participant_name, r.gender, r.age, r.nationality, r.languages, r.role,
	r.arrival_date, r.departure_date,
	r.assigned_bungalow_id, r.assigned_bed_id, r.was_forced,
	r.created_at, r.updated_at
`

// CreateRegistration inserts a new registration.
func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = GenerateID()
	}
	reg.CreatedAt = r.Now()
	reg.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO registrations (
			id, stage_id, participant_name, gender, age, nationality, languages,
			role, arrival_date, departure_date, assigned_bungalow_id,
			assigned_bed_id, was_forced, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		reg.ID, reg.StageID, reg.ParticipantName, reg.Gender, reg.Age,
		reg.Nationality, reg.Languages, reg.Role, reg.ArrivalDate,
		reg.DepartureDate, reg.AssignedBungalowID, reg.AssignedBedID,
		reg.WasForced, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting registration: %w", err)
	}

	return nil
}

// GetRegistration retrieves a registration by its ID. Returns nil when
// not found.
func (r *RegistrationRepository) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations r
		JOIN stages s ON s.id = r.stage_id
		WHERE r.id = ?
	`, id)

	reg, err := scanRegistration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying registration: %w", err)
	}

	return reg, nil
}

// ListRegistrations retrieves registrations matching the filter,
// ordered by registration ID for deterministic processing.
func (r *RegistrationRepository) ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r
		JOIN stages s ON s.id = r.stage_id
		WHERE 1=1
	`
	var args []any

	if filter.StageID != "" {
		query += " AND r.stage_id = ?"
		args = append(args, filter.StageID)
	}
	if filter.UnassignedOnly {
		query += " AND r.assigned_bed_id IS NULL"
	}

	query += " ORDER BY r.id"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying registrations: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

// UpdateRegistration updates a registration's participant and presence
// fields. Assignment state is only changed through AssignBed and
// ClearAssignment.
func (r *RegistrationRepository) UpdateRegistration(ctx context.Context, reg *models.Registration) error {
	reg.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE registrations SET
			stage_id = ?, participant_name = ?, gender = ?, age = ?,
			nationality = ?, languages = ?, role = ?,
			arrival_date = ?, departure_date = ?, updated_at = ?
		WHERE id = ?
	`,
		reg.StageID, reg.ParticipantName, reg.Gender, reg.Age, reg.Nationality,
		reg.Languages, reg.Role, reg.ArrivalDate, reg.DepartureDate,
		reg.UpdatedAt, reg.ID,
	)
	if err != nil {
		return fmt.Errorf("updating registration: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("registration not found: %s", reg.ID)
	}

	return nil
}

// DeleteRegistration removes a registration by ID.
func (r *RegistrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM registrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("registration not found: %s", id)
	}

	return nil
}

// AssignBed records the registration's side of a committed assignment.
func (r *RegistrationRepository) AssignBed(ctx context.Context, regID, bungalowID, bedID string, forced bool) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE registrations SET
			assigned_bungalow_id = ?, assigned_bed_id = ?, was_forced = ?, updated_at = ?
		WHERE id = ?
	`, bungalowID, bedID, forced, r.Now(), regID)
	if err != nil {
		return fmt.Errorf("assigning bed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("registration not found: %s", regID)
	}

	return nil
}

// ClearAssignment resets the registration to unassigned. Clearing an
// already-unassigned registration is a no-op.
func (r *RegistrationRepository) ClearAssignment(ctx context.Context, regID string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE registrations SET
			assigned_bungalow_id = NULL, assigned_bed_id = NULL, was_forced = 0, updated_at = ?
		WHERE id = ?
	`, r.Now(), regID)
	if err != nil {
		return fmt.Errorf("clearing assignment: %w", err)
	}

	return nil
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	reg := &models.Registration{}
	err := row.Scan(
		&reg.ID, &reg.StageID, &reg.StageName, &reg.StageStart, &reg.StageEnd,
		&reg.ParticipantName, &reg.Gender, &reg.Age, &reg.Nationality,
		&reg.Languages, &reg.Role, &reg.ArrivalDate, &reg.DepartureDate,
		&reg.AssignedBungalowID, &reg.AssignedBedID, &reg.WasForced,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func scanRegistrations(rows *sql.Rows) ([]models.Registration, error) {
	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}
