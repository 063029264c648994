package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// StageRepository provides data access for stages.
type StageRepository struct {
	BaseRepository
}

// NewStageRepository creates a new stage repository.
func NewStageRepository(db *DB) *StageRepository {
	return &StageRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const stageColumns = `
	s.id, s.name, s.type, s.start_date, s.end_date, s.capacity,
	(SELECT COUNT(*) FROM registrations r WHERE r.stage_id = s.id),
	s.encadrants, s.musician_count, s.constraints_note, s.created_at, s.updated_at
`

// CreateStage inserts a new stage.
func (r *StageRepository) CreateStage(ctx context.Context, stage *models.Stage) error {
	if stage.ID == "" {
		stage.ID = GenerateID()
	}
	stage.CreatedAt = r.Now()
	stage.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO stages (
			id, name, type, start_date, end_date, capacity,
			encadrants, musician_count, constraints_note, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		stage.ID, stage.Name, stage.Type, stage.StartDate, stage.EndDate,
		stage.Capacity, stage.Encadrants, stage.MusicianCount, stage.Constraints,
		stage.CreatedAt, stage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting stage: %w", err)
	}

	return nil
}

// GetStage retrieves a stage by its ID. Returns nil when not found.
func (r *StageRepository) GetStage(ctx context.Context, id string) (*models.Stage, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+stageColumns+`
		FROM stages s WHERE s.id = ?
	`, id)

	stage, err := scanStage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying stage: %w", err)
	}

	return stage, nil
}

// ListStages retrieves all stages ordered by start date.
func (r *StageRepository) ListStages(ctx context.Context) ([]models.Stage, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+stageColumns+`
		FROM stages s
		ORDER BY s.start_date, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stages: %w", err)
	}
	defer rows.Close()

	return scanStages(rows)
}

// ListUpcomingStages retrieves stages that have not ended before the
// given time, ordered by start date.
func (r *StageRepository) ListUpcomingStages(ctx context.Context, from time.Time) ([]models.Stage, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+stageColumns+`
		FROM stages s
		WHERE s.end_date >= ?
		ORDER BY s.start_date, s.id
	`, from)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming stages: %w", err)
	}
	defer rows.Close()

	return scanStages(rows)
}

// UpdateStage updates an existing stage.
func (r *StageRepository) UpdateStage(ctx context.Context, stage *models.Stage) error {
	stage.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE stages SET
			name = ?, type = ?, start_date = ?, end_date = ?, capacity = ?,
			encadrants = ?, musician_count = ?, constraints_note = ?, updated_at = ?
		WHERE id = ?
	`,
		stage.Name, stage.Type, stage.StartDate, stage.EndDate, stage.Capacity,
		stage.Encadrants, stage.MusicianCount, stage.Constraints, stage.UpdatedAt,
		stage.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stage not found: %s", stage.ID)
	}

	return nil
}

// DeleteStage removes a stage and, via the foreign key cascade, its
// registrations.
func (r *StageRepository) DeleteStage(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM stages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting stage: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stage not found: %s", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStage(row rowScanner) (*models.Stage, error) {
	stage := &models.Stage{}
	err := row.Scan(
		&stage.ID, &stage.Name, &stage.Type, &stage.StartDate, &stage.EndDate,
		&stage.Capacity, &stage.ParticipantCount, &stage.Encadrants,
		&stage.MusicianCount, &stage.Constraints, &stage.CreatedAt, &stage.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return stage, nil
}

func scanStages(rows *sql.Rows) ([]models.Stage, error) {
	var stages []models.Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		stages = append(stages, *stage)
	}
	return stages, rows.Err()
}
