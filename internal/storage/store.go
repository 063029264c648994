package storage

import (
	"context"
	"time"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// RegistrationFilter narrows a registration listing.
type RegistrationFilter struct {
	StageID        string
	UnassignedOnly bool
}

// Store is the full data-access surface consumed by the assignment
// engine and the API layer. It is implemented by the SQLite-backed
// SQLStore and by the in-memory fixture store; which one runs is a
// configuration choice made in main.
type Store interface {
	// Stages
	CreateStage(ctx context.Context, stage *models.Stage) error
	GetStage(ctx context.Context, id string) (*models.Stage, error)
	ListStages(ctx context.Context) ([]models.Stage, error)
	ListUpcomingStages(ctx context.Context, from time.Time) ([]models.Stage, error)
	UpdateStage(ctx context.Context, stage *models.Stage) error
	DeleteStage(ctx context.Context, id string) error

	// Registrations
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	GetRegistration(ctx context.Context, id string) (*models.Registration, error)
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]models.Registration, error)
	UpdateRegistration(ctx context.Context, reg *models.Registration) error
	DeleteRegistration(ctx context.Context, id string) error
	AssignBed(ctx context.Context, regID, bungalowID, bedID string, forced bool) error
	ClearAssignment(ctx context.Context, regID string) error

	// Bungalows and beds
	ListBungalows(ctx context.Context) ([]models.Bungalow, error)
	GetBungalow(ctx context.Context, id string) (*models.Bungalow, error)
	PlaceOccupant(ctx context.Context, bungalowID, bedID string, occ models.Occupant) error
	RemoveOccupant(ctx context.Context, bungalowID, bedID string) error
}

// SQLStore bundles the SQLite repositories into a single Store.
type SQLStore struct {
	*StageRepository
	*RegistrationRepository
	*BungalowRepository
}

// NewSQLStore creates the SQLite-backed store over an open database.
func NewSQLStore(db *DB) *SQLStore {
	return &SQLStore{
		StageRepository:        NewStageRepository(db),
		RegistrationRepository: NewRegistrationRepository(db),
		BungalowRepository:     NewBungalowRepository(db),
	}
}

var _ Store = (*SQLStore)(nil)
