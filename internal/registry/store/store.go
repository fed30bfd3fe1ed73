// Package store persists project issuance state. Stores are pure I/O plus
// lock discipline; all domain decisions live in the model and the dispatcher.
package store

import (
	"context"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
)

// ProjectStore is the storage contract for project aggregates.
//
// Execute runs validate and then mutate against the stored project while
// holding the store's exclusive lock (mutex in memory, SELECT ... FOR UPDATE
// in postgres). If validate returns an error the stored state is untouched
// and the error is returned. This is the only path that may change
// Invocations.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	Execute(ctx context.Context, id domain.ProjectID,
		validate func(*models.Project) error,
		mutate func(*models.Project)) (*models.Project, error)
}
