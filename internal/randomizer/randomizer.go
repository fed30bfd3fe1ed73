// Package randomizer declares the seed-provider collaborator. The gateway
// signals it once after every successful mint and never waits for, retries,
// or validates seed delivery; issuance accounting is correct regardless of
// seed arrival order.
package randomizer

import (
	"context"
	"log/slog"

	"mintgate/pkg/domain"
)

// SeedRequester is notified after each successful mint.
type SeedRequester interface {
	RequestSeed(ctx context.Context, projectID domain.ProjectID, tokenID domain.TokenID)
}

// LogRequester is the default implementation: it records the request and
// nothing else. Deployments wire a real provider adapter here.
type LogRequester struct {
	logger *slog.Logger
}

func NewLogRequester(logger *slog.Logger) *LogRequester {
	return &LogRequester{logger: logger}
}

func (r *LogRequester) RequestSeed(ctx context.Context, projectID domain.ProjectID, tokenID domain.TokenID) {
	r.logger.InfoContext(ctx, "seed requested",
		"project_id", projectID,
		"token_id", tokenID,
	)
}
