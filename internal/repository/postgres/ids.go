package postgres

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/maxviazov/hockey-stats-service/internal/repository"
)

// parseIDs converts ids for = ANY($1) against uuid columns.
func parseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q", repository.ErrInvalidValue, id)
		}
		out = append(out, u)
	}
	return out, nil
}
