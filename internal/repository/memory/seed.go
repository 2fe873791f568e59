package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/visa-interview/internal/entity"
)

// ParseSeedCases reads "caseID:userID" pairs separated by commas
func ParseSeedCases(raw string) ([]entity.Case, error) {
	var cases []entity.Case
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		caseID, userID, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("%w: seed entry %q, expected caseID:userID", entity.ErrInvalidFormat, pair)
		}
		cases = append(cases, entity.Case{
			ID:     strings.TrimSpace(caseID),
			UserID: strings.TrimSpace(userID),
		})
	}
	return cases, nil
}

// Seed creates the given cases
func (s *Store) Seed(ctx context.Context, cases []entity.Case, now time.Time) error {
	for _, c := range cases {
		c.CreatedAt = now
		c.LastActivityAt = now
		if _, err := s.CreateCase(ctx, c); err != nil {
			return fmt.Errorf("seed case %s: %w", c.ID, err)
		}
	}
	return nil
}
