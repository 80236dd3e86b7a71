package catalog

import (
	"context"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxSlugAttempts bounds the numeric suffix search
const maxSlugAttempts = 1000

type slugChecker func(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

// uniqueSlug returns the slug of name, suffixed with -2, -3, ... until no
// other row (excluding excludeID) uses it.
func uniqueSlug(ctx context.Context, name string, exists slugChecker, excludeID *uuid.UUID) (string, error) {
	base := catalog.Slugify(name)
	if base == "" {
		return "", shared.NewFieldError("name", "Name must contain letters or digits.")
	}
	candidate := base
	for n := 2; n <= maxSlugAttempts+1; n++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", shared.ErrAlreadyExists.WithMessage("Could not allocate a unique slug.")
}
