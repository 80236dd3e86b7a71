package marketing

import (
	"context"

	"github.com/google/uuid"
)

// HeroSlideRepository defines the interface for slide persistence
type HeroSlideRepository interface {
	// FindByID returns the slide; with activeOnly, inactive slides are not found
	FindByID(ctx context.Context, id uuid.UUID, activeOnly bool) (*HeroSlide, error)
	// FindAll returns slides ordered by display order, then creation time
	FindAll(ctx context.Context, activeOnly bool) ([]HeroSlide, error)
	Save(ctx context.Context, slide *HeroSlide) error
	Delete(ctx context.Context, id uuid.UUID) error
}
