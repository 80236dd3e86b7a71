package marketing

import (
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/marketing"
	"github.com/google/uuid"
)

// SlideInput is the create/update payload for a hero slide
type SlideInput struct {
	Title          string
	Subtitle       string
	Description    string
	CTAText        string
	CTALink        string
	Badge          string
	BgColor        string
	OverlayColor   string
	OverlayOpacity *float64
	TextColor      string
	Align          string
	IsActive       *bool
	Order          int
	Duration       int
}

// SlideResponse represents a hero slide with absolute media URLs
type SlideResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle"`
	Description    string    `json:"description"`
	CTAText        string    `json:"cta_text"`
	CTALink        string    `json:"cta_link"`
	Badge          string    `json:"badge"`
	Image          string    `json:"image"`
	MobileImage    string    `json:"mobile_image"`
	Video          string    `json:"video"`
	BgColor        string    `json:"bg_color"`
	OverlayColor   string    `json:"overlay_color"`
	OverlayOpacity float64   `json:"overlay_opacity"`
	TextColor      string    `json:"text_color"`
	Align          string    `json:"align"`
	IsActive       bool      `json:"is_active"`
	Order          int       `json:"order"`
	Duration       int       `json:"duration"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToSlideResponse converts a domain slide
func ToSlideResponse(s *marketing.HeroSlide, storage appshared.ObjectStorage) SlideResponse {
	return SlideResponse{
		ID:             s.ID,
		Title:          s.Title,
		Subtitle:       s.Subtitle,
		Description:    s.Description,
		CTAText:        s.CTAText,
		CTALink:        s.CTALink,
		Badge:          s.Badge,
		Image:          storage.URL(s.Image),
		MobileImage:    storage.URL(s.MobileImage),
		Video:          storage.URL(s.Video),
		BgColor:        s.BgColor,
		OverlayColor:   s.OverlayColor,
		OverlayOpacity: s.OverlayOpacity,
		TextColor:      s.TextColor,
		Align:          string(s.Align),
		IsActive:       s.IsActive,
		Order:          s.Order,
		Duration:       s.Duration,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (in SlideInput) details(activeDefault bool) marketing.SlideDetails {
	active := activeDefault
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return marketing.SlideDetails{
		Title:          in.Title,
		Subtitle:       in.Subtitle,
		Description:    in.Description,
		CTAText:        in.CTAText,
		CTALink:        in.CTALink,
		Badge:          in.Badge,
		BgColor:        in.BgColor,
		OverlayColor:   in.OverlayColor,
		OverlayOpacity: in.OverlayOpacity,
		TextColor:      in.TextColor,
		Align:          marketing.Align(in.Align),
		IsActive:       active,
		Order:          in.Order,
		Duration:       in.Duration,
	}
}
