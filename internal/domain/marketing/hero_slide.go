package marketing

import (
	"net/url"
	"strings"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Align positions slide text
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// IsValid reports whether a is a known alignment
func (a Align) IsValid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// MediaKind names one of the slide media slots
type MediaKind string

const (
	MediaImage       MediaKind = "image"
	MediaMobileImage MediaKind = "mobile_image"
	MediaVideo       MediaKind = "video"
)

// IsValid reports whether k is a known media slot
func (k MediaKind) IsValid() bool {
	return k == MediaImage || k == MediaMobileImage || k == MediaVideo
}

// Slide defaults
const (
	DefaultCTAText        = "Shop Now"
	DefaultBgColor        = "from-blue-600 to-purple-600"
	DefaultOverlayColor   = "black"
	DefaultOverlayOpacity = 0.4
	DefaultTextColor      = "white"
	DefaultDuration       = 5000
)

// ErrSlideNotFound is returned when a slide does not exist or is hidden
var ErrSlideNotFound = shared.ErrNotFound.WithMessage("Hero slide not found")

// HeroSlide is a rotating storefront hero
type HeroSlide struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Subtitle    string    `gorm:"type:varchar(300)"`
	Description string    `gorm:"type:text"`

	CTAText string `gorm:"column:cta_text;type:varchar(50);not null"`
	CTALink string `gorm:"column:cta_link;type:varchar(500)"`
	Badge   string `gorm:"type:varchar(50)"`

	Image       string `gorm:"type:varchar(500)"`
	MobileImage string `gorm:"type:varchar(500)"`
	Video       string `gorm:"type:varchar(500)"`

	BgColor        string  `gorm:"type:varchar(100);not null"`
	OverlayColor   string  `gorm:"type:varchar(50);not null"`
	OverlayOpacity float64 `gorm:"type:decimal(3,2);not null"`
	TextColor      string  `gorm:"type:varchar(50);not null"`
	Align          Align   `gorm:"type:varchar(10);not null"`

	IsActive  bool `gorm:"not null;index"`
	Order     int  `gorm:"column:display_order;not null;default:0"`
	Duration  int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (HeroSlide) TableName() string {
	return "hero_slides"
}

// SlideDetails holds the writable fields of a slide. Zero values take defaults.
type SlideDetails struct {
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
	Align          Align
	IsActive       bool
	Order          int
	Duration       int
}

// NewHeroSlide creates a slide
func NewHeroSlide(d SlideDetails) (*HeroSlide, error) {
	now := time.Now()
	s := &HeroSlide{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	if err := s.Update(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the writable fields
func (s *HeroSlide) Update(d SlideDetails) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewFieldError("title", "This field may not be blank.")
	}
	if len(title) > 200 {
		return shared.NewFieldError("title", "Ensure this field has no more than 200 characters.")
	}
	if d.CTALink != "" && !validLink(d.CTALink) {
		return shared.NewFieldError("cta_link", "Enter a valid URL.")
	}
	opacity := DefaultOverlayOpacity
	if d.OverlayOpacity != nil {
		opacity = *d.OverlayOpacity
	}
	if opacity < 0 || opacity > 1 {
		return shared.NewFieldError("overlay_opacity", "Ensure this value is between 0 and 1.")
	}
	align := d.Align
	if align == "" {
		align = AlignLeft
	}
	if !align.IsValid() {
		return shared.NewFieldError("align", "\""+string(align)+"\" is not a valid choice.")
	}
	if d.Order < 0 {
		return shared.NewFieldError("order", "Ensure this value is greater than or equal to 0.")
	}
	if d.Duration < 0 {
		return shared.NewFieldError("duration", "Ensure this value is greater than or equal to 0.")
	}

	s.Title = title
	s.Subtitle = strings.TrimSpace(d.Subtitle)
	s.Description = d.Description
	s.CTAText = orDefault(d.CTAText, DefaultCTAText)
	s.CTALink = d.CTALink
	s.Badge = d.Badge
	s.BgColor = orDefault(d.BgColor, DefaultBgColor)
	s.OverlayColor = orDefault(d.OverlayColor, DefaultOverlayColor)
	s.OverlayOpacity = opacity
	s.TextColor = orDefault(d.TextColor, DefaultTextColor)
	s.Align = align
	s.IsActive = d.IsActive
	s.Order = d.Order
	s.Duration = d.Duration
	if s.Duration == 0 {
		s.Duration = DefaultDuration
	}
	s.UpdatedAt = time.Now()
	return nil
}

// SetMedia stores a storage key in the given slot and returns the key it replaced
func (s *HeroSlide) SetMedia(kind MediaKind, key string) (string, error) {
	var slot *string
	switch kind {
	case MediaImage:
		slot = &s.Image
	case MediaMobileImage:
		slot = &s.MobileImage
	case MediaVideo:
		slot = &s.Video
	default:
		return "", shared.NewFieldError("kind", "\""+string(kind)+"\" is not a valid choice.")
	}
	old := *slot
	*slot = key
	s.UpdatedAt = time.Now()
	return old, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// validLink accepts absolute http(s) URLs and site-relative paths
func validLink(link string) bool {
	if strings.HasPrefix(link, "/") {
		return !strings.HasPrefix(link, "//")
	}
	u, err := url.ParseRequestURI(link)
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}
