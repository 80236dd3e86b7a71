package catalog

import (
	"net/url"
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
)

// HeroBanner is a promotional banner shown on the storefront
type HeroBanner struct {
	shared.BaseAggregateRoot
	Title        string `gorm:"type:varchar(255);not null"`
	Subtitle     string `gorm:"type:varchar(255)"`
	Image        string `gorm:"type:varchar(500);not null"`
	CTAText      string `gorm:"column:cta_text;type:varchar(50)"`
	CTALink      string `gorm:"column:cta_link;type:varchar(500)"`
	IsActive     bool   `gorm:"not null"`
	DisplayOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (HeroBanner) TableName() string {
	return "hero_banners"
}

// HeroBannerDetails holds the writable fields of a banner
type HeroBannerDetails struct {
	Title        string
	Subtitle     string
	Image        string
	CTAText      string
	CTALink      string
	IsActive     bool
	DisplayOrder int
}

// NewHeroBanner creates a banner
func NewHeroBanner(d HeroBannerDetails) (*HeroBanner, error) {
	b := &HeroBanner{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := b.apply(d); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the writable fields
func (b *HeroBanner) Update(d HeroBannerDetails) error {
	if err := b.apply(d); err != nil {
		return err
	}
	b.Touch()
	return nil
}

func (b *HeroBanner) apply(d HeroBannerDetails) error {
	title := strings.TrimSpace(d.Title)
	if err := validateName("title", title, 255); err != nil {
		return err
	}
	if strings.TrimSpace(d.Image) == "" {
		return shared.NewFieldError("image", "No file was submitted.")
	}
	if len(d.CTAText) > 50 {
		return shared.NewFieldError("cta_text", "Ensure this field has no more than 50 characters.")
	}
	if d.CTALink != "" {
		if u, err := url.ParseRequestURI(d.CTALink); err != nil || u.Host == "" {
			return shared.NewFieldError("cta_link", "Enter a valid URL.")
		}
	}
	if d.DisplayOrder < 0 {
		return shared.NewFieldError("display_order", "Ensure this value is greater than or equal to 0.")
	}
	b.Title = title
	b.Subtitle = d.Subtitle
	b.Image = d.Image
	b.CTAText = d.CTAText
	b.CTALink = d.CTALink
	b.IsActive = d.IsActive
	b.DisplayOrder = d.DisplayOrder
	return nil
}
