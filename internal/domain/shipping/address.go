package shipping

import (
	"fmt"
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultCountry applies when an address omits the country
const DefaultCountry = "Kenya"

// Address is a customer delivery address. A user has at most one default.
type Address struct {
	shared.BaseEntity
	UserID        uuid.UUID
	FullName      string
	PhoneNumber   string
	Email         string
	Country       string
	City          string
	PostalCode    string
	StreetAddress string
	Landmark      string
	IsDefault     bool
}

// AddressDetails holds the writable fields of an address
type AddressDetails struct {
	FullName      string
	PhoneNumber   string
	Email         string
	Country       string
	City          string
	PostalCode    string
	StreetAddress string
	Landmark      string
	IsDefault     bool
}

// NewAddress creates an address owned by a user
func NewAddress(userID uuid.UUID, d AddressDetails) (*Address, error) {
	a := &Address{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if err := a.Update(d); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the writable fields
func (a *Address) Update(d AddressDetails) error {
	required := map[string]string{
		"full_name":      d.FullName,
		"phone_number":   d.PhoneNumber,
		"city":           d.City,
		"street_address": d.StreetAddress,
	}
	for _, field := range []string{"full_name", "phone_number", "city", "street_address"} {
		if strings.TrimSpace(required[field]) == "" {
			return shared.NewFieldError(field, "This field may not be blank.")
		}
	}
	if len(d.PhoneNumber) > 20 {
		return shared.NewFieldError("phone_number", "Ensure this field has no more than 20 characters.")
	}
	country := strings.TrimSpace(d.Country)
	if country == "" {
		country = DefaultCountry
	}
	a.FullName = strings.TrimSpace(d.FullName)
	a.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	a.Email = strings.TrimSpace(d.Email)
	a.Country = country
	a.City = strings.TrimSpace(d.City)
	a.PostalCode = strings.TrimSpace(d.PostalCode)
	a.StreetAddress = strings.TrimSpace(d.StreetAddress)
	a.Landmark = strings.TrimSpace(d.Landmark)
	a.IsDefault = d.IsDefault
	a.Touch()
	return nil
}

// Format renders the address as a single text block for order snapshots
func (a *Address) Format() string {
	parts := []string{a.FullName, a.StreetAddress}
	if a.Landmark != "" {
		parts = append(parts, a.Landmark)
	}
	city := a.City
	if a.PostalCode != "" {
		city = fmt.Sprintf("%s %s", a.City, a.PostalCode)
	}
	parts = append(parts, city, a.Country, a.PhoneNumber)
	return strings.Join(parts, ", ")
}
