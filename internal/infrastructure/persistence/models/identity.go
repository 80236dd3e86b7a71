package models

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email        string        `gorm:"type:varchar(254);not null;uniqueIndex"`
	FullName     string        `gorm:"type:varchar(255);not null"`
	Phone        string        `gorm:"type:varchar(20)"`
	Address      string        `gorm:"type:text"`
	City         string        `gorm:"type:varchar(100)"`
	PostalCode   string        `gorm:"type:varchar(20)"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'customer';index"`
	IsActive     bool          `gorm:"not null"`
	IsStaff      bool          `gorm:"not null;default:false"`
	IsSuperuser  bool          `gorm:"not null;default:false"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.Root(),
		Email:             m.Email,
		FullName:          m.FullName,
		Phone:             m.Phone,
		Address:           m.Address,
		City:              m.City,
		PostalCode:        m.PostalCode,
		Role:              m.Role,
		IsActive:          m.IsActive,
		IsStaff:           m.IsStaff,
		IsSuperuser:       m.IsSuperuser,
		PasswordHash:      m.PasswordHash,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.SetRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.FullName = u.FullName
	m.Phone = u.Phone
	m.Address = u.Address
	m.City = u.City
	m.PostalCode = u.PostalCode
	m.Role = u.Role
	m.IsActive = u.IsActive
	m.IsStaff = u.IsStaff
	m.IsSuperuser = u.IsSuperuser
	m.PasswordHash = u.PasswordHash
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
