// Package models contains GORM persistence models for aggregates whose domain
// types stay free of ORM tags: users, carts and coupons, orders, shipping,
// and payments. Each model maps to one table and converts to and from its
// domain type with ToDomain / ...FromDomain.
//
// Catalog and marketing entities carry their own GORM tags and are persisted
// directly.
package models
