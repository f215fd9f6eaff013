// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/database"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated in-memory SQLite database. A single connection
// keeps the in-memory database alive for the whole test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts an active account with the given role
func CreateUser(t *testing.T, db *gorm.DB, name string, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		Name:     name,
		Email:    uuid.NewString() + "@example.com",
		Phone:    "+91 98765 43210",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateProduct inserts an active catalog product
func CreateProduct(t *testing.T, db *gorm.DB, name string, price, tax string) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ProductName:   name,
		Price:         decimal.RequireFromString(price),
		UnitOfMeasure: "Piece",
		Tax:           decimal.RequireFromString(tax),
		Description:   name + " description",
		Parameters: datatypes.JSONSlice[domain.ProductParameter]{
			{Title: "Measuring Range", Specs: []domain.ProductSpec{{Label: "Range", Value: "0-30 m/s"}}},
		},
		GeneralSpecifications: datatypes.JSONSlice[domain.GeneralSpecification]{{Text: "IP65 enclosure"}},
		IsActive:              true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(product).Error)
	return product
}
