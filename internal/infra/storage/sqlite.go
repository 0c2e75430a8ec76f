package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stock_ledger/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryDSN keeps the catalog for the lifetime of the Storage only.
const memoryDSN = ":memory:"

// Storage is the SQLite-backed security catalog
type Storage struct {
	db *gorm.DB
}

var _ domain.ListingRepository = (*Storage)(nil)

// NewStorage opens the catalog at path. An empty path selects an in-memory database.
func NewStorage(path string) (*Storage, error) {
	dsn := memoryDSN
	if path != "" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
		dsn = path
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dsn == memoryDSN {
		// Every pooled connection to :memory: would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&domain.SecurityListing{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// UpsertListing creates or updates a listing
func (s *Storage) UpsertListing(listing *domain.SecurityListing) error {
	return s.db.Save(listing).Error
}

// GetListing retrieves a listing by symbol. A missing listing returns (nil, nil).
func (s *Storage) GetListing(symbol string) (*domain.SecurityListing, error) {
	var listing domain.SecurityListing
	err := s.db.First(&listing, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// AllListings retrieves every listing ordered by symbol
func (s *Storage) AllListings() ([]domain.SecurityListing, error) {
	var listings []domain.SecurityListing
	err := s.db.Order("symbol").Find(&listings).Error
	return listings, err
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
