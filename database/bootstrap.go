// database/bootstrap.go
package database

import (
	"fmt"
	"strings"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seasonplan/entities"
)

// OpenSQLite opens and migrates the database or stops the process.
func OpenSQLite(path string, log *zap.Logger) *gorm.DB {
	db, err := Open(path)
	if err != nil {
		log.Fatal("open sqlite", zap.String("path", path), zap.Error(err))
	}
	return db
}

// Open opens path with foreign keys enforced and runs AutoMigrate.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a private migrated in-memory database.
func OpenMemory() (*gorm.DB, error) {
	return Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Vendor{},
		&entities.ProductMaster{},
		&entities.Product{},
		&entities.VendorOffering{},
		&entities.PriceBookEntry{},
		&entities.Crop{},
		&entities.ApplicationTiming{},
		&entities.Application{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
