package infra

import (
	"fmt"

	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables. Unique indexes declared on the models enforce
// the uniqueness triples at the schema level, so the application-level checks
// are backstopped even under concurrent writers.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Map driver unique-violation errors to gorm.ErrDuplicatedKey so the
		// service layer can translate them without importing pgconn.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with integration tests.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Supplier{},
		&model.SupplierBranch{},
		&model.SupplierContact{},
		&model.Part{},
		&model.PriceHistory{},
	)
}
