package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/marketing"
	"github.com/adfinitum/backend/internal/infrastructure/config"
	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/adfinitum/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database wraps the gorm handle with pool setup and lifecycle helpers
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates a new database connection with a silent query logger
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return open(postgres.Open(cfg.DSN()), cfg, gormlogger.Default.LogMode(gormlogger.Silent))
}

// NewDatabaseWithLogger creates a new database connection that logs queries through zap
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...logger.GormLoggerOption) (*Database, error) {
	return open(postgres.Open(cfg.DSN()), cfg, logger.NewGormLogger(zapLogger, level, opts...))
}

// NewDatabaseFromDialector opens a database on any dialector. Tests use it with sqlite.
func NewDatabaseFromDialector(dialector gorm.Dialector, cfg *config.DatabaseConfig) (*Database, error) {
	return open(dialector, cfg, gormlogger.Default.LogMode(gormlogger.Silent))
}

// gormConfig is shared by every constructor; repositories run their own
// transactions so the implicit per-write one is skipped.
func gormConfig(l gormlogger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:                 l,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, gormLogger gormlogger.Interface) (*Database, error) {
	db, err := gorm.Open(dialector, gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &Database{DB: db}
	sqlDB, err := d.SQL()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		configurePool(sqlDB, cfg)
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return d, nil
}

const connectTimeout = 10 * time.Second

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL returns the pooled *sql.DB behind the gorm handle.
func (d *Database) SQL() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies a connection can be checked out within ctx.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AllModels lists every table the application owns, in dependency order
func AllModels() []any {
	return []any{
		&models.UserModel{},
		&catalog.Category{},
		&catalog.Brand{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&catalog.ProductVariation{},
		&catalog.ProductReview{},
		&catalog.HeroBanner{},
		&models.CouponModel{},
		&models.CartModel{},
		&models.CartItemModel{},
		&models.ShippingAddressModel{},
		&models.ShippingMethodModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderHistoryModel{},
		&models.ShipmentModel{},
		&models.ShipmentHistoryModel{},
		&models.PaymentModel{},
		&models.PaymentLogModel{},
		&marketing.HeroSlide{},
	}
}

// AutoMigrate creates or updates all tables. Production schemas come from
// SQL migrations; this is used by tests and local development.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(AllModels()...)
}
