// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers. The schema comes from the embedded migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/adfinitum/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

var shared struct {
	sync.Mutex
	container testcontainers.Container
	dsn       string
}

// TestDB is a migrated database plus the container backing it.
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string

	container testcontainers.Container
	owned     bool
	t         *testing.T
}

// NewTestDB starts a dedicated container. It is terminated on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startPostgres(t, "adfinitum_test")
	tdb := connect(t, dsn)
	tdb.container, tdb.owned = container, true
	migrate(t, tdb.SqlDB)

	t.Cleanup(tdb.Close)
	return tdb
}

// NewSharedTestDB reuses one container per package; the schema is migrated
// once. Callers that write should CleanTables first.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	shared.Lock()
	if shared.container == nil {
		shared.container, shared.dsn = startPostgres(t, "adfinitum_shared_test")
		bootstrap := connect(t, shared.dsn)
		migrate(t, bootstrap.SqlDB)
		_ = bootstrap.SqlDB.Close()
	}
	container, dsn := shared.container, shared.dsn
	shared.Unlock()

	tdb := connect(t, dsn)
	tdb.container = container
	t.Cleanup(tdb.Close)
	return tdb
}

// CleanupSharedContainer terminates the package container; call it from TestMain.
func CleanupSharedContainer() {
	shared.Lock()
	defer shared.Unlock()

	if shared.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shared.container.Terminate(ctx)
	shared.container, shared.dsn = nil, ""
}

// Close releases the connection and, for a dedicated container, the container.
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.owned && tdb.container != nil {
		if err := tdb.container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("terminate container: %v", err)
		}
	}
}

// CleanTables empties every application table, keeping migration state.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
	`).Scan(&tables).Error)
	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error)
	}
}

func startPostgres(t *testing.T, dbName string) (testcontainers.Container, string) {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres dsn")
	return container, dsn
}

// connect opens gorm with the application's zap-backed logger. Set
// TEST_DB_DEBUG to see every statement.
func connect(t *testing.T, dsn string) *TestDB {
	t.Helper()

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.NewGormLogger(zaptest.NewLogger(t), level, logger.WithBoundValues(true)),
		TranslateError: true,
	})
	require.NoError(t, err, "connect")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	return &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
}

// migrate applies the embedded schema. The migrator is left open: its
// postgres driver would close sqlDB with it.
func migrate(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.NewEmbedded(sqlDB, zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")
}

// SeedUser inserts an account and returns its ID. The password hash is a
// placeholder; seeded users never log in.
func (tdb *TestDB) SeedUser(email, role string) uuid.UUID {
	tdb.t.Helper()

	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO users (id, email, full_name, role, is_staff, password_hash)
		VALUES (?, ?, ?, ?, ?, 'x')
	`, id, email, "Test "+role, role, role != "customer").Error
	require.NoError(tdb.t, err, "Failed to seed user")
	return id
}

// SeedCategory inserts an active category.
func (tdb *TestDB) SeedCategory(name string) uuid.UUID {
	tdb.t.Helper()

	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO categories (id, name, slug) VALUES (?, ?, ?)
	`, id, name, fmt.Sprintf("cat-%s", id.String()[:8])).Error
	require.NoError(tdb.t, err, "Failed to seed category")
	return id
}

// SeedProduct inserts an active in-stock product.
func (tdb *TestDB) SeedProduct(categoryID uuid.UUID, name string, price decimal.Decimal, stock int) uuid.UUID {
	tdb.t.Helper()

	id := uuid.New()
	short := id.String()[:8]
	err := tdb.DB.Exec(`
		INSERT INTO products (id, name, slug, description, category_id, price, sku, stock_quantity)
		VALUES (?, ?, ?, '', ?, ?, ?, ?)
	`, id, name, "prod-"+short, categoryID, price, "SKU-"+short, stock).Error
	require.NoError(tdb.t, err, "Failed to seed product")
	return id
}

// SeedShippingMethod inserts an active delivery option.
func (tdb *TestDB) SeedShippingMethod(name string, baseCost decimal.Decimal) uuid.UUID {
	tdb.t.Helper()

	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO shipping_methods (id, name, base_cost) VALUES (?, ?, ?)
	`, id, name, baseCost).Error
	require.NoError(tdb.t, err, "Failed to seed shipping method")
	return id
}
