package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDatabase builds the GORM handle for the configured driver. It does not
// touch the network: connectivity is checked once by CheckDatabase so that the
// server can start degraded when the datastore is optional.
// When cb is non-nil every statement goes through the datastore breaker.
func NewDatabase(cfg *config.Config, cb *CircuitBreaker) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	default:
		return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cb != nil {
		if err := RegisterDatastoreBreaker(db, cb); err != nil {
			return nil, fmt.Errorf("datastore breaker: %w", err)
		}
	}
	return db, nil
}

// sqliteDSN enables foreign keys on every pooled connection; SQLite leaves
// them off by default and ON DELETE CASCADE/SET NULL depend on them.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// CheckDatabase is the startup capability check: a single ping with timeout.
func CheckDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// checkDatabase is swapped in tests.
var checkDatabase = CheckDatabase

// MigrateWhenReachable pings the database every interval and runs the
// migrations once the ping succeeds. It is for servers that started degraded
// before the datastore was up. It returns ctx.Err() if cancelled first.
func MigrateWhenReachable(ctx context.Context, db *gorm.DB, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if err := checkDatabase(ctx, db); err == nil {
			if err := RunMigrations(db); err != nil {
				return err
			}
			log.Info().Msg("database reachable, migrations applied")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// RunMigrations creates / updates all tables, then applies the idempotent SQL
// patches GORM cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Proveedor{},
		&model.Producto{},
		&model.Cliente{},
		&model.Venta{},
		&model.ItemVenta{},
		&model.Usuario{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches is fully idempotent: each statement is guarded so
// re-running on an already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct {
		descr        string
		sql          string
		postgresOnly bool
	}{
		{descr: "idx_items_venta_venta_producto",
			sql: `CREATE INDEX IF NOT EXISTS idx_items_venta_venta_producto ON items_venta (venta_id, producto_id)`},
		{descr: "idx_movimientos_stock_producto_fecha",
			sql: `CREATE INDEX IF NOT EXISTS idx_movimientos_stock_producto_fecha ON movimientos_stock (producto_id, created_at)`},

		// Partial index backing the low-stock alerts and the stock-critico view.
		{descr: "partial idx_productos_stock_bajo", postgresOnly: true, sql: `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_productos_stock_bajo') THEN
    CREATE INDEX idx_productos_stock_bajo ON productos (stock_actual) WHERE stock_actual <= stock_minimo;
  END IF;
END $$`},
		// Usernames are compared case-insensitively on Postgres.
		{descr: "unique lower(username)", postgresOnly: true, sql: `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_usuarios_username_lower') THEN
    CREATE UNIQUE INDEX uq_usuarios_username_lower ON usuarios (LOWER(username));
  END IF;
END $$`},
	}

	isPostgres := db.Dialector.Name() == DriverPostgres
	for _, p := range patches {
		if p.postgresOnly && !isPostgres {
			continue
		}
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
		log.Debug().Str("patch", p.descr).Msg("schema patch applied")
	}
	return nil
}
