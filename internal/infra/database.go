package infra

import (
	"fmt"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig carries the pool sizing read from the environment.
type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// NewDatabase opens the GORM handle, installs the tracing plugin and brings
// the schema up to date.
func NewDatabase(cfg DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		log.Warn().Err(err).Msg("otelgorm plugin not installed")
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the stock tables and applies the constraints
// AutoMigrate cannot express. The directory tables are owned by the CRM and
// only created here when missing, so a fresh database (tests, local dev) works.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Entidad{},
		&model.PersonaFisica{},
		&model.CategoriaItem{},
		&model.Item{},
		&model.Kit{},
		&model.KitComponente{},
		&model.DonacionRecibida{},
		&model.DonacionRecibidaLinea{},
		&model.DonacionRealizada{},
		&model.ItemSalida{},
		&model.KitSalida{},
		&model.Movimiento{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches adds CHECK constraints and correlation FKs. Every
// statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"movimientos signo por tipo", checkConstraint("movimientos", "chk_movimientos_signo",
			`(tipo = 'entrada' AND cantidad > 0) OR (tipo = 'salida' AND cantidad < 0)`)},
		{"movimientos una sola correlacion", checkConstraint("movimientos", "chk_movimientos_correlacion",
			`donacion_recibida_id IS NULL OR donacion_realizada_id IS NULL`)},
		{"kit_componentes cantidad positiva", checkConstraint("kit_componentes", "chk_kit_componentes_cantidad",
			`cantidad > 0`)},
		{"lineas recibidas cantidad positiva", checkConstraint("donaciones_recibidas_lineas", "chk_dr_lineas_cantidad",
			`cantidad > 0`)},
		{"items salida cantidad positiva", checkConstraint("donaciones_realizadas_items", "chk_dz_items_cantidad",
			`cantidad > 0`)},
		{"kits salida cantidad positiva", checkConstraint("donaciones_realizadas_kits", "chk_dz_kits_cantidad",
			`cantidad > 0`)},
		{"donante tipo", checkConstraint("donaciones_recibidas", "chk_donaciones_recibidas_donante",
			`donante_tipo IN ('entidad', 'persona')`)},
		{"fk movimientos donacion recibida", foreignKey("movimientos", "fk_movimientos_donacion_recibida",
			"donacion_recibida_id", "donaciones_recibidas")},
		{"fk movimientos donacion realizada", foreignKey("movimientos", "fk_movimientos_donacion_realizada",
			"donacion_realizada_id", "donaciones_realizadas")},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

func checkConstraint(table, name, expr string) string {
	return fmt.Sprintf(`
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
    ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
  END IF;
END $$`, table, name, expr)
}

func foreignKey(table, name, column, ref string) string {
	return fmt.Sprintf(`
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
    ALTER TABLE %[1]s ADD CONSTRAINT %[2]s FOREIGN KEY (%[3]s) REFERENCES %[4]s(id) ON DELETE RESTRICT;
  END IF;
END $$`, table, name, column, ref)
}
