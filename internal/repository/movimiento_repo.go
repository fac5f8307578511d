package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovimientoFiltro defines filters for listing ledger rows.
type MovimientoFiltro struct {
	ItemID *uuid.UUID
	Tipo   string
	Desde  *time.Time
	Hasta  *time.Time // exclusive upper bound
	Page   int
	Limit  int
}

// StockItem is one row of a derived-stock report.
type StockItem struct {
	ItemID uuid.UUID
	Nombre string
	Stock  decimal.Decimal
}

// MovimientoRepository is the only writer of the movimientos table.
// Rows are appended by the donation posters and removed only by retraction
// of the donation that produced them.
type MovimientoRepository interface {
	// RegistrarTx appends movs and fills in their IDs and timestamps.
	RegistrarTx(tx *gorm.DB, movs []model.Movimiento) error
	RetirarPorDonacionRecibidaTx(tx *gorm.DB, donacionID uuid.UUID) (int64, error)
	RetirarPorDonacionRealizadaTx(tx *gorm.DB, donacionID uuid.UUID) (int64, error)

	// BloquearItemsTx takes row locks on the items, in id order, until the tx ends.
	BloquearItemsTx(tx *gorm.DB, itemIDs []uuid.UUID) error

	StockActual(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
	// StockActualBulk returns an entry for every requested id (zero when no movements).
	StockActualBulk(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	StockActualBulkTx(tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	ListarPorDonacionRecibida(ctx context.Context, donacionID uuid.UUID) ([]model.Movimiento, error)
	ListarPorDonacionRealizada(ctx context.Context, donacionID uuid.UUID) ([]model.Movimiento, error)
	Listar(ctx context.Context, filtro MovimientoFiltro) ([]model.Movimiento, int64, error)
	// ListarTodos ignores pagination; used by the XLSX export.
	ListarTodos(ctx context.Context, filtro MovimientoFiltro) ([]model.Movimiento, error)
	ItemsConStockNegativo(ctx context.Context) ([]StockItem, error)

	DB() *gorm.DB
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) RegistrarTx(tx *gorm.DB, movs []model.Movimiento) error {
	if len(movs) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&movs).Error
}

func (r *movimientoRepo) RetirarPorDonacionRecibidaTx(tx *gorm.DB, donacionID uuid.UUID) (int64, error) {
	res := tx.Where("donacion_recibida_id = ?", donacionID).Delete(&model.Movimiento{})
	return res.RowsAffected, res.Error
}

func (r *movimientoRepo) RetirarPorDonacionRealizadaTx(tx *gorm.DB, donacionID uuid.UUID) (int64, error) {
	res := tx.Where("donacion_realizada_id = ?", donacionID).Delete(&model.Movimiento{})
	return res.RowsAffected, res.Error
}

func (r *movimientoRepo) BloquearItemsTx(tx *gorm.DB, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	var bloqueados []uuid.UUID
	err := tx.Model(&model.Item{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", itemIDs).
		Order("id").
		Pluck("id", &bloqueados).Error
	if err != nil {
		return err
	}
	if len(bloqueados) != len(unicos(itemIDs)) {
		return fmt.Errorf("bloquear items: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *movimientoRepo) StockActual(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("item_id = ?", itemID).
		Row().Scan(&total)
	return total, err
}

func (r *movimientoRepo) StockActualBulk(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return sumarPorItem(r.db.WithContext(ctx), itemIDs)
}

func (r *movimientoRepo) StockActualBulkTx(tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return sumarPorItem(tx, itemIDs)
}

func sumarPorItem(db *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	stock := make(map[uuid.UUID]decimal.Decimal, len(itemIDs))
	for _, id := range itemIDs {
		stock[id] = decimal.Zero
	}
	if len(itemIDs) == 0 {
		return stock, nil
	}

	var filas []struct {
		ItemID uuid.UUID
		Total  decimal.Decimal
	}
	err := db.Model(&model.Movimiento{}).
		Select("item_id, COALESCE(SUM(cantidad), 0) AS total").
		Where("item_id IN ?", unicos(itemIDs)).
		Group("item_id").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	for _, f := range filas {
		stock[f.ItemID] = f.Total
	}
	return stock, nil
}

func (r *movimientoRepo) ListarPorDonacionRecibida(ctx context.Context, donacionID uuid.UUID) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).Preload("Item").
		Where("donacion_recibida_id = ?", donacionID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) ListarPorDonacionRealizada(ctx context.Context, donacionID uuid.UUID) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).Preload("Item").
		Where("donacion_realizada_id = ?", donacionID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) filtrar(ctx context.Context, filtro MovimientoFiltro) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Movimiento{})
	if filtro.ItemID != nil {
		q = q.Where("item_id = ?", *filtro.ItemID)
	}
	if filtro.Tipo != "" {
		q = q.Where("tipo = ?", filtro.Tipo)
	}
	if filtro.Desde != nil {
		q = q.Where("created_at >= ?", *filtro.Desde)
	}
	if filtro.Hasta != nil {
		q = q.Where("created_at < ?", *filtro.Hasta)
	}
	return q
}

func (r *movimientoRepo) Listar(ctx context.Context, filtro MovimientoFiltro) ([]model.Movimiento, int64, error) {
	q := r.filtrar(ctx, filtro)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filtro.Page, filtro.Limit, 100, 500)
	var movs []model.Movimiento
	err := q.Preload("Item").Order("created_at DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}

func (r *movimientoRepo) ListarTodos(ctx context.Context, filtro MovimientoFiltro) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.filtrar(ctx, filtro).Preload("Item").Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) ItemsConStockNegativo(ctx context.Context) ([]StockItem, error) {
	var out []StockItem
	err := r.db.WithContext(ctx).Table("movimientos AS m").
		Select("m.item_id AS item_id, i.nombre AS nombre, SUM(m.cantidad) AS stock").
		Joins("JOIN items i ON i.id = m.item_id").
		Group("m.item_id, i.nombre").
		Having("SUM(m.cantidad) < 0").
		Order("i.nombre").
		Scan(&out).Error
	return out, err
}

func unicos(ids []uuid.UUID) []uuid.UUID {
	vistos := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := vistos[id]; ok {
			continue
		}
		vistos[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
