package service

import (
	"context"
	"strings"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"
	"github.com/NilsonPMMC/sgfs/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Item / categoría stubs ───────────────────────────────────────────────────

type stubItemRepo struct {
	items       map[uuid.UUID]*model.Item
	referencias map[uuid.UUID]int64
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{
		items:       make(map[uuid.UUID]*model.Item),
		referencias: make(map[uuid.UUID]int64),
	}
}

func (r *stubItemRepo) agregar(nombre string) model.Item {
	it := &model.Item{ID: uuid.New(), Nombre: nombre, UnidadMedida: "unidade"}
	r.items[it.ID] = it
	return *it
}

func (r *stubItemRepo) Crear(_ context.Context, it *model.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *stubItemRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stubItemRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Item, error) {
	for _, it := range r.items {
		if strings.EqualFold(it.Nombre, nombre) {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) BuscarPorIDs(_ context.Context, ids []uuid.UUID) ([]model.Item, error) {
	var out []model.Item
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *stubItemRepo) Listar(_ context.Context, _ repository.ItemFiltro) ([]model.Item, int64, error) {
	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (r *stubItemRepo) Actualizar(_ context.Context, it *model.Item) error {
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *stubItemRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *stubItemRepo) ContarReferencias(_ context.Context, id uuid.UUID) (int64, error) {
	return r.referencias[id], nil
}

var _ repository.ItemRepository = (*stubItemRepo)(nil)

type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.CategoriaItem
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.CategoriaItem)}
}

func (r *stubCategoriaRepo) Crear(_ context.Context, c *model.CategoriaItem) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Listar(_ context.Context) ([]model.CategoriaItem, error) {
	out := make([]model.CategoriaItem, 0, len(r.categorias))
	for _, c := range r.categorias {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.CategoriaItem, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoriaRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.CategoriaItem, error) {
	for _, c := range r.categorias {
		if strings.EqualFold(c.Nombre, nombre) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) Actualizar(_ context.Context, c *model.CategoriaItem) error {
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	delete(r.categorias, id)
	return nil
}

var _ repository.CategoriaItemRepository = (*stubCategoriaRepo)(nil)

// ── Ledger stub ──────────────────────────────────────────────────────────────

type stubMovRepo struct {
	movs     []model.Movimiento
	bloqueos [][]uuid.UUID
}

func newStubMovRepo() *stubMovRepo { return &stubMovRepo{} }

// entrada seeds stock directly, outside any donation.
func (r *stubMovRepo) entrada(itemID uuid.UUID, cantidad string) {
	m := model.NuevaEntrada(itemID, decimal.RequireFromString(cantidad), nil, "saldo inicial")
	_ = r.RegistrarTx(nil, []model.Movimiento{m})
}

func (r *stubMovRepo) stock(itemID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.movs {
		if m.ItemID == itemID {
			total = total.Add(m.Cantidad)
		}
	}
	return total
}

func (r *stubMovRepo) RegistrarTx(_ *gorm.DB, movs []model.Movimiento) error {
	for i := range movs {
		movs[i].ID = uuid.New()
		movs[i].CreatedAt = time.Now()
		r.movs = append(r.movs, movs[i])
	}
	return nil
}

func (r *stubMovRepo) retirar(match func(model.Movimiento) bool) int64 {
	var n int64
	kept := r.movs[:0]
	for _, m := range r.movs {
		if match(m) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.movs = kept
	return n
}

func (r *stubMovRepo) RetirarPorDonacionRecibidaTx(_ *gorm.DB, donacionID uuid.UUID) (int64, error) {
	return r.retirar(func(m model.Movimiento) bool {
		return m.DonacionRecibidaID != nil && *m.DonacionRecibidaID == donacionID
	}), nil
}

func (r *stubMovRepo) RetirarPorDonacionRealizadaTx(_ *gorm.DB, donacionID uuid.UUID) (int64, error) {
	return r.retirar(func(m model.Movimiento) bool {
		return m.DonacionRealizadaID != nil && *m.DonacionRealizadaID == donacionID
	}), nil
}

func (r *stubMovRepo) BloquearItemsTx(_ *gorm.DB, itemIDs []uuid.UUID) error {
	r.bloqueos = append(r.bloqueos, append([]uuid.UUID(nil), itemIDs...))
	return nil
}

func (r *stubMovRepo) StockActual(_ context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	return r.stock(itemID), nil
}

func (r *stubMovRepo) StockActualBulk(_ context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return r.StockActualBulkTx(nil, itemIDs)
}

func (r *stubMovRepo) StockActualBulkTx(_ *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = r.stock(id)
	}
	return out, nil
}

func (r *stubMovRepo) ListarPorDonacionRecibida(_ context.Context, donacionID uuid.UUID) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movs {
		if m.DonacionRecibidaID != nil && *m.DonacionRecibidaID == donacionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovRepo) ListarPorDonacionRealizada(_ context.Context, donacionID uuid.UUID) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movs {
		if m.DonacionRealizadaID != nil && *m.DonacionRealizadaID == donacionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovRepo) filtrar(f repository.MovimientoFiltro) []model.Movimiento {
	var out []model.Movimiento
	for _, m := range r.movs {
		if f.ItemID != nil && m.ItemID != *f.ItemID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *stubMovRepo) Listar(_ context.Context, f repository.MovimientoFiltro) ([]model.Movimiento, int64, error) {
	out := r.filtrar(f)
	return out, int64(len(out)), nil
}

func (r *stubMovRepo) ListarTodos(_ context.Context, f repository.MovimientoFiltro) ([]model.Movimiento, error) {
	return r.filtrar(f), nil
}

func (r *stubMovRepo) ItemsConStockNegativo(_ context.Context) ([]repository.StockItem, error) {
	totales := make(map[uuid.UUID]decimal.Decimal)
	for _, m := range r.movs {
		totales[m.ItemID] = totales[m.ItemID].Add(m.Cantidad)
	}
	var out []repository.StockItem
	for id, total := range totales {
		if total.IsNegative() {
			out = append(out, repository.StockItem{ItemID: id, Stock: total})
		}
	}
	return out, nil
}

func (r *stubMovRepo) DB() *gorm.DB { return nil }

var _ repository.MovimientoRepository = (*stubMovRepo)(nil)

// ── Kit stub ─────────────────────────────────────────────────────────────────

type stubKitRepo struct {
	kits    map[uuid.UUID]*model.Kit
	salidas map[uuid.UUID]int64
	// vistas, when set, is what BuscarPorIDs returns: a composition read before
	// another request replaced it. ComponentesTx always sees the committed rows.
	vistas map[uuid.UUID]model.Kit
}

func newStubKitRepo() *stubKitRepo {
	return &stubKitRepo{kits: make(map[uuid.UUID]*model.Kit), salidas: make(map[uuid.UUID]int64)}
}

// agregar registers a kit from (item, cantidad) pairs.
func (r *stubKitRepo) agregar(nombre string, comps ...model.KitComponente) model.Kit {
	k := &model.Kit{ID: uuid.New(), Nombre: nombre, Componentes: comps}
	for i := range k.Componentes {
		k.Componentes[i].ID = uuid.New()
		k.Componentes[i].KitID = k.ID
	}
	r.kits[k.ID] = k
	return *k
}

func componente(it model.Item, cantidad string) model.KitComponente {
	item := it
	return model.KitComponente{ItemID: it.ID, Cantidad: decimal.RequireFromString(cantidad), Item: &item}
}

func (r *stubKitRepo) CrearTx(_ *gorm.DB, k *model.Kit) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	for i := range k.Componentes {
		k.Componentes[i].ID = uuid.New()
		k.Componentes[i].KitID = k.ID
	}
	cp := *k
	r.kits[k.ID] = &cp
	return nil
}

func (r *stubKitRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Kit, error) {
	k, ok := r.kits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *k
	return &cp, nil
}

func (r *stubKitRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Kit, error) {
	for _, k := range r.kits {
		if strings.EqualFold(k.Nombre, nombre) {
			cp := *k
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubKitRepo) BuscarPorIDs(_ context.Context, ids []uuid.UUID) ([]model.Kit, error) {
	var out []model.Kit
	for _, id := range ids {
		if v, ok := r.vistas[id]; ok {
			out = append(out, v)
			continue
		}
		if k, ok := r.kits[id]; ok {
			out = append(out, *k)
		}
	}
	return out, nil
}

func (r *stubKitRepo) ComponentesTx(_ *gorm.DB, kitIDs []uuid.UUID) ([]model.KitComponente, error) {
	var out []model.KitComponente
	for _, id := range kitIDs {
		if k, ok := r.kits[id]; ok {
			for _, c := range k.Componentes {
				c.KitID = id
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r *stubKitRepo) Listar(_ context.Context, _ repository.KitFiltro) ([]model.Kit, int64, error) {
	out := make([]model.Kit, 0, len(r.kits))
	for _, k := range r.kits {
		out = append(out, *k)
	}
	return out, int64(len(out)), nil
}

func (r *stubKitRepo) ReemplazarTx(tx *gorm.DB, k *model.Kit) error {
	return r.CrearTx(tx, k)
}

func (r *stubKitRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	delete(r.kits, id)
	return nil
}

func (r *stubKitRepo) ContarSalidas(_ context.Context, id uuid.UUID) (int64, error) {
	return r.salidas[id], nil
}

func (r *stubKitRepo) DB() *gorm.DB { return nil }

var _ repository.KitRepository = (*stubKitRepo)(nil)

// ── Donation stubs ───────────────────────────────────────────────────────────

type stubRecibidaRepo struct {
	donaciones map[uuid.UUID]*model.DonacionRecibida
	// vistas, when set, is what ObtenerPorID returns: a read taken before
	// another request committed. BloquearTx always sees the committed row.
	vistas map[uuid.UUID]model.DonacionRecibida
}

func newStubRecibidaRepo() *stubRecibidaRepo {
	return &stubRecibidaRepo{donaciones: make(map[uuid.UUID]*model.DonacionRecibida)}
}

func (r *stubRecibidaRepo) CrearTx(_ *gorm.DB, d *model.DonacionRecibida) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	cp := *d
	cp.Lineas = nil
	r.donaciones[d.ID] = &cp
	return nil
}

func (r *stubRecibidaRepo) CrearLineasTx(_ *gorm.DB, lineas []model.DonacionRecibidaLinea) error {
	for i := range lineas {
		lineas[i].ID = uuid.New()
		d := r.donaciones[lineas[i].DonacionRecibidaID]
		d.Lineas = append(d.Lineas, lineas[i])
	}
	return nil
}

func (r *stubRecibidaRepo) ActualizarCabeceraTx(_ *gorm.DB, d *model.DonacionRecibida) error {
	actual := r.donaciones[d.ID]
	actual.Fecha = d.Fecha
	actual.DonanteTipo = d.DonanteTipo
	actual.DonanteID = d.DonanteID
	actual.Observaciones = d.Observaciones
	return nil
}

func (r *stubRecibidaRepo) EliminarLineasTx(_ *gorm.DB, donacionID uuid.UUID) error {
	r.donaciones[donacionID].Lineas = nil
	return nil
}

func (r *stubRecibidaRepo) EliminarTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.donaciones, id)
	return nil
}

func (r *stubRecibidaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.DonacionRecibida, error) {
	if v, ok := r.vistas[id]; ok {
		return &v, nil
	}
	return r.BloquearTx(nil, id)
}

func (r *stubRecibidaRepo) BloquearTx(_ *gorm.DB, id uuid.UUID) (*model.DonacionRecibida, error) {
	d, ok := r.donaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	cp.Lineas = append([]model.DonacionRecibidaLinea(nil), d.Lineas...)
	return &cp, nil
}

func (r *stubRecibidaRepo) Listar(_ context.Context, _ repository.DonacionFiltro) ([]model.DonacionRecibida, int64, error) {
	out := make([]model.DonacionRecibida, 0, len(r.donaciones))
	for _, d := range r.donaciones {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubRecibidaRepo) DB() *gorm.DB { return nil }

var _ repository.DonacionRecibidaRepository = (*stubRecibidaRepo)(nil)

type stubRealizadaRepo struct {
	donaciones map[uuid.UUID]*model.DonacionRealizada
}

func newStubRealizadaRepo() *stubRealizadaRepo {
	return &stubRealizadaRepo{donaciones: make(map[uuid.UUID]*model.DonacionRealizada)}
}

func (r *stubRealizadaRepo) CrearTx(_ *gorm.DB, d *model.DonacionRealizada) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	r.donaciones[d.ID] = d
	return nil
}

func (r *stubRealizadaRepo) CrearItemsTx(_ *gorm.DB, items []model.ItemSalida) error {
	for i := range items {
		items[i].ID = uuid.New()
	}
	return nil
}

func (r *stubRealizadaRepo) CrearKitsTx(_ *gorm.DB, kits []model.KitSalida) error {
	for i := range kits {
		kits[i].ID = uuid.New()
	}
	return nil
}

func (r *stubRealizadaRepo) EliminarTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.donaciones, id)
	return nil
}

func (r *stubRealizadaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.DonacionRealizada, error) {
	d, ok := r.donaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubRealizadaRepo) Listar(_ context.Context, _ repository.DonacionFiltro) ([]model.DonacionRealizada, int64, error) {
	out := make([]model.DonacionRealizada, 0, len(r.donaciones))
	for _, d := range r.donaciones {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubRealizadaRepo) DB() *gorm.DB { return nil }

var _ repository.DonacionRealizadaRepository = (*stubRealizadaRepo)(nil)

// ── Directory / events ───────────────────────────────────────────────────────

type stubDirectorioRepo struct {
	entidades map[uuid.UUID]model.Entidad
	personas  map[uuid.UUID]model.PersonaFisica
}

func newStubDirectorioRepo() *stubDirectorioRepo {
	return &stubDirectorioRepo{
		entidades: make(map[uuid.UUID]model.Entidad),
		personas:  make(map[uuid.UUID]model.PersonaFisica),
	}
}

func (r *stubDirectorioRepo) entidad(nombre string, gestora bool) model.Entidad {
	e := model.Entidad{ID: uuid.New(), RazonSocial: nombre, EsDonante: true, EsGestor: gestora}
	r.entidades[e.ID] = e
	return e
}

func (r *stubDirectorioRepo) persona(nombre string) model.PersonaFisica {
	p := model.PersonaFisica{ID: uuid.New(), NombreCompleto: nombre}
	r.personas[p.ID] = p
	return p
}

func (r *stubDirectorioRepo) ObtenerEntidad(_ context.Context, id uuid.UUID) (*model.Entidad, error) {
	e, ok := r.entidades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r *stubDirectorioRepo) ObtenerPersona(_ context.Context, id uuid.UUID) (*model.PersonaFisica, error) {
	p, ok := r.personas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubDirectorioRepo) EntidadesPorIDs(_ context.Context, ids []uuid.UUID) ([]model.Entidad, error) {
	var out []model.Entidad
	for _, id := range ids {
		if e, ok := r.entidades[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubDirectorioRepo) PersonasPorIDs(_ context.Context, ids []uuid.UUID) ([]model.PersonaFisica, error) {
	var out []model.PersonaFisica
	for _, id := range ids {
		if p, ok := r.personas[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ repository.DirectorioRepository = (*stubDirectorioRepo)(nil)

type stubPublicador struct {
	eventos []worker.EventoMovimiento
	err     error
}

func (p *stubPublicador) PublicarMovimiento(_ context.Context, ev worker.EventoMovimiento) error {
	p.eventos = append(p.eventos, ev)
	return p.err
}

// ── Fixture ──────────────────────────────────────────────────────────────────

// fondo wires every service over a shared in-memory store.
type fondo struct {
	items      *stubItemRepo
	categorias *stubCategoriaRepo
	movs       *stubMovRepo
	kits       *stubKitRepo
	recibidas  *stubRecibidaRepo
	realizadas *stubRealizadaRepo
	dir        *stubDirectorioRepo
	pub        *stubPublicador

	itemSvc      ItemService
	kitSvc       KitService
	estoqueSvc   EstoqueService
	recibidaSvc  DonacionRecibidaService
	realizadaSvc DonacionRealizadaService
}

func nuevoFondo() *fondo {
	f := &fondo{
		items:      newStubItemRepo(),
		categorias: newStubCategoriaRepo(),
		movs:       newStubMovRepo(),
		kits:       newStubKitRepo(),
		recibidas:  newStubRecibidaRepo(),
		realizadas: newStubRealizadaRepo(),
		dir:        newStubDirectorioRepo(),
		pub:        &stubPublicador{},
	}
	directorio := NewDirectorio(f.dir)
	f.itemSvc = NewItemService(f.items, f.categorias, f.movs)
	f.kitSvc = NewKitService(f.kits, f.items, f.movs)
	f.estoqueSvc = NewEstoqueService(f.movs, f.items)
	f.recibidaSvc = NewDonacionRecibidaService(f.recibidas, f.items, f.movs, directorio, f.pub)
	f.realizadaSvc = NewDonacionRealizadaService(f.realizadas, f.items, f.kits, f.movs, directorio, f.pub, "Fundo Social")
	return f
}
