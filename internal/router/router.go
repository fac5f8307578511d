package router

import (
	"time"

	"github.com/NilsonPMMC/sgfs/internal/config"
	"github.com/NilsonPMMC/sgfs/internal/handler"
	"github.com/NilsonPMMC/sgfs/internal/middleware"
	"github.com/NilsonPMMC/sgfs/internal/repository"
	"github.com/NilsonPMMC/sgfs/internal/service"
	"github.com/NilsonPMMC/sgfs/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	categoriaRepo := repository.NewCategoriaItemRepository(db)
	itemRepo := repository.NewItemRepository(db)
	kitRepo := repository.NewKitRepository(db)
	movRepo := repository.NewMovimientoRepository(db)
	recibidaRepo := repository.NewDonacionRecibidaRepository(db)
	realizadaRepo := repository.NewDonacionRealizadaRepository(db)
	directorioRepo := repository.NewDirectorioRepository(db)

	// Stock events go to Redis after commit; nil rdb turns them off
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	directorio := service.NewDirectorio(directorioRepo)
	categoriaSvc := service.NewCategoriaItemService(categoriaRepo)
	itemSvc := service.NewItemService(itemRepo, categoriaRepo, movRepo)
	kitSvc := service.NewKitService(kitRepo, itemRepo, movRepo)
	estoqueSvc := service.NewEstoqueService(movRepo, itemRepo)
	recibidaSvc := service.NewDonacionRecibidaService(recibidaRepo, itemRepo, movRepo, directorio, dispatcher)
	realizadaSvc := service.NewDonacionRealizadaService(realizadaRepo, itemRepo, kitRepo, movRepo, directorio, dispatcher, cfg.OrganizacionNombre)

	// ── Handlers ─────────────────────────────────────────────────────────────
	categoriasH := handler.NewCategoriasItemsHandler(categoriaSvc)
	itemsH := handler.NewItemsHandler(itemSvc, estoqueSvc)
	kitsH := handler.NewKitsHandler(kitSvc)
	estoqueH := handler.NewEstoqueHandler(estoqueSvc)
	recibidasH := handler.NewDonacionesRecibidasHandler(recibidaSvc)
	realizadasH := handler.NewDonacionesRealizadasHandler(realizadaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, dispatcher))

	todos := middleware.RequireRole(middleware.RolAdministrador, middleware.RolOperador)
	admin := middleware.RequireRole(middleware.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/categorias-items", todos, categoriasH.Listar)
		cats := v1.Group("/categorias-items", admin)
		{
			cats.POST("", categoriasH.Crear)
			cats.PUT("/:id", categoriasH.Actualizar)
			cats.DELETE("/:id", categoriasH.Eliminar)
		}

		v1.GET("/items", todos, itemsH.Listar)
		v1.GET("/items/:id", todos, itemsH.ObtenerPorID)
		v1.GET("/items/:id/stock", todos, itemsH.Stock)
		items := v1.Group("/items", admin)
		{
			items.POST("", itemsH.Crear)
			items.PUT("/:id", itemsH.Actualizar)
			items.DELETE("/:id", itemsH.Eliminar)
		}

		v1.GET("/kits", todos, kitsH.Listar)
		v1.GET("/kits/:id", todos, kitsH.ObtenerPorID)
		v1.POST("/kits/factibilidad", todos, kitsH.Factibilidad)
		kits := v1.Group("/kits", admin)
		{
			kits.POST("", kitsH.Crear)
			kits.PUT("/:id", kitsH.Actualizar)
			kits.DELETE("/:id", kitsH.Eliminar)
		}

		est := v1.Group("/estoque", todos)
		{
			est.POST("/stock", estoqueH.StockBulk)
			est.GET("/movimientos", estoqueH.ListarMovimientos)
			est.GET("/movimientos/export", estoqueH.ExportarMovimientos)
			est.GET("/consistencia", estoqueH.Consistencia)
		}

		rec := v1.Group("/donaciones-recibidas")
		{
			rec.POST("", todos, recibidasH.Registrar)
			rec.GET("", todos, recibidasH.Listar)
			rec.GET("/:id", todos, recibidasH.ObtenerPorID)
			rec.PUT("/:id", todos, recibidasH.Actualizar)
			rec.DELETE("/:id", admin, recibidasH.Eliminar)
		}

		rea := v1.Group("/donaciones-realizadas")
		{
			rea.POST("", todos, realizadasH.Registrar)
			rea.GET("", todos, realizadasH.Listar)
			rea.GET("/:id", todos, realizadasH.ObtenerPorID)
			rea.GET("/:id/comprobante", todos, realizadasH.Comprobante)
			rea.DELETE("/:id", admin, realizadasH.Eliminar)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
