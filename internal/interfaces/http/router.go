package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransactionUC *transactions.UseCase
	InventoryUC   *inventory.UseCase
	ArticleUC     *usecase.ArticleUseCase
	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solo admin y almacenista mutan el ledger y los catálogos;
	// consulta queda limitado a lecturas.
	writer := RequireRole(auth.RoleAdmin, auth.RoleAlmacenista)

	// Transactions (ledger, protegido)
	trxGroup := protected.Group("/transactions")
	trxHandler := NewTransactionHandler(deps.TransactionUC)
	trxGroup.Post("/", writer, trxHandler.Create)
	trxGroup.Get("/", trxHandler.List)
	trxGroup.Get("/:id", trxHandler.GetByID)
	trxGroup.Delete("/:id", RequireRole(auth.RoleAdmin), trxHandler.Delete)

	// Inventory (lecturas derivadas del ledger, protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Get("/products", inventoryHandler.ListProducts)
	invGroup.Get("/products/:id", inventoryHandler.GetProduct)
	invGroup.Get("/products/:id/reconcile", inventoryHandler.Reconcile)
	invGroup.Get("/articles/:barcode", inventoryHandler.GetArticle)

	// Articles (catálogo, protegido)
	articles := protected.Group("/articles")
	articleHandler := NewArticleHandler(deps.ArticleUC)
	articles.Post("/", writer, articleHandler.Create)
	articles.Get("/", articleHandler.List)
	articles.Get("/:id", articleHandler.GetByID)
	articles.Put("/:id", writer, articleHandler.Update)
	articles.Delete("/:id", RequireRole(auth.RoleAdmin), articleHandler.Delete)

	// Products (correcciones de catálogo; las lecturas viven en /inventory)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Put("/:id", writer, productHandler.Update)
	products.Delete("/:id", RequireRole(auth.RoleAdmin), productHandler.Delete)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", writer, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Delete("/:id", RequireRole(auth.RoleAdmin), warehouseHandler.Delete)
}
