package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	_ "github.com/techmart/backend/docs" // Импорт сгенерированных файлов
	"github.com/techmart/backend/internal/auth"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

type Deps struct {
	CatalogUC   usecase.CatalogUC
	UserUC      usecase.UserUC
	OrderUC     usecase.OrderUC
	ReportUC    usecase.ReportUC
	ImagesInfra usecase.ImagesInfra
	Tokens      *auth.TokenManager
	MinioCfg    *cfg.MinIOCfg
	PayPalCfg   *cfg.PayPalCfg
}

func (r *Router) Init(deps *Deps) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	authed := authMiddleware(deps.Tokens)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerProductRoutes(v1, NewProductHandler(deps.CatalogUC, deps.MinioCfg, r.logger), authed)
		registerUserRoutes(v1, NewUserHandler(deps.UserUC, r.logger), authed)
		registerOrderRoutes(v1, NewOrderHandler(deps.OrderUC, deps.ReportUC, deps.MinioCfg, r.logger), authed)
		registerUploadRoutes(v1, NewUploadHandler(deps.ImagesInfra, r.logger), authed)
		registerKeyRoutes(v1, NewKeysHandler(deps.PayPalCfg), authed)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler, authed func(http.Handler) http.Handler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.searchProducts)
		pr.Get("/categories", h.listCategories)
		pr.Get("/slug/{slug}", h.getProductBySlug)
		pr.Get("/{id}", h.getProduct)

		pr.Group(func(admin chi.Router) {
			admin.Use(authed, adminOnly)
			admin.Post("/", h.createProduct)
			admin.Put("/{id}", h.updateProduct)
			admin.Delete("/{id}", h.deleteProduct)
		})
	})
}

func registerUserRoutes(router chi.Router, h *UserHandler, authed func(http.Handler) http.Handler) {
	router.Route("/users", func(us chi.Router) {
		us.Post("/signup", h.signup)
		us.Post("/signin", h.signin)

		us.Group(func(profile chi.Router) {
			profile.Use(authed)
			profile.Put("/profile", h.updateProfile)
		})

		us.Group(func(admin chi.Router) {
			admin.Use(authed, adminOnly)
			admin.Get("/", h.listUsers)
			admin.Get("/{id}", h.getUser)
			admin.Put("/{id}", h.adminUpdateUser)
			admin.Delete("/{id}", h.deleteUser)
		})
	})
}

func registerOrderRoutes(router chi.Router, h *OrderHandler, authed func(http.Handler) http.Handler) {
	router.Route("/orders", func(or chi.Router) {
		or.Use(authed)

		or.Post("/", h.placeOrder)
		or.Get("/mine", h.listMine)
		or.Get("/{id}", h.getOrder)
		or.Post("/{id}/payment", h.createPayment)
		or.Put("/{id}/pay", h.payOrder)

		or.Group(func(admin chi.Router) {
			admin.Use(adminOnly)
			admin.Get("/", h.listOrders)
			admin.Get("/summary", h.summary)
			admin.Put("/{id}/deliver", h.deliverOrder)
			admin.Delete("/{id}", h.deleteOrder)
		})
	})
}

func registerUploadRoutes(router chi.Router, h *UploadHandler, authed func(http.Handler) http.Handler) {
	router.Route("/uploads", func(up chi.Router) {
		up.Use(authed, adminOnly)
		up.Post("/", h.upload)
	})
}

func registerKeyRoutes(router chi.Router, h *KeysHandler, authed func(http.Handler) http.Handler) {
	router.Route("/keys", func(keys chi.Router) {
		keys.Use(authed)
		keys.Get("/paypal", h.paypalKey)
	})
}
