package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablemesa/resto-backend/api/controllers"
	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/internal/auth"
	"github.com/tablemesa/resto-backend/internal/categories"
	"github.com/tablemesa/resto-backend/internal/items"
	"github.com/tablemesa/resto-backend/internal/products"
	"github.com/tablemesa/resto-backend/internal/sales"
	"github.com/tablemesa/resto-backend/internal/storestatus"
	"github.com/tablemesa/resto-backend/internal/stores"
	"github.com/tablemesa/resto-backend/internal/users"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/metrics"
	"github.com/tablemesa/resto-backend/pkg/redis"
	"github.com/tablemesa/resto-backend/pkg/storage/gcs"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Cfg        *config.Config
	Logg       *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	GCS        gcs.Pinger
	Cookies    *cookies.Manager
	Metrics    *metrics.HTTPMetrics
	Guard      *access.Guard
	Resolver   *stores.Resolver
	Auth       auth.Service
	Stores     stores.Service
	Categories categories.Service
	Products   products.Service
	Items      items.Service
	Sales      sales.Service
	Users      users.Service
	Status     storestatus.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg),
		middleware.CORS(d.Cfg.App.CORSOrigins),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		d.Cfg.AuthRateLimit.LoginWindow,
		d.Cfg.AuthRateLimit.LoginIPLimit,
		d.Cfg.AuthRateLimit.LoginEmailLimit,
	)
	refreshPolicy := middleware.NewAuthRateLimitPolicy(
		"refresh",
		d.Cfg.AuthRateLimit.RefreshWindow,
		d.Cfg.AuthRateLimit.RefreshIPLimit,
		d.Cfg.AuthRateLimit.RefreshEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, d.DB, d.Redis, d.GCS))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(d.Auth, d.Cookies, d.Logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, d.Logg)).
				Post("/login", controllers.AuthLogin(d.Auth, d.Cookies, d.Logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, d.Cookies, d.Logg))
			r.With(middleware.AuthRateLimit(refreshPolicy, d.Redis, d.Logg)).
				Post("/refresh", controllers.AuthRefresh(d.Auth, d.Cookies, d.Logg))
		})

		// Reads shared with the storefront resolve the store per the admin
		// query flag; anonymous traffic lands on the public default store.
		r.Group(func(r chi.Router) {
			r.Use(middleware.QueryStore(d.Resolver, d.Guard, d.Logg))
			r.Get("/categories", controllers.CategoryList(d.Categories, d.Logg))
			r.Get("/products", controllers.ProductList(d.Products, d.Logg))
			r.Get("/products/{productId}", controllers.ProductGet(d.Products, d.Logg))
			r.Get("/items", controllers.ItemList(d.Items, d.Logg))
			r.Get("/items/{itemId}", controllers.ItemGet(d.Items, d.Logg))
			r.Get("/store-status", controllers.StoreStatusGet(d.Status, d.Logg))
		})

		// Store-scoped mutations require a session plus the selection cookie.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Logg))
			r.Use(middleware.AdminStore(d.Resolver, d.Guard, d.Logg))

			r.Post("/categories", controllers.CategoryCreate(d.Categories, d.Logg))
			r.Put("/categories/{categoryId}", controllers.CategoryUpdate(d.Categories, d.Logg))
			r.Delete("/categories/{categoryId}", controllers.CategoryDelete(d.Categories, d.Logg))

			r.Post("/products", controllers.ProductCreate(d.Products, d.Logg))
			r.Put("/products/{productId}", controllers.ProductUpdate(d.Products, d.Logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(d.Products, d.Logg))
			r.Post("/products/copy", controllers.ProductCopy(d.Products, d.Logg))

			r.Post("/items", controllers.ItemCreate(d.Items, d.Logg))
			r.Put("/items/{itemId}", controllers.ItemUpdate(d.Items, d.Logg))
			r.Delete("/items/{itemId}", controllers.ItemDelete(d.Items, d.Logg))
			r.Post("/items/{itemId}/decrement", controllers.ItemDecrement(d.Items, d.Logg))

			r.Get("/sales", controllers.SaleList(d.Sales, d.Logg))
			r.Get("/sales/{saleId}", controllers.SaleGet(d.Sales, d.Logg))
			r.Post("/sales", controllers.SaleCreate(d.Sales, d.Logg))

			r.Put("/store-status", controllers.StoreStatusUpdate(d.Status, d.Logg))
		})

		// Store selection and listing need a session but no selected store.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Logg))

			r.Get("/stores/accessible", controllers.StoreAccessible(d.Stores, d.Logg))
			r.Post("/stores/select", controllers.StoreSelect(d.Stores, d.Cookies, d.Logg))
			r.Get("/stores/{storeId}", controllers.StoreGet(d.Stores, d.Logg))
			r.Get("/users/me", controllers.UserMe(d.Users, d.Logg))

			// Governance: store and user management is admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(d.Logg))

				r.Get("/stores", controllers.StoreList(d.Stores, d.Logg))
				r.Post("/stores", controllers.StoreCreate(d.Stores, d.Logg))
				r.Put("/stores/{storeId}", controllers.StoreUpdate(d.Stores, d.Logg))
				r.Delete("/stores/{storeId}", controllers.StoreDelete(d.Stores, d.Logg))

				r.Get("/users", controllers.UserList(d.Users, d.Logg))
				r.Post("/users", controllers.UserCreate(d.Users, d.Logg))
				r.Get("/users/{userId}", controllers.UserGet(d.Users, d.Logg))
				r.Put("/users/{userId}", controllers.UserUpdate(d.Users, d.Logg))
				r.Delete("/users/{userId}", controllers.UserDelete(d.Users, d.Logg))
			})
		})
	})

	return r
}
