package router

import (
	"warehub-core-api/internal/handler"
	"warehub-core-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	CatalogHandler   *handler.CatalogHandler
	WarehouseHandler *handler.WarehouseHandler
	EventHandler     *handler.EventHandler
	AdminHandler     *handler.AdminHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.CatalogHandler != nil {
			r.Route("/products", func(r chi.Router) {
				r.Post("/", cfg.CatalogHandler.RegisterProduct)
				r.Get("/", cfg.CatalogHandler.SearchProducts)
				r.Get("/{id}", cfg.CatalogHandler.GetProduct)
			})
		}

		if cfg.WarehouseHandler != nil {
			r.Get("/stock", cfg.WarehouseHandler.GetStockStatus)

			r.Route("/boxes", func(r chi.Router) {
				r.Get("/", cfg.WarehouseHandler.ListBoxes)
				r.Post("/", cfg.WarehouseHandler.CreateBox)
				r.Delete("/{id}", cfg.WarehouseHandler.DeleteBox)
			})

			r.Route("/pallets", func(r chi.Router) {
				r.Get("/", cfg.WarehouseHandler.ListPallets)
				r.Post("/", cfg.WarehouseHandler.ReceivePallet)
			})

			r.Post("/transfers", cfg.WarehouseHandler.Transfer)
		}

		if cfg.EventHandler != nil {
			r.Route("/events", func(r chi.Router) {
				r.Post("/", cfg.EventHandler.Enqueue)
				r.Get("/", cfg.EventHandler.List)
				r.Post("/drain", cfg.EventHandler.Drain)
			})
		}

		if cfg.AdminHandler != nil {
			r.Get("/slots/free", cfg.AdminHandler.FreeSlot)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Post("/seed", cfg.AdminHandler.SeedProducts)
				r.Post("/slots/generate", cfg.AdminHandler.GenerateSlots)
			})
		}
	})

	return r
}
