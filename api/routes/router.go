package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// NewRouter mounts the cart API. idempotency may be nil, in which case checkout
// still requires the Idempotency-Key header but responses are not replayed.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cartStore cart.Store,
	checkoutService checkout.Service,
	idempotency redis.IdempotencyStore,
	readiness map[string]controllers.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cart/session", controllers.CartSessionCreate())

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartOwner(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartStore, logg))
				r.Put("/", controllers.CartReplace(cartStore, logg))
				r.Delete("/", controllers.CartClear(cartStore, logg))
				r.Post("/items", controllers.CartAddItem(cartStore, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(cartStore, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateQuantity(cartStore, logg))
				r.Post("/items/{productId}/step", controllers.CartStepQuantity(cartStore, logg))
				r.Patch("/lines/{id}/gift-wrap", controllers.CartSetGiftWrap(cartStore, logg))
			})

			r.With(middleware.Idempotency(idempotency, logg)).
				Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))
		})
	})

	return r
}
