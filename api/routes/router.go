package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebmoran/tunewave-backend/api/controllers"
	billingcontrollers "github.com/calebmoran/tunewave-backend/api/controllers/billing"
	webhookcontrollers "github.com/calebmoran/tunewave-backend/api/controllers/webhooks"
	"github.com/calebmoran/tunewave-backend/api/middleware"
	"github.com/calebmoran/tunewave-backend/internal/catalog"
	"github.com/calebmoran/tunewave-backend/internal/users"
	stripewebhook "github.com/calebmoran/tunewave-backend/internal/webhooks/stripe"
	"github.com/calebmoran/tunewave-backend/pkg/config"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/metrics"
	"github.com/calebmoran/tunewave-backend/pkg/stripe"
)

// Deps carries everything the router wires into controllers. Optional
// integrations (storage, stripe) may be nil; their routes degrade to 500s
// through the controllers' own guards.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger
	GCS   controllers.Pinger

	Registry *prometheus.Registry

	CatalogRepo  catalog.Repository
	UsersRepo    users.Repository
	Songs        controllers.SongService
	Storage      controllers.SongStorage
	Billing      billingcontrollers.Service
	Entitlements controllers.EntitlementService

	StripeClient   *stripe.Client
	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
	WebhookMetrics *metrics.WebhookMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(deps.DB, deps.Redis, deps.GCS)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.WebhookService, deps.StripeClient, deps.WebhookGuard, deps.WebhookMetrics, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(deps.CatalogRepo, logg))
		r.Get("/songs", controllers.SongList(deps.Songs, logg))
		r.Get("/songs/{songId}/stream", controllers.SongStreamURLs(deps.Songs, deps.Storage, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/ping", controllers.PrivatePing())

			r.Route("/songs", func(r chi.Router) {
				r.Post("/", controllers.SongCreate(deps.Songs, logg))
				r.Post("/presign", controllers.SongPresign(deps.Storage, logg))
				r.Get("/me", controllers.SongListMine(deps.Songs, logg))
				r.Get("/liked", controllers.SongListLiked(deps.Songs, logg))
				r.Post("/{songId}/like", controllers.SongLike(deps.Songs, logg))
				r.Delete("/{songId}/like", controllers.SongUnlike(deps.Songs, logg))
			})

			r.Route("/account", func(r chi.Router) {
				r.Get("/", controllers.AccountProfile(deps.UsersRepo, logg))
				r.Get("/subscription", controllers.AccountSubscription(deps.Entitlements, logg))
			})
		})

		// Billing session routes reject missing or bad credentials with 403,
		// matching the portal/checkout contract.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthForbidden(cfg.JWT, logg))

			r.Route("/billing", func(r chi.Router) {
				r.Post("/checkout", billingcontrollers.CreateCheckoutSession(deps.Billing, logg))
				r.Post("/portal", billingcontrollers.CreatePortalSession(deps.Billing, logg))
			})
		})
	})

	return r
}
