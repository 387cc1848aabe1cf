package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stockbill-backend/api/controllers"
	"github.com/angelmondragon/stockbill-backend/api/middleware"
	"github.com/angelmondragon/stockbill-backend/internal/invoices"
	"github.com/angelmondragon/stockbill-backend/internal/purchases"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	"github.com/angelmondragon/stockbill-backend/pkg/config"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
	"github.com/angelmondragon/stockbill-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	ledgerService stockledger.Service,
	purchaseService purchases.Service,
	invoiceService invoices.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Invoicing.PostIdempotencyTTL, logg))

		r.Route("/stock", func(r chi.Router) {
			r.Post("/movements", controllers.StockRecordMovement(ledgerService, logg))
			r.Post("/adjustments", controllers.StockAdjust(ledgerService, logg))
			r.Route("/products/{productId}", func(r chi.Router) {
				r.Get("/", controllers.StockCurrent(ledgerService, logg))
				r.Get("/ledger", controllers.StockLedger(ledgerService, logg))
			})
		})

		r.Route("/purchase-bills", func(r chi.Router) {
			r.Post("/", controllers.PurchaseBillCreate(purchaseService, logg))
			r.Get("/", controllers.PurchaseBillList(purchaseService, logg))
			r.Route("/{billId}", func(r chi.Router) {
				r.Get("/", controllers.PurchaseBillDetail(purchaseService, logg))
				r.Post("/approve", controllers.PurchaseBillApprove(purchaseService, logg))
				r.With(middleware.PostingRateLimit(cfg.RateLimit, redisClient, logg)).
					Post("/post", controllers.PurchaseBillPost(purchaseService, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", controllers.InvoiceCreate(invoiceService, logg))
			r.Get("/", controllers.InvoiceList(invoiceService, logg))
			r.Route("/{invoiceId}", func(r chi.Router) {
				r.Get("/", controllers.InvoiceDetail(invoiceService, logg))
				r.Put("/", controllers.InvoiceUpdate(invoiceService, logg))
				r.Get("/validate-items", controllers.InvoiceValidateItems(invoiceService, logg))
				r.Post("/finalize", controllers.InvoiceFinalize(invoiceService, logg))
				r.With(middleware.PostingRateLimit(cfg.RateLimit, redisClient, logg)).
					Post("/post", controllers.InvoicePost(invoiceService, logg))
				r.Post("/reopen", controllers.InvoiceReopen(invoiceService, logg))
			})
		})

		r.Post("/tax/calculate", controllers.TaxCalculate(logg))
	})

	return r
}
