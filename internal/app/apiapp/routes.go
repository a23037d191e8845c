package apiapp

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	accesssvc "github.com/ludora/storefront/internal/services/access"
	accountsvc "github.com/ludora/storefront/internal/services/account"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	cartsvc "github.com/ludora/storefront/internal/services/cart"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
	lessonplansvc "github.com/ludora/storefront/internal/services/lessonplans"
	paymentsvc "github.com/ludora/storefront/internal/services/payments"
	purchasesvc "github.com/ludora/storefront/internal/services/purchase"
	templatesvc "github.com/ludora/storefront/internal/services/templates"
	"github.com/ludora/storefront/internal/transport/http/handlers"
)

type Dependencies struct {
	AccessService     *accesssvc.Service
	AccountService    *accountsvc.Service
	CartService       *cartsvc.Service
	FeedbackService   *feedbacksvc.Service
	LessonPlanService *lessonplansvc.Service
	PaymentService    *paymentsvc.Service
	PurchaseService   *purchasesvc.Service
	TemplateService   *templatesvc.Service
	Verifier          *authsvc.Verifier
	AuditEnabled      bool
	UploadTimeout     time.Duration
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.AuditEnabled)
	productHandler := handlers.NewProductHandler(deps.AccessService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PurchaseService)
	cartHandler := handlers.NewCartHandler(deps.CartService)
	checkoutHandler := handlers.NewCheckoutHandler(deps.PaymentService)
	notificationHandler := handlers.NewNotificationHandler(deps.FeedbackService)
	accountHandler := handlers.NewAccountHandler(deps.AccountService)
	templateHandler := handlers.NewTemplateHandler(deps.TemplateService)
	lessonPlanHandler := handlers.NewLessonPlanHandler(deps.LessonPlanService)
	authMW := AuthMiddleware(deps.Verifier, deps.Logger)
	uploadMW := WithDeadline(uploadDeadline(deps.UploadTimeout))

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		// streams to the marketplace under its own upload timeout
		r.With(uploadMW).Post("/lesson-plans/{id}/files", lessonPlanHandler.UploadFile)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(requestTimeout))

			r.Get("/products/{id}/access", productHandler.Access)
			r.Post("/products/{id}/purchase", purchaseHandler.Initiate)

			r.Get("/purchases/{id}", purchaseHandler.Get)
			r.Put("/purchases/{id}", purchaseHandler.Update)
			r.Delete("/purchases/{id}", purchaseHandler.Cancel)

			r.Get("/cart", cartHandler.Get)
			r.Post("/cart/refresh", cartHandler.Refresh)
			r.Delete("/cart/items/{purchaseID}", cartHandler.RemoveItem)

			r.Post("/checkout/start", checkoutHandler.Start)
			r.Get("/checkout/status/{id}", checkoutHandler.Status)

			r.Get("/notifications", notificationHandler.Drain)
			r.Get("/purchase-events", notificationHandler.History)

			r.Post("/auth/mark-consent", accountHandler.MarkConsent)
			r.Get("/system-templates", templateHandler.List)
			r.Get("/system-templates/default", templateHandler.Default)
		})
	})
}

// uploadDeadline leaves headroom over the marketplace upload timeout so the
// upstream answer can still be written back.
func uploadDeadline(upstream time.Duration) time.Duration {
	if upstream <= 0 {
		upstream = 2 * time.Minute
	}
	return upstream + 30*time.Second
}
