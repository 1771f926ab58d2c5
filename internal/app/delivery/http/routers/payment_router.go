package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	// Stripe redirects the browser here without a session token.
	router.Get("/checkout-success", paymentController.CheckoutSuccess)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate)

		r.Get("/unpaid/{patientId}", paymentController.FindUnpaidBills)
		r.Get("/history/{patientId}", paymentController.FindPaymentHistory)
		r.With(middlewares.RequireRoles(constvars.RoleAdmin)).Get("/stats", paymentController.Stats)
		r.Get("/summary/{patientId}", paymentController.Summary)
		r.Post("/process", paymentController.ProcessPayment)
		r.Post("/create-intent", paymentController.CreatePaymentIntent)
		r.Post("/confirm", paymentController.ConfirmPayment)
		r.Post("/create-checkout-session", paymentController.CreateCheckoutSession)
		r.Get("/{billId}", paymentController.FindByID)
	})
}
