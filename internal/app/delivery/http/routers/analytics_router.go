package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachAnalyticsRoutes(router chi.Router, middlewares *middlewares.Middlewares, analyticsController *controllers.AnalyticsController) {
	router.Use(middlewares.OptionalAuthenticate)

	router.Post("/generate", analyticsController.Generate)
	router.Get("/dashboard", analyticsController.Dashboard)
	router.Get("/metrics/{domain}", analyticsController.Metrics)
	router.Get("/", analyticsController.List)
	router.Get("/{id}", analyticsController.FindByID)
	router.With(middlewares.RequireRoles(constvars.RoleAdmin)).Delete("/{id}", analyticsController.Delete)
}
