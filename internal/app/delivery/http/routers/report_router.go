package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachReportRoutes(router chi.Router, middlewares *middlewares.Middlewares, reportController *controllers.ReportController) {
	router.Use(middlewares.OptionalAuthenticate)

	router.Post("/", reportController.Generate)
	router.Get("/", reportController.List)
	router.Get("/templates", reportController.FindTemplates)
	router.Post("/templates/{templateId}/generate", reportController.GenerateFromTemplate)
	router.Get("/{id}", reportController.FindByID)
	router.Put("/{id}", reportController.Update)
	router.Delete("/{id}", reportController.Delete)
	router.Get("/{id}/export", reportController.Export)
}
