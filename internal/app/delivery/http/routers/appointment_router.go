package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.Use(middlewares.Authenticate)

	router.Post("/", appointmentController.Book)
	router.Get("/", appointmentController.FindAll)
	router.Get("/slots", appointmentController.AvailableSlots)
	router.Get("/user/{userId}", appointmentController.FindByUserID)
	router.Get("/{id}", appointmentController.FindByID)
	router.Put("/{id}", appointmentController.Update)
	router.Patch("/{id}/cancel", appointmentController.Cancel)
	router.With(middlewares.RequireRoles(constvars.RoleDoctor, constvars.RoleAdmin)).Patch("/{id}/complete", appointmentController.Complete)
}
