package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachPatientRoutes(router chi.Router, middlewares *middlewares.Middlewares, patientController *controllers.PatientController) {
	staff := middlewares.RequireRoles(constvars.RoleDoctor, constvars.RoleAdmin)

	router.Use(middlewares.Authenticate)

	router.Post("/", patientController.Register)
	router.With(staff).Get("/search", patientController.Search)
	router.With(staff).Get("/stats", patientController.Stats)
	router.Get("/health-card/{healthCardNumber}", patientController.FindByHealthCardNumber)
	router.Get("/user/{userId}", patientController.FindByUserID)

	router.Route("/{patientId}", func(r chi.Router) {
		r.Get("/", patientController.FindByID)
		r.Put("/", patientController.Update)
		r.With(middlewares.RequireRoles(constvars.RoleAdmin)).Delete("/", patientController.Delete)

		r.Get("/history", patientController.FindMedicalHistory)
		r.With(staff).Post("/records", patientController.AddMedicalRecord)
		r.With(staff).Put("/records/{recordId}", patientController.UpdateMedicalRecord)
		r.With(staff).Delete("/records/{recordId}", patientController.DeleteMedicalRecord)

		r.Get("/allergies", patientController.FindAllergies)
		r.Put("/allergies", patientController.UpdateAllergies)
		r.Get("/medications", patientController.FindMedications)
		r.With(staff).Put("/medications", patientController.UpdateMedications)

		r.Get("/documents", patientController.FindDocuments)
		r.Post("/documents", patientController.UploadDocument)
		r.Get("/documents/{documentId}", patientController.GetDocumentURL)
	})
}
