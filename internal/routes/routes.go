package routes

import (
	"clinicportal/internal/handlers"
	"clinicportal/internal/middleware"
	"clinicportal/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	patientHandler *handlers.PatientHandler,
	clinicianHandler *handlers.ClinicianHandler,
) *gin.Engine {

	// ---- public
	r.POST("/logout", authHandler.Logout)
	r.GET("/whoami", authHandler.Whoami)
	r.GET("/me", authHandler.Whoami) // алиас для фронта

	patientAuth := r.Group("/patient")
	{
		patientAuth.POST("/register", authHandler.StartRegistration(models.RolePatient))
		patientAuth.GET("/verify", authHandler.Verify(models.RolePatient))
		patientAuth.POST("/register/complete", authHandler.CompleteRegistration(models.RolePatient))
		patientAuth.POST("/login", authHandler.Login(models.RolePatient))
	}

	clinicianAuth := r.Group("/clinician")
	{
		clinicianAuth.POST("/register", authHandler.StartRegistration(models.RoleClinician))
		clinicianAuth.GET("/verify", authHandler.Verify(models.RoleClinician))
		clinicianAuth.POST("/register/complete", authHandler.CompleteRegistration(models.RoleClinician))
		clinicianAuth.POST("/login", authHandler.Login(models.RoleClinician))
	}

	// ---- patient (session)
	patient := r.Group("/", middleware.RequireRole(models.RolePatient))
	{
		patient.POST("/recommend", patientHandler.Recommend)
		patient.POST("/feedback", patientHandler.Feedback)
		patient.GET("/user-charts/:id", patientHandler.Charts)
	}

	// ---- clinician (session)
	clinician := r.Group("/", middleware.RequireRole(models.RoleClinician))
	{
		clinician.GET("/clinician-data", clinicianHandler.Data)
		clinician.GET("/export-pdf", clinicianHandler.ExportPDF)
	}

	return r
}
