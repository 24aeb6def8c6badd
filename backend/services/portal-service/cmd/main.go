package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/app"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/config"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/controllers"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/repositories"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/routes"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	"github.com/closeauth/mono-repo/backend/shared/go-middleware"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	wizardRepo := repositories.NewSessionRepository[*services.RegistrationFlow](cfg.WizardSessionTTL)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	registrationService := services.NewRegistrationService(
		wizardRepo,
		application.AuthClient,
		application.GeoProvider,
		application.Validator,
	)
	loginService := services.NewLoginService(application.AuthClient, application.Validator)
	contactService := services.NewContactValidationService(cfg)
	wizardCleanupService := services.NewWizardSessionCleanupService(wizardRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	healthController := controllers.NewHealthController(application)
	registrationController := controllers.NewRegistrationController(registrationService)
	loginController := controllers.NewLoginController(loginService, cfg)
	validationController := controllers.NewValidationController(contactService)
	geoController := controllers.NewGeoController(application.GeoProvider)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()
	router.Use(middleware.RequestLoggingMiddleware)

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")

	// Registration wizard
	router.HandleFunc(routes.RegisterSessions, registrationController.CreateWizard).Methods("POST")
	router.HandleFunc(routes.RegisterSession, registrationController.GetWizard).Methods("GET")
	router.HandleFunc(routes.RegisterSession, registrationController.DeleteWizard).Methods("DELETE")
	router.HandleFunc(routes.RegisterSessionFields, registrationController.SetFields).Methods("PATCH")
	router.HandleFunc(routes.RegisterSessionCountry, registrationController.SelectCountry).Methods("PUT")
	router.HandleFunc(routes.RegisterSessionState, registrationController.SelectState).Methods("PUT")
	router.HandleFunc(routes.RegisterSessionCity, registrationController.SelectCity).Methods("PUT")
	router.HandleFunc(routes.RegisterSessionNext, registrationController.Next).Methods("POST")
	router.HandleFunc(routes.RegisterSessionBack, registrationController.Back).Methods("POST")
	router.HandleFunc(routes.RegisterSessionSubmit, registrationController.Submit).Methods("POST")

	// Contact pre-checks
	router.HandleFunc(routes.RegisterEmailValid, validationController.ValidateEmail).Methods("POST")
	router.HandleFunc(routes.RegisterPhoneValid, validationController.ValidatePhone).Methods("POST")

	// Login
	router.HandleFunc(routes.Login, loginController.Login).Methods("POST")

	// Locations
	router.HandleFunc(routes.GeoCountries, geoController.Countries).Methods("GET")
	router.HandleFunc(routes.GeoStates, geoController.States).Methods("GET")
	router.HandleFunc(routes.GeoCities, geoController.Cities).Methods("GET")

	//----------------------------------------------------------------------
	// Sweep abandoned wizards via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc(config.WizardSessionSweepSchedule, func() {
		if e := wizardCleanupService.CleanupExpired(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled wizard session cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule wizard session cleanup job")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
