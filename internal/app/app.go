package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"clinicportal/internal/config"
	"clinicportal/internal/handlers"
	"clinicportal/internal/middleware"
	"clinicportal/internal/pdf"
	"clinicportal/internal/repositories"
	"clinicportal/internal/routes"
	"clinicportal/internal/secrets"
	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Конфигурация не загружена: ", err)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Redis (сессии, pre-auth, lockout — общие для всех процессов) ===
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Ошибка подключения к Redis: ", err)
	}

	// === Repos ===
	identityRepo := repositories.NewIdentityRepository(db)
	recordRepo := repositories.NewRecordRepository(db)
	sessionRepo := repositories.NewSessionRepository(rdb)

	// === Services ===
	codeService, err := secrets.NewCodeService(cfg.Security.CodePepper)
	if err != nil {
		log.Fatal("Секреты не настроены: ", err)
	}
	tokenService := services.NewTokenService(cfg.Security.TokenSecret)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	authService := services.NewAuthService(
		identityRepo,
		sessionRepo,
		codeService,
		tokenService,
		emailService,
		cfg.Server.BaseURL,
	)
	patientService := services.NewPatientService(recordRepo)
	reportService := services.NewReportService(recordRepo, pdf.NewReportGenerator())

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	patientHandler := handlers.NewPatientHandler(patientService)
	clinicianHandler := handlers.NewClinicianHandler(reportService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SessionMiddleware(sessionRepo))

	routes.SetupRoutes(router, authHandler, patientHandler, clinicianHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
