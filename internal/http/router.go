package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/qaztriage/backend/internal/ai"
	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/config"
	"github.com/qaztriage/backend/internal/db"
	"github.com/qaztriage/backend/internal/geocode"
	"github.com/qaztriage/backend/internal/http/handlers"
	"github.com/qaztriage/backend/internal/http/middleware"

	_ "github.com/qaztriage/backend/docs"
)

func Router(cfg config.Config, store *db.Store, clf ai.Classifier, rules *classifier.RuleClassifier, geocoder geocode.Geocoder, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:           store,
		Classifier:      clf,
		Rules:           rules,
		Geocoder:        geocoder,
		Validator:       validator.New(),
		Logger:          logger,
		HomeCountry:     cfg.HomeCountry,
		AttachmentsRoot: cfg.AttachmentsRoot,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/processed", h.ProcessedList)
		api.GET("/managers", h.ManagersList)
		api.GET("/business-units", h.BusinessUnitsList)
		api.GET("/runs/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
		admin.POST("/process", h.Process)
		admin.POST("/debug/classify", h.DebugClassify)
		admin.POST("/business-units/regeocode", h.RegeocodeBusinessUnits)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
