package handler

import (
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Products   *ProductHandler
	Bookings   *BookingHandler
	Activities *ActivityHandler
	Auth       *AuthHandler
	Reports    *ReportHandler
	Readiness  *ReadinessHandler
}

type RouterOptions struct {
	ServiceName string
	BodyLimit   int64
	// AuthRequired закрывает изменяющие маршруты для запросов без токена
	AuthRequired bool
}

func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	// JSON логирование HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware(opts.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:          5 * time.Minute,
	}))

	router.GET("/health", Health)
	if h.Readiness != nil {
		router.GET("/health/ready", h.Readiness.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(BodyLimit(opts.BodyLimit))
	api.Use(authMiddleware.Identify())

	write := []gin.HandlerFunc{}
	if opts.AuthRequired {
		write = append(write, authMiddleware.RequireUser())
	}
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handler)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.GetAllProducts)
		products.POST("", guarded(h.Products.CreateProduct)...)
		products.GET("/:id", h.Products.GetProduct)
		products.PUT("/:id", guarded(h.Products.UpdateProduct)...)
		products.DELETE("/:id", guarded(h.Products.DeleteProduct)...)
	}

	bookings := api.Group("/bookings")
	{
		bookings.GET("", h.Bookings.GetAllBookings)
		bookings.POST("", guarded(h.Bookings.CreateBooking)...)
		bookings.GET("/:id", h.Bookings.GetBooking)
		bookings.PUT("/:id", guarded(h.Bookings.UpdateBooking)...)
		bookings.DELETE("/:id", guarded(h.Bookings.DeleteBooking)...)
	}

	activities := api.Group("/activities")
	{
		activities.GET("", h.Activities.GetActivities)
		activities.POST("", guarded(h.Activities.CreateActivity)...)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/summary", h.Reports.GetSummary)
		reports.GET("/summary/pdf", h.Reports.GetSummaryPDF)
		reports.GET("/revenue", h.Reports.GetRevenue)
	}

	return router
}
