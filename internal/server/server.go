package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appointmentdomain "github.com/smallbiznis/faktura/internal/appointment/domain"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	userdomain "github.com/smallbiznis/faktura/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CorrelationMiddleware())
	r.Use(LoggingMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	companySvc     companydomain.Service
	customerSvc    customerdomain.Service
	catalogSvc     catalogdomain.Service
	appointmentSvc appointmentdomain.Service
	userSvc        userdomain.Service
	invoiceSvc     invoicedomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	CompanySvc     companydomain.Service
	CustomerSvc    customerdomain.Service
	CatalogSvc     catalogdomain.Service
	AppointmentSvc appointmentdomain.Service
	UserSvc        userdomain.Service
	InvoiceSvc     invoicedomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		companySvc:     p.CompanySvc,
		customerSvc:    p.CustomerSvc,
		catalogSvc:     p.CatalogSvc,
		appointmentSvc: p.AppointmentSvc,
		userSvc:        p.UserSvc,
		invoiceSvc:     p.InvoiceSvc,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/company", s.GetCompany)
	api.PUT("/company", s.UpdateCompany)

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	api.POST("/services", s.CreateService)
	api.GET("/services", s.ListServices)
	api.GET("/services/:id", s.GetServiceByID)
	api.PUT("/services/:id", s.UpdateService)
	api.DELETE("/services/:id", s.DeleteService)

	api.POST("/appointments", s.CreateAppointment)
	api.GET("/appointments", s.ListAppointments)
	api.GET("/appointments/:id", s.GetAppointmentByID)
	api.PUT("/appointments/:id", s.UpdateAppointment)
	api.POST("/appointments/:id/confirm", s.ConfirmAppointment)
	api.DELETE("/appointments/:id", s.DeleteAppointment)

	api.POST("/users", s.CreateUser)
	api.GET("/users", s.ListUsers)
	api.GET("/users/:id", s.GetUserByID)
	api.PUT("/users/:id", s.UpdateUser)
	api.DELETE("/users/:id", s.DeleteUser)

	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.PUT("/invoices/:id/status", s.UpdateInvoiceStatus)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http.listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
