package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"casasmart/internal/authz"
	"casasmart/internal/handlers"
	"casasmart/internal/middleware"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Booking *handlers.BookingHandler
	Quote   *handlers.QuoteHandler
	Project *handlers.ProjectHandler
	Invoice *handlers.InvoiceHandler
	Portal  *handlers.PortalHandler
	Health  gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, h Handlers, jwtSecret []byte) *gin.Engine {
	// ---- public
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/login", h.Auth.Login)
	r.POST("/register", h.Auth.Register)
	r.POST("/bookings", h.Booking.Submit)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	r.GET("/me", h.Auth.Me)

	// PORTAL (любой вошедший клиент с телефоном)
	portal := r.Group("/portal", middleware.RequirePhone())
	{
		portal.GET("/dashboard", h.Portal.Dashboard)
		portal.GET("/proposals", h.Portal.ListProposals)
		portal.GET("/proposals/:id", h.Portal.GetProposal)
		portal.GET("/proposals/:id/pdf", h.Portal.ProposalPDF)
		portal.POST("/proposals/:id/accept", h.Portal.AcceptProposal)
		portal.POST("/proposals/:id/reject", h.Portal.RejectProposal)
		portal.GET("/vault", h.Portal.Vault)
		portal.GET("/financials", h.Portal.Financials)
		portal.GET("/invoices/:id/pdf", h.Portal.InvoicePDF)
	}

	// ---- back office (Admin)
	admin := r.Group("/", middleware.RequireRoles(authz.RoleAdmin))

	users := admin.Group("/users")
	{
		users.POST("", h.Auth.CreateUser)
	}

	bookings := admin.Group("/bookings")
	{
		bookings.GET("", h.Booking.List)
		bookings.PATCH("/:id/status", h.Booking.UpdateStatus)
	}

	quotes := admin.Group("/quotes")
	{
		quotes.POST("", h.Quote.Create)
		quotes.GET("", h.Quote.List)
		quotes.GET("/:id", h.Quote.Get)
		quotes.PUT("/:id", h.Quote.Update)
		quotes.DELETE("/:id", h.Quote.Delete)
		quotes.GET("/:id/pdf", h.Quote.PDF)
		quotes.POST("/:id/send", h.Quote.Send)
		quotes.POST("/:id/accept", h.Quote.Accept)
		quotes.POST("/:id/reject", h.Quote.Reject)
		quotes.POST("/:id/revoke", h.Quote.Revoke)
	}

	projects := admin.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.Get)
		projects.POST("/:id/advance", h.Project.Advance)
		projects.POST("/:id/retreat", h.Project.Retreat)
		projects.POST("/:id/terminate", h.Project.Terminate)
		projects.PUT("/:id/technician", h.Project.ReassignTechnician)
		projects.PUT("/:id/credentials", h.Project.SetCredentials)
		projects.POST("/:id/invoices", h.Project.IssueInvoice)
		projects.GET("/:id/invoices", h.Project.ListInvoices)
	}

	invoices := admin.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/pdf", h.Invoice.PDF)
		invoices.POST("/:id/payments", h.Invoice.RecordPayment)
		invoices.PUT("/:id", h.Invoice.Adjust)
	}

	return r
}
