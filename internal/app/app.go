package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "casasmart/docs"
	"casasmart/internal/config"
	"casasmart/internal/db"
	"casasmart/internal/handlers"
	"casasmart/internal/logger"
	"casasmart/internal/middleware"
	"casasmart/internal/pdf"
	"casasmart/internal/repositories"
	"casasmart/internal/repositories/memstore"
	"casasmart/internal/routes"
	"casasmart/internal/services"
)

type repos struct {
	quotes   repositories.QuoteRepository
	projects repositories.ProjectRepository
	invoices repositories.InvoiceRepository
	bookings repositories.BookingRepository
	users    repositories.UserRepository
}

func postgresRepos(conn *sql.DB) repos {
	return repos{
		quotes:   repositories.NewQuoteRepository(conn),
		projects: repositories.NewProjectRepository(conn),
		invoices: repositories.NewInvoiceRepository(conn),
		bookings: repositories.NewBookingRepository(conn),
		users:    repositories.NewUserRepository(conn),
	}
}

func memoryRepos() repos {
	st := memstore.New()
	return repos{
		quotes:   st.Quotes(),
		projects: st.Projects(),
		invoices: st.Invoices(),
		bookings: st.Bookings(),
		users:    st.Users(),
	}
}

// Server bundles the router with what has to be closed on shutdown.
type Server struct {
	Router *gin.Engine
	cfg    *config.Config
	log    *zap.Logger
	closer []func() error
}

// New wires config -> storage -> services -> handlers.
// An empty database url runs on the in-memory store (dev and tests).
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, log: log}

	// === Storage ===
	var (
		r      repos
		pinger handlers.Pinger
	)
	if cfg.Database.DSN != "" {
		conn, err := db.Connect(ctx, cfg.Database.DSN, log)
		if err != nil {
			return nil, err
		}
		s.closer = append(s.closer, conn.Close)
		if err := db.Migrate(conn, cfg.Database.MigrationsPath, log); err != nil {
			s.Close()
			return nil, err
		}
		r = postgresRepos(conn)
		pinger = conn
	} else {
		log.Warn("DATABASE_URL is empty, using in-memory store")
		r = memoryRepos()
	}

	// === Rate limit ===
	limiter := services.NoLimit()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closer = append(s.closer, rdb.Close)
		limiter = services.NewRedisLimiter(rdb, "booking", cfg.BookingLimit.Max, cfg.BookingLimit.Window)
	}

	// === Notifications ===
	notifiers := services.MultiNotifier{}
	if cfg.Email.SMTPHost != "" {
		notifiers = append(notifiers, services.NewEmailNotifier(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.OpsEmails,
			log,
		))
	}
	tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID, log)
	if err != nil {
		// бот не обязателен
		log.Warn("telegram disabled", zap.Error(err))
	} else {
		notifiers = append(notifiers, tg)
	}

	// === Services ===
	authService := services.NewAuthService(r.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminPhone); err != nil {
		s.Close()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	quoteService := services.NewQuoteService(r.quotes, r.projects, r.invoices, log)
	projectService := services.NewProjectService(r.projects, log)
	invoiceService := services.NewInvoiceService(r.invoices, r.projects, r.quotes, log)
	bookingService := services.NewBookingService(r.bookings, limiter, notifiers, log)
	portalService := services.NewPortalService(quoteService, r.projects, r.invoices, notifiers, log)

	pdfGen := pdf.NewDocumentGenerator(cfg.PDF.FontPath)

	// === Gin ===
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.AccessLog(log))
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, log),
		Booking: handlers.NewBookingHandler(bookingService),
		Quote:   handlers.NewQuoteHandler(quoteService, pdfGen),
		Project: handlers.NewProjectHandler(projectService, invoiceService),
		Invoice: handlers.NewInvoiceHandler(invoiceService, pdfGen),
		Portal:  handlers.NewPortalHandler(portalService, pdfGen),
		Health:  handlers.Healthz(pinger),
	}, []byte(cfg.Auth.JWTSecret))

	s.Router = router
	return s, nil
}

func (s *Server) Close() {
	for i := len(s.closer) - 1; i >= 0; i-- {
		if err := s.closer[i](); err != nil {
			s.log.Warn("close failed", zap.Error(err))
		}
	}
	s.closer = nil
}

// Run serves until SIGINT/SIGTERM and then shuts down gracefully.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
