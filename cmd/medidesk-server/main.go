package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medidesk/medidesk/internal/config"
	"github.com/medidesk/medidesk/internal/domain/adminnote"
	"github.com/medidesk/medidesk/internal/domain/appointment"
	"github.com/medidesk/medidesk/internal/domain/lab"
	"github.com/medidesk/medidesk/internal/domain/orders"
	"github.com/medidesk/medidesk/internal/domain/patient"
	"github.com/medidesk/medidesk/internal/domain/payment"
	"github.com/medidesk/medidesk/internal/domain/pharmacy"
	"github.com/medidesk/medidesk/internal/domain/stats"
	"github.com/medidesk/medidesk/internal/domain/user"
	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/db"
	"github.com/medidesk/medidesk/internal/platform/middleware"
	"github.com/medidesk/medidesk/internal/platform/password"
	"github.com/medidesk/medidesk/internal/platform/qr"
	"github.com/medidesk/medidesk/internal/platform/upload"
	"github.com/medidesk/medidesk/internal/platform/ws"
	"github.com/medidesk/medidesk/pkg/validation"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medidesk-server",
		Short: "Clinic operations API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// seedUsers are the accounts created by `seed`: the primary admin first so it
// lands on id 1 in a fresh database, then one account per department. The
// default passwords exist for local development and must be changed.
var seedUsers = []struct {
	Username string
	FullName string
	Role     auth.Role
	Password string
}{
	{"admin", "Primary Administrator", auth.RoleAdmin, "admin123"},
	{"doctor", "Default Doctor", auth.RoleDoctor, "doctor123"},
	{"reception", "Default Receptionist", auth.RoleReception, "reception123"},
	{"lab", "Default Lab Technician", auth.RoleLab, "lab123"},
	{"pharmacy", "Default Pharmacist", auth.RolePharmacy, "pharmacy123"},
	{"nurse", "Default Nurse", auth.RoleNurse, "nurse123"},
	{"ultrasound", "Default Sonographer", auth.RoleUltrasound, "ultrasound123"},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the primary admin and one default user per role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := user.NewRepoPG(db.NewStore(pool))
			for _, su := range seedUsers {
				if existing, err := repo.GetByUsername(ctx, su.Username); err == nil && existing != nil {
					fmt.Printf("skip %-12s (exists)\n", su.Username)
					continue
				}
				hash, err := password.Hash(su.Password)
				if err != nil {
					return err
				}
				u := &user.User{
					Username:     su.Username,
					PasswordHash: hash,
					FullName:     su.FullName,
					Role:         su.Role,
					Active:       true,
				}
				if err := repo.Create(ctx, u); err != nil {
					return fmt.Errorf("seed %s: %w", su.Username, err)
				}
				fmt.Printf("created %-12s id=%d role=%s\n", u.Username, u.ID, u.Role)
			}
			fmt.Println("Seed complete. Change the default passwords before any real use.")
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	store := db.NewStore(pool)

	saver := upload.NewSaver(cfg.UploadDir, cfg.MaxUploadBytes)
	if err := saver.EnsureDir(); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to prepare upload directory")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger, cfg.IsDev())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Shared platform pieces
	issuer := auth.NewIssuer(cfg.JWTSecret)
	recorder := activity.NewRecorder(activity.NewPGSink(store), logger)
	hub := ws.NewHub(logger)

	// Services
	userSvc := user.NewService(user.NewRepoPG(store), issuer, recorder, hub)
	patientSvc := patient.NewService(patient.NewRepoPG(store), patient.NewRecordRepoPG(store), recorder, hub)
	apptSvc := appointment.NewService(appointment.NewRepoPG(store), recorder, hub)
	paymentSvc := payment.NewService(payment.NewRepoPG(store), qr.NewEncoder(cfg.PaymentAccount),
		cfg.QRPolicy, recorder, hub, logger)
	labSvc := lab.NewService(lab.NewRepoPG(store), lab.NewStatsRepoPG(store), recorder, hub, logger)
	pharmacySvc := pharmacy.NewService(pharmacy.NewPrescriptionRepoPG(store),
		pharmacy.NewInventoryRepoPG(store), pharmacy.NewInteractionRepoPG(store), recorder, hub)
	ordersSvc := orders.NewService(orders.NewNursingRepoPG(store), orders.NewUltrasoundRepoPG(store),
		saver, recorder, hub)
	noteSvc := adminnote.NewService(adminnote.NewRepoPG(store), recorder, hub)
	statsSvc := stats.NewService(stats.NewRepoPG(store))

	// Public surface
	userHandler := user.NewHandler(userSvc)
	userHandler.RegisterPublicRoutes(e)
	e.GET("/health", db.HealthHandler(pool))
	e.Static("/uploads", cfg.UploadDir)

	// Authenticated API
	api := e.Group("/api", auth.Middleware(issuer))
	userHandler.RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)
	payment.NewHandler(paymentSvc).RegisterRoutes(api)
	lab.NewHandler(labSvc).RegisterRoutes(api)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(api)
	orders.NewHandler(ordersSvc).RegisterRoutes(api)
	adminnote.NewHandler(noteSvc).RegisterRoutes(api)
	stats.NewHandler(statsSvc).RegisterRoutes(api)
	activity.NewHandler(recorder).RegisterRoutes(api)

	// WebSocket endpoint; the token rides the query string here.
	wsGroup := e.Group("", auth.Middleware(issuer))
	ws.NewHandler(hub).RegisterRoutes(wsGroup)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
