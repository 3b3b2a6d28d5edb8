package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/config"
	"github.com/shopkit/shopadmin/internal/db"
	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/handler"
	"github.com/shopkit/shopadmin/internal/job"
	"github.com/shopkit/shopadmin/internal/mail"
	"github.com/shopkit/shopadmin/internal/middleware"
	"github.com/shopkit/shopadmin/internal/repo"
	"github.com/shopkit/shopadmin/internal/schedule"
	"github.com/shopkit/shopadmin/internal/seed"
	"github.com/shopkit/shopadmin/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "shopadmin",
		Short: "shopadmin backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run shopadmin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, conn)
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "insert the bootstrap super admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			return seed.Run(context.Background(), repo.NewAccountRepo(conn))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.String("file_store", cfg.FileStore.Type),
	)

	accountRepo := repo.NewAccountRepo(conn)
	productRepo := repo.NewProductRepo(conn)
	blogRepo := repo.NewBlogRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	mailSender := mail.NewSender(cfg.Mail)

	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(accountRepo, mailSender, []byte(cfg.JWTSecret), jwtTTL)
	productService := service.NewProductService(productRepo, store)
	blogService := service.NewBlogService(blogRepo, store)
	staffService := service.NewStaffService(accountRepo)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Products:      handler.NewProductHandler(productService, store, cfg.BaseURL),
		Blogs:         handler.NewBlogHandler(blogService, store, cfg.BaseURL),
		Staff:         handler.NewStaffHandler(staffService, store, cfg.BaseURL),
		Files:         handler.NewFileHandler(store),
		JWTSecret:     []byte(cfg.JWTSecret),
		RateLimitSpan: time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewOTPCleanupJob(accountRepo), "0 * * * *"); err != nil {
		return fmt.Errorf("schedule otp cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
