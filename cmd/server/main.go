package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mdd-forum/internal/backup"
	"mdd-forum/internal/config"
	"mdd-forum/internal/domain"
	apphttp "mdd-forum/internal/http"
	"mdd-forum/internal/repository/sqlite"
	"mdd-forum/internal/service"
	"mdd-forum/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, keeping %s", cfg.Log.Level, logger.GetLevel())
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	topicRepo := sqlite.NewTopicRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := topicRepo.Init(ctx); err != nil {
		logger.Fatalf("init topic repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := commentRepo.Init(ctx); err != nil {
		logger.Fatalf("init comment repository: %v", err)
	}
	if err := topicRepo.EnsureSeeded(ctx, seedTopics(cfg.Topics.Seed)); err != nil {
		logger.Fatalf("seed topics: %v", err)
	}

	tokenService, err := service.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	userService := service.NewUserService(userRepo, topicRepo)
	topicService := service.NewTopicService(topicRepo)
	postService := service.NewPostService(postRepo, commentRepo, topicRepo)

	var backups backup.Manager
	if cfg.Backup.Bucket != "" {
		backups, err = buildBackups(ctx, cfg, db, logger)
		if err != nil {
			logger.Fatalf("setup backups: %v", err)
		}
		if err := backups.Start(ctx); err != nil {
			logger.Fatalf("start backups: %v", err)
		}
	} else {
		logger.Info("backup bucket not set, database backups disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		topicService,
		postService,
		tokenService,
		cfg.Server.CORSOrigin,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if backups != nil {
		backups.Shutdown()
	}

	logger.Info("bye")
}

func seedTopics(entries []string) []domain.Topic {
	topics := make([]domain.Topic, 0, len(entries))
	for _, entry := range entries {
		title, description := config.ParseTopic(entry)
		if title == "" {
			continue
		}
		topics = append(topics, domain.Topic{Title: title, Description: description})
	}
	return topics
}

func buildBackups(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (backup.Manager, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Backup.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Backup.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Backup.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Backup.Bucket, cfg.Backup.Region)

	snapshot := func(ctx context.Context, dest string) error {
		return sqlite.Snapshot(ctx, db, dest)
	}
	return backup.NewManager(backup.Config{
		Bucket:    cfg.Backup.Bucket,
		KeyPrefix: cfg.Backup.KeyPrefix,
		Interval:  cfg.Backup.Interval,
		Retain:    cfg.Backup.Retain,
		WorkDir:   cfg.Backup.WorkDir,
		Logger:    logger,
	}, snapshot, storage.NewS3Service(client)), nil
}
