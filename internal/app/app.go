package app

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/config"
	"github.com/comptoir-lab/salesboard/internal/db"
	internalhttp "github.com/comptoir-lab/salesboard/internal/http"
	"github.com/comptoir-lab/salesboard/internal/models"
	"github.com/comptoir-lab/salesboard/internal/security"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	appCfg, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// CreateAdmin creates an admin profile, for bootstrapping a fresh install.
func CreateAdmin(ctx context.Context, cfg config.AppConfig, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("app: missing email")
	}
	if len(password) < 6 {
		return errors.New("app: password must be at least 6 characters")
	}

	appCfg, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	var existing models.Profile
	errFind := conn.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if errFind == nil {
		return fmt.Errorf("app: profile %s already exists", email)
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return errFind
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	profile := models.Profile{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if errCreate := conn.WithContext(ctx).Create(&profile).Error; errCreate != nil {
		return errCreate
	}
	log.WithFields(log.Fields{"email": email, "profile_id": profile.ID}).Info("admin profile created")
	return nil
}

// RunServer boots the API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	appCfg, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}

	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	var cache *redis.Client
	if addr := strings.TrimSpace(appCfg.Redis.Addr); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		if errPing := cache.Ping(ctx).Err(); errPing != nil {
			log.WithError(errPing).Warn("redis unreachable, dashboard caching disabled")
			cache = nil
		}
	}

	engine := internalhttp.NewRouter(conn, cache, appCfg)

	server := &nethttp.Server{
		Addr:    appCfg.Server.Addr,
		Handler: engine,
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Infof("starting salesboard on %s", appCfg.Server.Addr)
	if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, nethttp.ErrServerClosed) {
		return errServe
	}
	return nil
}
