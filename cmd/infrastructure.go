package cmd

import (
	"context"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// infrastructure holds the optional backends installed as service singletons
type infrastructure struct {
	cache  services.CacheService
	events services.EventPublisher
	audit  services.AuditService
}

// startInfrastructure installs images, cache, mail, events and the audit store.
// Each backend falls back to a local or no-op implementation when unconfigured.
func startInfrastructure(ctx context.Context, cfg *config.Config, db *gorm.DB) (*infrastructure, error) {
	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		services.InitImageService(s3Service)
		zap.L().Info("Product images stored in S3", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		services.InitLocalImageService(cfg.UploadDir)
		zap.L().Info("Product images stored on disk", zap.String("dir", cfg.UploadDir))
	}

	cache, err := services.InitCacheService(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	if _, err := services.InitEmailService(ctx, cfg); err != nil {
		_ = cache.Close()
		return nil, err
	}

	events := services.InitEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)

	audit, err := services.InitAuditService(ctx, cfg.MongoURI, cfg.MongoDatabase, db)
	if err != nil {
		_ = cache.Close()
		_ = events.Close()
		return nil, err
	}

	zap.L().Info("Infrastructure ready",
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Bool("kafka", len(cfg.KafkaBrokers) > 0),
		zap.Bool("mongo", cfg.MongoURI != ""),
		zap.Bool("ses", cfg.MailFrom != ""),
	)
	return &infrastructure{cache: cache, events: events, audit: audit}, nil
}

// close flushes pending events and releases connections
func (i *infrastructure) close(ctx context.Context) {
	if err := i.events.Close(); err != nil {
		zap.L().Warn("failed to close event publisher", zap.Error(err))
	}
	if err := i.cache.Close(); err != nil {
		zap.L().Warn("failed to close cache", zap.Error(err))
	}
	if m, ok := i.audit.(*services.MongoAuditService); ok {
		if err := m.Close(context.WithoutCancel(ctx)); err != nil {
			zap.L().Warn("failed to close audit store", zap.Error(err))
		}
	}
}
