package service

import (
	"context"

	productmetricsdomain "github.com/railzwaylabs/subtelemetry/internal/productmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/settings"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    productmetricsdomain.Repository
	gifting productmetricsdomain.GiftingSource
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     productmetricsdomain.Repository
	Settings *settings.Reader
}

func NewService(p ServiceParam) productmetricsdomain.Service {
	return New(p.DB, p.Log, p.Repo, p.Settings)
}

func New(db *gorm.DB, log *zap.Logger, repo productmetricsdomain.Repository, gifting productmetricsdomain.GiftingSource) *Service {
	return &Service{
		db:      db,
		log:     log.Named("productmetrics.service"),
		repo:    repo,
		gifting: gifting,
	}
}

func empty() domain.ProductMetrics {
	return domain.ProductMetrics{Frequencies: []domain.FrequencyBucket{}}
}

func (s *Service) Metrics(ctx context.Context) (domain.ProductMetrics, error) {
	terms, err := s.repo.ProductTypeTerms(ctx, s.db)
	if err != nil {
		s.log.Warn("product type lookup failed", zap.Error(err))
		return empty(), nil
	}
	if !terms.Resolved() {
		s.log.Info("subscription product types not registered")
		return empty(), nil
	}

	rows, err := s.repo.Frequencies(ctx, s.db, terms)
	if err != nil {
		return domain.ProductMetrics{}, err
	}
	metrics := domain.ProductMetrics{Frequencies: format.Frequencies(rows)}

	gifting, err := s.gifting.Gifting(ctx)
	if err != nil {
		return domain.ProductMetrics{}, err
	}
	if !gifting.Enabled {
		return metrics, nil
	}

	count, err := s.repo.GiftableCount(ctx, s.db, terms, gifting.DefaultEnabled)
	if err != nil {
		return domain.ProductMetrics{}, err
	}
	metrics.GiftableCount = count
	return metrics, nil
}
