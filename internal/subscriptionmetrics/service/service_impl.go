package service

import (
	"context"

	"github.com/railzwaylabs/subtelemetry/internal/gateway"
	subscriptionmetricsdomain "github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         subscriptionmetricsdomain.Repository
	capabilities subscriptionmetricsdomain.CapabilityLookup
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         subscriptionmetricsdomain.Repository
	Capabilities *gateway.CapabilityCache
}

func NewService(p ServiceParam) subscriptionmetricsdomain.Service {
	return New(p.DB, p.Log, p.Repo, p.Capabilities)
}

func New(db *gorm.DB, log *zap.Logger, repo subscriptionmetricsdomain.Repository, capabilities subscriptionmetricsdomain.CapabilityLookup) *Service {
	return &Service{
		db:           db,
		log:          log.Named("subscriptionmetrics.service"),
		repo:         repo,
		capabilities: capabilities,
	}
}

func (s *Service) Metrics(ctx context.Context) (domain.SubscriptionMetrics, error) {
	subscribers, err := s.repo.SubscriberCounts(ctx, s.db)
	if err != nil {
		return domain.SubscriptionMetrics{}, err
	}
	modes, err := s.repo.RenewalModes(ctx, s.db)
	if err != nil {
		return domain.SubscriptionMetrics{}, err
	}
	frequencies, err := s.repo.Frequencies(ctx, s.db)
	if err != nil {
		return domain.SubscriptionMetrics{}, err
	}
	methods, err := s.repo.PaymentMethods(ctx, s.db)
	if err != nil {
		return domain.SubscriptionMetrics{}, err
	}
	statuses, err := s.repo.StatusCounts(ctx, s.db)
	if err != nil {
		return domain.SubscriptionMetrics{}, err
	}

	return domain.SubscriptionMetrics{
		ActiveSubscribers:   subscribers.Active,
		InactiveSubscribers: subscribers.Inactive,
		RenewalMode: domain.RenewalMode{
			Manual:    modes.Manual,
			Automatic: modes.Automatic,
		},
		Frequencies:    format.Frequencies(frequencies),
		PaymentMethods: s.paymentMethods(methods),
		ByStatus:       format.StatusCounts(statuses),
	}, nil
}

// paymentMethods attaches what the live gateway registry says about each
// method. Methods without a registered gateway stay unknown.
func (s *Service) paymentMethods(rows []domain.PaymentMethodRow) []domain.PaymentMethodBreakdown {
	out := make([]domain.PaymentMethodBreakdown, 0, len(rows))
	for _, row := range rows {
		caps := s.capabilities.Lookup(row.PaymentMethod)
		if !caps.Known {
			s.log.Debug("payment method without registered gateway", zap.String("payment_method", row.PaymentMethod))
		}
		out = append(out, domain.PaymentMethodBreakdown{
			PaymentMethod: row.PaymentMethod,
			ActiveCount:   row.ActiveCount,
			InactiveCount: row.InactiveCount,
			RenewsOffSite: domain.TristateOf(caps.Known, caps.ScheduledPayments),
			ManualOnly:    domain.TristateOf(caps.Known, !caps.Subscriptions),
		})
	}
	return out
}
