package service

import (
	"context"

	ordermetricsdomain "github.com/railzwaylabs/subtelemetry/internal/ordermetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/format"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo ordermetricsdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo ordermetricsdomain.Repository
}

func NewService(p ServiceParam) ordermetricsdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("ordermetrics.service"),
		repo: p.Repo,
	}
}

func (s *Service) Trends(ctx context.Context, w timewindow.Window) (domain.OrderTrends, error) {
	trends := domain.OrderTrends{
		Window: domain.Window{Start: w.StartString(), End: w.EndString()},
	}

	initial, err := s.repo.TypeTotals(ctx, s.db, w, ordermetricsdomain.OrderTypeInitial)
	if err != nil {
		return domain.OrderTrends{}, err
	}
	quantities, err := s.repo.InitialQuantities(ctx, s.db, w)
	if err != nil {
		return domain.OrderTrends{}, err
	}
	trends.ByType.Initial = format.MergeInitial(initial, quantities)

	series := map[ordermetricsdomain.OrderType]*[]domain.TypePoint{
		ordermetricsdomain.OrderTypeRenewal:     &trends.ByType.Renewal,
		ordermetricsdomain.OrderTypeSwitch:      &trends.ByType.Switch,
		ordermetricsdomain.OrderTypeResubscribe: &trends.ByType.Resubscribe,
	}
	for kind, dst := range series {
		rows, err := s.repo.TypeTotals(ctx, s.db, w, kind)
		if err != nil {
			return domain.OrderTrends{}, err
		}
		*dst = format.TypeSeries(rows)
	}

	gateways, err := s.repo.GatewayTotals(ctx, s.db, w)
	if err != nil {
		return domain.OrderTrends{}, err
	}
	trends.Gateways = format.GatewaySeries(gateways)

	gmv, err := s.repo.StoreGMV(ctx, s.db, w)
	if err != nil {
		return domain.OrderTrends{}, err
	}
	trends.StoreGMV = format.VolumeSeries(gmv)

	s.log.Debug("order trends aggregated",
		zap.String("window_start", trends.Window.Start),
		zap.String("window_end", trends.Window.End),
		zap.Int("gateways", len(trends.Gateways)),
	)
	return trends, nil
}
