package gateway

import (
	"github.com/railzwaylabs/subtelemetry/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("gateway",
	fx.Provide(ProvideRegistry),
	fx.Provide(NewCapabilityCache),
	fx.Invoke(WatchEnabled),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// ProvideRegistry enables the configured gateways. Unknown ids are skipped
// with a warning so a typo does not stop the service.
func ProvideRegistry(p Params) *Registry {
	log := p.Log.Named("gateway.registry")
	registry := NewRegistry(Catalog()...)
	for _, id := range p.Config.Gateways.Enabled {
		if err := registry.Enable(id); err != nil {
			log.Warn("skipping gateway", zap.String("gateway", id), zap.Error(err))
		}
	}
	return registry
}

type WatchParams struct {
	fx.In

	Lc       fx.Lifecycle
	Log      *zap.Logger
	Watcher  *config.Watcher
	Registry *Registry
}

// WatchEnabled applies edits to gateways.enabled in the config file to the
// live registry.
func WatchEnabled(p WatchParams) {
	log := p.Log.Named("gateway.registry")
	p.Watcher.OnChange(func(cfg config.Config, err error) {
		if err != nil {
			log.Warn("config reload rejected", zap.Error(err))
			return
		}
		if err := p.Registry.Sync(cfg.Gateways.Enabled); err != nil {
			log.Warn("skipping gateway", zap.Error(err))
		}
		log.Info("gateways reloaded", zap.Strings("enabled", p.Registry.Enabled()))
	})
	p.Lc.Append(fx.StartHook(p.Watcher.Start))
}
