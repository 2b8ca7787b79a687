// Package settings reads store options.
package settings

import (
	"context"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("settings",
	fx.Provide(NewReader),
)

const (
	OptionGiftingEnabled = "woocommerce_subscriptions_gifting_enabled"
	OptionGiftingDefault = "woocommerce_subscriptions_gifting_default_option"

	GiftingEnabledForAll  = "enabled_for_all"
	GiftingDisabledForAll = "disabled_for_all"
)

// Gifting is the store-wide gifting configuration.
type Gifting struct {
	Enabled bool
	// DefaultEnabled applies to products without their own override.
	DefaultEnabled bool
}

type Reader struct {
	db     *gorm.DB
	tables storage.Tables
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Tables storage.Tables
}

func NewReader(p Params) *Reader {
	return &Reader{db: p.DB, tables: p.Tables}
}

// Option returns the stored value and whether the option exists.
func (r *Reader) Option(ctx context.Context, name string) (string, bool, error) {
	var rows []storage.Option
	err := r.db.WithContext(ctx).
		Table(r.tables.Options).
		Where("option_name = ?", name).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].OptionValue, true, nil
}

// Gifting treats a missing toggle as off and a missing default as
// disabled_for_all.
func (r *Reader) Gifting(ctx context.Context) (Gifting, error) {
	enabled, _, err := r.Option(ctx, OptionGiftingEnabled)
	if err != nil {
		return Gifting{}, err
	}
	mode, _, err := r.Option(ctx, OptionGiftingDefault)
	if err != nil {
		return Gifting{}, err
	}
	return Gifting{
		Enabled:        enabled == "yes",
		DefaultEnabled: mode == GiftingEnabledForAll,
	}, nil
}
