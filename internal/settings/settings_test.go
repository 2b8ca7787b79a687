package settings

import (
	"testing"

	"github.com/railzwaylabs/subtelemetry/internal/seed"
	"github.com/railzwaylabs/subtelemetry/internal/seed/seedtest"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftingDefaultsWhenUnset(t *testing.T) {
	r := NewReader(Params{DB: seedtest.Open(t), Tables: seedtest.Tables()})

	gifting, err := r.Gifting(t.Context())
	require.NoError(t, err)
	assert.False(t, gifting.Enabled)
	assert.False(t, gifting.DefaultEnabled)

	_, ok, err := r.Option(t.Context(), OptionGiftingEnabled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGiftingReadsOptions(t *testing.T) {
	db := seedtest.OpenWith(t, storage.SchemaPosts, seed.Dataset{
		Options: map[string]string{
			OptionGiftingEnabled: "yes",
			OptionGiftingDefault: GiftingEnabledForAll,
		},
	})
	r := NewReader(Params{DB: db, Tables: seedtest.Tables()})

	gifting, err := r.Gifting(t.Context())
	require.NoError(t, err)
	assert.Equal(t, Gifting{Enabled: true, DefaultEnabled: true}, gifting)
}
