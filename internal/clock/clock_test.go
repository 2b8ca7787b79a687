package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockHonoursFrozenContext(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	ctx := WithFrozen(context.Background(), at)

	assert.Equal(t, at.UTC(), New().Now(ctx))
	assert.Equal(t, time.UTC, New().Now(context.Background()).Location())
}

func TestFixed(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at, Fixed{At: at}.Now(context.Background()))
}
