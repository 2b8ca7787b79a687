package domain

import (
	"testing"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestOrderTypeMetaKey(t *testing.T) {
	key, err := OrderTypeSwitch.MetaKey()
	assert.NoError(t, err)
	assert.Equal(t, storage.MetaSwitch, key)

	_, err = OrderTypeInitial.MetaKey()
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}
