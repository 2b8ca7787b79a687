package migration

import (
	"testing"

	"github.com/railzwaylabs/subtelemetry/internal/seed/seedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestChecksumIsStable(t *testing.T) {
	a, err := Checksum()
	require.NoError(t, err)
	b, err := Checksum()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestParseVersion(t *testing.T) {
	v, ok := parseVersion("000012_add_index.up.sql")
	assert.True(t, ok)
	assert.Equal(t, uint(12), v)

	_, ok = parseVersion("add_index.up.sql")
	assert.False(t, ok)

	_, ok = parseVersion("000012.up.sql")
	assert.False(t, ok)
}

func TestRunCreatesSchedulerTableOnSQLite(t *testing.T) {
	db := seedtest.Open(t)

	require.NoError(t, Run(t.Context(), db, "sqlite", zap.NewNop()))
	assert.True(t, db.Migrator().HasTable("scheduled_actions"))

	// a second run is a no-op
	require.NoError(t, Run(t.Context(), db, "sqlite", zap.NewNop()))
}
