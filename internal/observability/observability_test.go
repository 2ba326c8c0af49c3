package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "brewlog-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "unit")
	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

type widget struct {
	ID   uint
	Name string
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, RegisterQueryMetrics(db))

	before := testutil.CollectAndCount(DatabaseQueryLatency)
	require.NoError(t, db.Create(&widget{Name: "grinder"}).Error)
	var got []widget
	require.NoError(t, db.Find(&got).Error)

	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
	assert.Len(t, got, 1)
}
