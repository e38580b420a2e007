package salesforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientAppliesRateLimit(t *testing.T) {
	c := NewClient(nil, WithRateLimit(5)).(*sfClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 5.0, float64(c.limiter.Limit()))

	unlimited := NewClient(nil).(*sfClient)
	assert.Nil(t, unlimited.limiter)

	ignored := NewClient(nil, WithRateLimit(0)).(*sfClient)
	assert.Nil(t, ignored.limiter, "non-positive rate leaves the limiter off")
}

func TestWaitHonorsContextCancel(t *testing.T) {
	c := NewClient(nil, WithRateLimit(0.001)).(*sfClient)

	// burn the initial token so the next wait would block
	require.NoError(t, c.wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.wait(ctx))
}

func TestWaitWithoutLimiter(t *testing.T) {
	c := NewClient(nil).(*sfClient)
	assert.NoError(t, c.wait(context.Background()))
}
