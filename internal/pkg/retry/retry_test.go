package retry

import (
	"errors"
	"testing"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.Equal(t, uint(defaultAttempts), cfg.Attempts)
	assert.Equal(t, defaultDelay, cfg.Delay)
	assert.Equal(t, defaultMaxDelay, cfg.MaxDelay)
	assert.Less(t, cfg.Delay, cfg.MaxDelay)
}

func TestToRetryOptions_ZeroAttemptsStillTerminates(t *testing.T) {
	cfg := &RetryConfig{}

	calls := 0
	err := retry.Do(func() error {
		calls++
		return errors.New("boom")
	}, append(cfg.ToRetryOptions(), retry.Delay(0), retry.MaxJitter(1))...)

	require.Error(t, err)
	assert.Equal(t, defaultAttempts, calls)
}
