package retry

import (
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 100 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// ToRetryOptions converts the config to retry-go options.
// Zero attempts would mean "retry forever" to retry-go, so it falls back to the default.
func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	delay := rc.Delay
	if delay <= 0 {
		delay = defaultDelay
	}
	maxDelay := rc.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	return []retry.Option{
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(delay),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
