package middleware

import (
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	warningInterval = 30 * time.Second
	inactiveTTL     = time.Hour
)

type userLimit struct {
	limiter *rate.Limiter

	mu            sync.Mutex
	lastWarningAt time.Time
}

// RateLimiterMiddleware applies a per user token bucket to updates
type RateLimiterMiddleware struct {
	users   *cache.Cache
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	notify  Notifier
	message string
	logger  *zap.Logger
}

func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burst int,
	logger *zap.Logger,
	notify Notifier,
	message string,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		users:   cache.New(inactiveTTL, inactiveTTL/6),
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		notify:  notify,
		message: message,
		logger:  logger,
	}
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID := updateIDs(update)
	if userID == 0 {
		// Unknown update type, allow it
		next(update)
		return
	}

	if !rl.allow(userID, chatID, time.Now()) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("telegram_user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allow(userID, chatID int64, now time.Time) bool {
	u := rl.limiterFor(userID)
	if u.limiter.AllowN(now, 1) {
		return true
	}

	u.mu.Lock()
	warn := now.Sub(u.lastWarningAt) > warningInterval
	if warn {
		u.lastWarningAt = now
	}
	u.mu.Unlock()

	if warn && chatID != 0 && rl.notify != nil {
		rl.notify(chatID, rl.message)
	}

	return false
}

func (rl *RateLimiterMiddleware) limiterFor(userID int64) *userLimit {
	key := strconv.FormatInt(userID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.users.Get(key); ok {
		rl.users.SetDefault(key, v)
		return v.(*userLimit)
	}

	u := &userLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	rl.users.SetDefault(key, u)
	return u
}
