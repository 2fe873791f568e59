package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/visa-interview/internal/config"
	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/integration/common"
	pkghttp "github.com/futig/visa-interview/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts interview events to the configured receiver
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendSessionStarted sends a session started event
func (c *Connector) SendSessionStarted(ctx context.Context, data *entity.CallbackSessionStartedData) {
	c.sendLogged(ctx, entity.CallbackEventTypeSessionStarted, data)
}

// SendRecommendationCreated sends a recommendation created event
func (c *Connector) SendRecommendationCreated(ctx context.Context, data *entity.CallbackRecommendationData) {
	c.sendLogged(ctx, entity.CallbackEventTypeRecommendationCreated, data)
}

// SendCaseLocked sends a case locked event
func (c *Connector) SendCaseLocked(ctx context.Context, data *entity.CallbackCaseLockedData) {
	c.sendLogged(ctx, entity.CallbackEventTypeCaseLocked, data)
}

func (c *Connector) sendLogged(ctx context.Context, eventType entity.CallbackEventType, data any) {
	err := c.Send(ctx, &entity.CallbackEvent{
		Event: eventType,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send callback", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// Send posts event; each delivery carries a fresh X-Event-ID for receiver side deduplication
func (c *Connector) Send(ctx context.Context, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	eventID := uuid.New().String()

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("event_id", eventID),
		zap.String("timestamp", event.Timestamp),
	)

	err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil,
		pkghttp.WithHeader("X-Event-ID", eventID),
		pkghttp.WithHeader("X-Event-Type", string(event.Event)),
	)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", event.Event, c.config.Url, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("event_id", eventID),
	)
	return nil
}
