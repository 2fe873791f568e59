package interview

import (
	"context"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

const eventDeliveryTimeout = 30 * time.Second

// dispatcher runs event delivery off the request path
type dispatcher struct {
	publisher EventPublisher
	wg        sync.WaitGroup
}

func newDispatcher(publisher EventPublisher) *dispatcher {
	return &dispatcher{publisher: publisher}
}

func (d *dispatcher) publish(ctx context.Context, send func(ctx context.Context, p EventPublisher)) {
	if d == nil || d.publisher == nil {
		return
	}

	bgCtx := ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(bgCtx, eventDeliveryTimeout)
		defer cancel()

		send(sendCtx, d.publisher)
	}()
}

func (d *dispatcher) wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
