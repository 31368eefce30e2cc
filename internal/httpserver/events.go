package httpserver

import (
	"context"
	"time"

	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
)

// publish fires a domain event without blocking the response. Failures are
// logged and swallowed; the broker is not on the request path.
func publish(ctx context.Context, pub events.Publisher, topic, key string, event map[string]any) {
	l := logging.FromContext(ctx)
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.Publish(pctx, topic, key, event); err != nil {
			l.Error("publish event failed", "topic", topic, "key", key, "err", err)
		}
	}()
}
