package http

import (
	"context"
	"log"
	"net/http"
	"time"
)

// KeepAlive pings the bot's own public /ping endpoint on a fixed period so
// free-tier hosting does not idle the process out. It stops when ctx is
// canceled; failures are logged and retried on the next tick.
func KeepAlive(ctx context.Context, publicURL string, period time.Duration) {
	if publicURL == "" {
		return
	}
	if period <= 0 {
		period = 5 * time.Minute
	}
	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, publicURL+"/ping", nil)
			if err != nil {
				log.Printf("keep-alive request: %v", err)
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				log.Printf("keep-alive ping failed: %v", err)
				continue
			}
			resp.Body.Close()
		}
	}
}
