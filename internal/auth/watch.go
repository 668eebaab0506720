package auth

import (
	"context"
	"time"
)

// WatchSession polls the session every interval and calls onExpired once
// when the token has disappeared, then returns. It also returns when ctx
// ends. The check is advisory: it only reads the store.
func (s *Service) WatchSession(ctx context.Context, interval time.Duration, onExpired func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.store.IsLoggedIn() {
				continue
			}
			s.metrics.ObserveSessionExpired("watch")
			s.logger.Info("session no longer present")
			if onExpired != nil {
				onExpired()
			}
			return
		}
	}
}
