package game

import (
	"context"
	"time"
)

// StartTickers drives the service: a fixed-rate simulation loop and a 1s
// cleanup sweep. Both stop when ctx is canceled.
func StartTickers(ctx context.Context, svc *Service) {
	go func() {
		gameTicker := time.NewTicker(TickInterval)
		defer gameTicker.Stop()
		dt := TickInterval.Seconds()

		for {
			select {
			case <-gameTicker.C:
				svc.UpdateAll(dt)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		cleanupTicker := time.NewTicker(time.Second)
		defer cleanupTicker.Stop()

		for {
			select {
			case <-cleanupTicker.C:
				svc.CleanupSweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
