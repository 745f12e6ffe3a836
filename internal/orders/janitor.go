package orders

import (
	"context"
	"log"
	"time"
)

// Janitor sweeps the ledger on a ticker and evicts expired unpaid orders.
// Payment requests stop being scannable once their validity window closes, so
// a PENDING order past expiry plus grace can never settle anymore.
type Janitor struct {
	Ledger   *Ledger
	Interval time.Duration // <= 0 disables the sweep
	Grace    time.Duration
}

func (j *Janitor) Run(ctx context.Context) {
	if j.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	log.Printf("ledger janitor started: interval=%s grace=%s", j.Interval, j.Grace)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.Ledger.EvictExpired(time.Now(), j.Grace); n > 0 {
				log.Printf("evicted %d expired unpaid orders, %d remaining", n, j.Ledger.Len())
			}
		}
	}
}
