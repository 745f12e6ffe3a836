package redisx

import "time"

const (
	// Settled order snapshot: qr:order:settled:{order_id} -> {"status":"PAID",...}
	// Only PAID results are cached; PAID is terminal so the entry can never
	// go stale. PENDING is never cached.
	KeyOrderSettled = "qr:order:settled:%s"
)

var (
	TTLSettled = 24 * time.Hour
)
