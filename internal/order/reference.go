package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewReference builds a human-readable order reference: prefix, coarse
// timestamp, short random suffix. Collision resistance for real comes from
// the unique constraint on orders.order_number; the generator only has to
// make retries cheap.
func NewReference() string {
	return fmt.Sprintf("ORD-%d-%04d", time.Now().Unix(), 1000+rand.IntN(9000))
}
