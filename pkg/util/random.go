package util

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomBase36 returns n uppercase base-36 characters
func RandomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))])
	}
	return b.String()
}

// GenerateOrderNumber formats ORD-<ms epoch>-<9 base36 chars>.
// Uniqueness is enforced by the orders.order_number index, not here.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), RandomBase36(9))
}
