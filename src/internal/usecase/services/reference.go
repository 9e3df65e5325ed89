package services

import (
	"fmt"
	"sync/atomic"
	"time"
)

var transactionRefCounter uint32

// generateTransactionReference returns "TXN" followed by thirty digits: the UTC
// timestamp to the nanosecond and a process-wide counter.
func generateTransactionReference(now time.Time) string {
	now = now.UTC()
	base := now.Format("20060102150405") + fmt.Sprintf("%09d", now.Nanosecond())
	counter := atomic.AddUint32(&transactionRefCounter, 1) % 10000000
	return "TXN" + base + fmt.Sprintf("%07d", counter)
}
