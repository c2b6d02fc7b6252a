// Tracks exchange-wide statistics for final reporting.

package fed

import "fmt"

// Metrics aggregates statistics about a federation exchange for final
// reporting. Useful for evaluating exchange behavior and debugging update
// scheduling over time.
type Metrics struct {
	UpdatesSent        int   // attribute updates delivered to the bus
	UpdatesReflected   int   // updates applied to a subscriber's variable store
	BytesEncoded       int64 // total wire bytes produced by the codec
	GrantsIssued       int   // time-advance grants completed
	HeldRequests       int   // advance requests held below GALT at least once
	TransfersCompleted int   // ownership transfers completed
	TransfersRejected  int   // ownership transfers rejected

	UpdatesPerInstance map[string]int // instance name -> updates sent
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		UpdatesPerInstance: make(map[string]int),
	}
}

// Print displays aggregated metrics at the end of the exchange.
func (m *Metrics) Print(endTick int64) {
	fmt.Println("=== Federation Exchange Metrics ===")
	fmt.Printf("Exchange ended at    : %d ticks\n", endTick)
	fmt.Printf("Updates sent         : %d\n", m.UpdatesSent)
	fmt.Printf("Updates reflected    : %d\n", m.UpdatesReflected)
	fmt.Printf("Bytes encoded        : %d\n", m.BytesEncoded)
	fmt.Printf("Grants issued        : %d\n", m.GrantsIssued)
	fmt.Printf("Held advance requests: %d\n", m.HeldRequests)
	fmt.Printf("Transfers completed  : %d\n", m.TransfersCompleted)
	fmt.Printf("Transfers rejected   : %d\n", m.TransfersRejected)
	if m.UpdatesSent > 0 && endTick > 0 {
		fmt.Printf("Updates per 1k ticks : %.2f\n", float64(m.UpdatesSent)*1000.0/float64(endTick))
	}
}
