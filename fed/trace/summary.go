package trace

// TraceSummary aggregates statistics from an ExchangeTrace.
type TraceSummary struct {
	TotalGrants        int
	HeldGrants         int
	MeanGrantSlack     float64        // mean of (requested - granted) over held grants
	MaxGrantSlack      int64          // largest hold-back observed
	CompletedTransfers int
	RejectedTransfers  int
	GrantsPerFederate  map[string]int // federate name → grant count
}

// Summarize computes aggregate statistics from an ExchangeTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *ExchangeTrace) *TraceSummary {
	summary := &TraceSummary{
		GrantsPerFederate: make(map[string]int),
	}
	if et == nil {
		return summary
	}

	summary.TotalGrants = len(et.Grants)
	totalSlack := int64(0)
	for _, g := range et.Grants {
		summary.GrantsPerFederate[g.Federate]++
		if g.Held {
			summary.HeldGrants++
			slack := g.Requested - g.Granted
			totalSlack += slack
			if slack > summary.MaxGrantSlack {
				summary.MaxGrantSlack = slack
			}
		}
	}
	if summary.HeldGrants > 0 {
		summary.MeanGrantSlack = float64(totalSlack) / float64(summary.HeldGrants)
	}

	for _, t := range et.Transfers {
		if t.Outcome == "completed" {
			summary.CompletedTransfers++
		} else {
			summary.RejectedTransfers++
		}
	}

	return summary
}
