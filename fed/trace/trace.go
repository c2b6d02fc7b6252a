package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all time-grant and ownership decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// ExchangeTrace collects decision records during a federation exchange.
type ExchangeTrace struct {
	Level     TraceLevel
	Grants    []GrantRecord
	Transfers []TransferRecord
}

// NewExchangeTrace creates an ExchangeTrace ready for recording.
func NewExchangeTrace(level TraceLevel) *ExchangeTrace {
	return &ExchangeTrace{
		Level:     level,
		Grants:    make([]GrantRecord, 0),
		Transfers: make([]TransferRecord, 0),
	}
}

// Enabled reports whether the trace records decisions.
func (et *ExchangeTrace) Enabled() bool {
	return et != nil && et.Level == TraceLevelDecisions
}

// RecordGrant appends a time-grant decision record.
func (et *ExchangeTrace) RecordGrant(record GrantRecord) {
	if !et.Enabled() {
		return
	}
	et.Grants = append(et.Grants, record)
}

// RecordTransfer appends an ownership transfer decision record.
func (et *ExchangeTrace) RecordTransfer(record TransferRecord) {
	if !et.Enabled() {
		return
	}
	et.Transfers = append(et.Transfers, record)
}
