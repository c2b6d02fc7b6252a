// Package trace provides decision-trace recording for federation exchange
// analysis. This package has no dependencies on fed/ — it stores pure data
// types.
package trace

// GrantRecord captures a single time-advance grant decision.
type GrantRecord struct {
	Federate  string
	Clock     int64
	Requested int64
	Granted   int64
	GALT      int64 // greatest available logical time bound at decision time
	Held      bool  // true when the request was held below the requested time
}

// TransferRecord captures a single ownership transfer decision.
type TransferRecord struct {
	InstanceName string
	Attribute    string
	From         string
	To           string
	Mode         string // "push" or "pull"
	Outcome      string // "completed" or "rejected"
	Reason       string // populated on rejection
	Clock        int64
}
