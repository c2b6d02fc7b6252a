// Package fed provides the core event-driven engine for the fedsync
// attribute-synchronization layer.
//
// # Reading Guide
//
// Start with these three files to understand the exchange kernel:
//   - time.go: the per-federate time-advance state machine (Granted -> AdvancePending -> Granted)
//   - event.go: the events that drive the exchange (InitPush, Grant, Ownership)
//   - executive.go: the event loop, GALT computation, and update delivery
//
// # Architecture
//
// The fed package defines the executive and per-federate glue; the supporting
// layers live in sub-packages:
//   - fed/fom/: the configuration data model and its Building -> Frozen lifecycle
//   - fed/codec/: attribute value wire encoding and decoding
//   - fed/registry/: variable store, object instances, attribute ownership state
//   - fed/ownership/: the attribute ownership transfer state machine
//   - fed/checkpoint/: federation save and restore
//   - fed/trace/: decision-trace recording
//   - fed/spacefom/: canned SpaceFOM-flavored configurations
//
// # Key pieces
//
//   - UpdateScheduler: decides which owned published attributes are due at a
//     granted boundary (initialize-once, cyclic, on-change).
//   - ReflectQueue: holds received updates until the local grant reaches them.
//   - TimeManager: regulating/constrained advance under lookahead and the
//     least common time step; the executive computes GALT across members.
//   - ownership.Manager: push/pull negotiation resolving at grant boundaries.
//   - Scenario: deterministic variable mutation standing in for model code.
package fed
