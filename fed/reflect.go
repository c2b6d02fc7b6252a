// Implements the ReflectQueue, which holds encoded attribute updates received
// from other federates until the local federate's granted time reaches the
// update's timestamp.

package fed

import (
	"fmt"
	"strings"
)

// AttributeUpdate is one encoded attribute value in flight between federates.
type AttributeUpdate struct {
	InstanceName string // registered object instance
	Attribute    string // FOM attribute name
	From         string // sending federate
	SentTick     int64  // sender's logical time at send
	Payload      []byte // wire bytes under the mapping's encoding
}

func (u *AttributeUpdate) String() string {
	return fmt.Sprintf("Update(%s.%s from %s at %d, %d bytes)",
		u.InstanceName, u.Attribute, u.From, u.SentTick, len(u.Payload))
}

// ReflectQueue is a FIFO of received updates awaiting application.
// Updates from a single sender arrive in send order, so FIFO release up to a
// grant time preserves per-sender ordering.
type ReflectQueue struct {
	queue []*AttributeUpdate
}

// Enqueue adds an update to the back of the queue.
func (rq *ReflectQueue) Enqueue(u *AttributeUpdate) {
	rq.queue = append(rq.queue, u)
}

// Len returns the number of queued updates.
func (rq *ReflectQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the update at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (rq *ReflectQueue) Peek() *AttributeUpdate {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// ReleaseUpTo removes and returns, in arrival order, every queued update with
// SentTick at or below the grant time.
func (rq *ReflectQueue) ReleaseUpTo(grant int64) []*AttributeUpdate {
	var due []*AttributeUpdate
	var held []*AttributeUpdate
	for _, u := range rq.queue {
		if u.SentTick <= grant {
			due = append(due, u)
		} else {
			held = append(held, u)
		}
	}
	rq.queue = held
	return due
}

func (rq *ReflectQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, u := range rq.queue {
		sb.WriteString(u.String())
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
