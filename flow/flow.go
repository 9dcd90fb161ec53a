// Package flow aggregates per-peer traffic counters behind a single mutex.
package flow

import (
	"sync"

	"github.com/mel2oo/netsniff/decode"
)

// Key identifies a flow by its peer endpoint.
type Key struct {
	Addr string
	Port uint16
}

// Aggregate is the mutable state tracked for one flow.
type Aggregate struct {
	Protocol   decode.Protocol
	Bytes      uint64
	Packets    uint64
	FirstSeen  int64 // nanoseconds
	LastSeen   int64 // nanoseconds
}

// Table is a map from Key to Aggregate, guarded by a single mutex. Only the
// decode/aggregate stage mutates it; any goroutine may take a Snapshot.
type Table struct {
	mu   sync.Mutex
	rows map[Key]Aggregate
}

// New returns an empty flow table.
func New() *Table {
	return &Table{
		rows: make(map[Key]Aggregate),
	}
}

// Merge inserts a new aggregate for key, or folds bytesN into the existing
// one. On collision, Protocol is overwritten with the most recently observed
// value (see the protocol-collision note in the design notes); timestamps
// arrive monotonically in practice, so first is retained unless timestampNs
// precedes it.
func (t *Table) Merge(key Key, protocol decode.Protocol, bytesN uint64, timestampNs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.rows[key]
	if !ok {
		t.rows[key] = Aggregate{
			Protocol:  protocol,
			Bytes:     bytesN,
			Packets:   1,
			FirstSeen: timestampNs,
			LastSeen:  timestampNs,
		}
		return
	}

	first := existing.FirstSeen
	if timestampNs < first {
		first = timestampNs
	}
	last := existing.LastSeen
	if timestampNs > last {
		last = timestampNs
	}

	t.rows[key] = Aggregate{
		Protocol:  protocol,
		Bytes:     existing.Bytes + bytesN,
		Packets:   existing.Packets + 1,
		FirstSeen: first,
		LastSeen:  last,
	}
}

// Snapshot returns an independent clone of the table, taken under the lock.
func (t *Table) Snapshot() map[Key]Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()

	clone := make(map[Key]Aggregate, len(t.rows))
	for k, v := range t.rows {
		clone[k] = v
	}
	return clone
}

// Len reports the current number of tracked flows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}
