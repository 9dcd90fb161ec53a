package flow

import (
	"sort"

	"github.com/mel2oo/netsniff/slices"
)

// Row pairs a flow's key and aggregate for rendering.
type Row struct {
	Key       Key
	Aggregate Aggregate
}

// Rows converts a Snapshot into a slice ordered by address then port, so
// repeated renders of an unchanging table produce identical output.
func Rows(snapshot map[Key]Aggregate) []Row {
	keys := make([]Key, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Addr != keys[j].Addr {
			return keys[i].Addr < keys[j].Addr
		}
		return keys[i].Port < keys[j].Port
	})

	return slices.Map(keys, func(k Key) Row {
		return Row{Key: k, Aggregate: snapshot[k]}
	})
}
