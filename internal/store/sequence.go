package store

import "sync/atomic"

// Sequencer hands out monotonically increasing product ids. Ids are never
// reused, even after a delete.
type Sequencer struct{ n atomic.Int64 }

// Next returns the next id.
func (s *Sequencer) Next() int64 { return s.n.Add(1) }
