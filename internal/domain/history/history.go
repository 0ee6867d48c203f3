// Package history keeps bounded undo and redo stacks of full graph snapshots.
package history

import "patron-crm-go/internal/domain/graph"

const DefaultDepth = 20

// State is the store history snapshots and restores. Generation must change
// whenever the state is mutated.
type State interface {
	Snapshot() graph.Snapshot
	Restore(graph.Snapshot)
	Generation() uint64
}

type History struct {
	state State
	depth int
	undo  []graph.Snapshot
	redo  []graph.Snapshot
}

func New(state State, depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{state: state, depth: depth}
}

// Snapshot checkpoints the current state before a mutation. New checkpoints
// invalidate redo.
func (h *History) Snapshot() {
	h.push(h.state.Snapshot())
	h.redo = nil
}

// Undo restores the latest checkpoint. An empty stack is a no-op.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	h.redo = append(h.redo, h.state.Snapshot())
	h.state.Restore(h.pop())
	return true
}

func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.push(h.state.Snapshot())
	h.state.Restore(last)
	return true
}

func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

func (h *History) Depth() int {
	return h.depth
}

// Change is an applied mutation that has not been checkpointed yet. It must be
// either committed or rolled back.
type Change struct {
	h          *History
	before     graph.Snapshot
	generation uint64
}

// Begin runs fn against the state. A failed fn leaves the state and both stacks
// untouched. Neither stack changes until the returned Change is committed.
func (h *History) Begin(fn func() error) (*Change, error) {
	change := &Change{
		h:          h,
		before:     h.state.Snapshot(),
		generation: h.state.Generation(),
	}
	if err := fn(); err != nil {
		return nil, err
	}
	return change, nil
}

// Changed reports whether fn mutated the state.
func (c *Change) Changed() bool {
	return c.h.state.Generation() != c.generation
}

// Commit pushes the checkpoint and invalidates redo. A change that left the
// state untouched records nothing.
func (c *Change) Commit() {
	if !c.Changed() {
		return
	}
	c.h.push(c.before)
	c.h.redo = nil
}

// Rollback restores the state from before fn. Both stacks stay as they were.
func (c *Change) Rollback() {
	if !c.Changed() {
		return
	}
	c.h.state.Restore(c.before)
}

// Record runs fn and commits it on success.
func (h *History) Record(fn func() error) error {
	change, err := h.Begin(fn)
	if err != nil {
		return err
	}
	change.Commit()
	return nil
}

func (h *History) push(snapshot graph.Snapshot) {
	h.undo = append(h.undo, snapshot)
	if len(h.undo) > h.depth {
		h.undo = append([]graph.Snapshot(nil), h.undo[len(h.undo)-h.depth:]...)
	}
}

func (h *History) pop() graph.Snapshot {
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return last
}
