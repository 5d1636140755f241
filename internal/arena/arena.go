// Package arena is the object arena and tracing garbage collector for
// user-defined Glass instances (spec.md §4.7).
//
// Handles are stable {index, generation} pairs rather than raw pointers
// (SPEC_FULL.md §3, Design Note 1), so growing the backing array is a plain
// slice copy at identical indices: there is no pointer-rewriting pass over
// live roots the way the original C++ collector needs one. Growth pattern
// (append into a bigger backing slice, preserving offsets) is grounded on
// db47h-ngaro/vm/mem.go's memory-image resize.
package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"glass/internal/ir"
)

type slot struct {
	obj  *ir.Object
	gen  uint32
	live bool
}

// Arena owns the contiguous storage for every live Glass instance.
type Arena struct {
	slots []slot
	next  int // next_instance: forward scan cursor for allocation

	// Verbose, when set, makes Collect log live/capacity counts through
	// Log (defaults to a no-op). Not part of the base spec surface;
	// interp.Interpreter.Run copies it from Interpreter.Verbose. The CLI
	// has no flag that sets it.
	Verbose bool
	Log     func(string)
}

const initialCapacity = 64
const growthThreshold = 0.75

// New creates an arena with spec.md's "contiguous array of fixed-size
// slots" pre-sized to a small initial capacity; it grows on demand.
func New() *Arena {
	return &Arena{
		slots: make([]slot, initialCapacity),
		Log:   func(string) {},
	}
}

// Cap reports the current slot capacity, for tests and diagnostics.
func (a *Arena) Cap() int { return len(a.slots) }

// Valid reports whether h refers to a currently live object.
func (a *Arena) Valid(h ir.Handle) bool {
	i := int(h.Index)
	if i < 0 || i >= len(a.slots) {
		return false
	}
	s := &a.slots[i]
	return s.live && s.gen == h.Gen
}

// Get dereferences a live handle. The caller must have validated it (the
// interpreter does so before every field access/method dispatch, raising
// the spec's runtime errors otherwise).
func (a *Arena) Get(h ir.Handle) (*ir.Object, bool) {
	if !a.Valid(h) {
		return nil, false
	}
	return a.slots[h.Index].obj, true
}

// RootsFunc produces the current GC roots: every Instance/Function-typed
// value reachable from the operand stack, globals, and live frames (spec.md
// §4.7 step 1). The interpreter supplies this closure since only it knows
// the current stack/frame state.
type RootsFunc func() []ir.Value

// Alloc reserves a slot for a new instance of class, running a collection
// (and growing if warranted) when the arena is full.
func (a *Arena) Alloc(class *ir.Class, roots RootsFunc) ir.Handle {
	if h, ok := a.tryAlloc(class); ok {
		return h
	}
	a.Collect(roots())
	if a.liveRatio() > growthThreshold {
		a.grow()
	}
	if h, ok := a.tryAlloc(class); ok {
		return h
	}
	// Still full immediately after a collection that didn't cross the
	// growth threshold (e.g. every slot genuinely live): grow anyway so
	// allocation always succeeds.
	a.grow()
	h, _ := a.tryAlloc(class)
	return h
}

func (a *Arena) tryAlloc(class *ir.Class) (ir.Handle, bool) {
	n := len(a.slots)
	for i := 0; i < n; i++ {
		idx := (a.next + i) % n
		if !a.slots[idx].live {
			s := &a.slots[idx]
			s.live = true
			s.obj = ir.NewObject(class)
			s.gen++
			a.next = (idx + 1) % n
			return ir.Handle{Index: uint32(idx), Gen: s.gen}, true
		}
	}
	return ir.Handle{}, false
}

func (a *Arena) liveRatio() float64 {
	live := a.liveCount()
	return float64(live) / float64(len(a.slots))
}

func (a *Arena) liveCount() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}

// grow doubles capacity. Because handles are logical indices, existing
// live slots keep their index; nothing downstream needs to be rewritten.
func (a *Arena) grow() {
	old := a.slots
	a.slots = make([]slot, len(old)*2)
	copy(a.slots, old)
	a.next = 0
}

// Collect runs mark-sweep over roots (spec.md §4.7 steps 1-3), reclaiming
// every unmarked slot and resetting the allocation scan cursor.
func (a *Arena) Collect(roots []ir.Value) {
	mark := make([]bool, len(a.slots))
	var worklist []uint32

	enqueue := func(v ir.Value) {
		switch v.Kind {
		case ir.KindInstance:
			worklist = append(worklist, v.Inst.Index)
		case ir.KindFunction:
			worklist = append(worklist, v.Fn.Obj.Index)
		}
	}
	for _, v := range roots {
		enqueue(v)
	}

	for len(worklist) > 0 {
		idx := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if int(idx) >= len(a.slots) || mark[idx] || !a.slots[idx].live {
			continue
		}
		mark[idx] = true
		obj := a.slots[idx].obj
		for _, fv := range obj.Fields {
			enqueue(fv)
		}
	}

	live := 0
	for i := range a.slots {
		if a.slots[i].live && !mark[i] {
			a.slots[i].live = false
			a.slots[i].obj = nil
		}
		if a.slots[i].live {
			live++
		}
	}
	a.next = 0

	if a.Verbose {
		a.Log(fmt.Sprintf("gc: %s/%s slots live",
			humanize.Comma(int64(live)), humanize.Comma(int64(len(a.slots)))))
	}
}
