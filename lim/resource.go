package lim

import "fmt"

// ResourceKind is the closed set of referenceable resource kinds.
type ResourceKind int

// Enumeration of resource kinds.
const (
	ResRegister ResourceKind = iota
	ResMemory
	ResPin
	ResInputStream
	ResOutputStream
)

var resourceKindNames = [...]string{
	ResRegister:     "register",
	ResMemory:       "memory",
	ResPin:          "pin",
	ResInputStream:  "input-stream",
	ResOutputStream: "output-stream",
}

func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}

	return fmt.Sprintf("resource(%d)", int(k))
}

// ParseResourceKind returns the resource kind with the given name.
func ParseResourceKind(name string) (ResourceKind, bool) {
	for i, n := range resourceKindNames {
		if n == name {
			return ResourceKind(i), true
		}
	}

	return 0, false
}

// AccessKind is the closed set of access kinds.
type AccessKind int

// Enumeration of access kinds.
const (
	AccRead   AccessKind = iota // full blocking read
	AccWrite                    // full blocking write
	AccStatus                   // status check which does not touch the data path
	AccPeek                     // non-consuming look at the head of a stream
)

var accessKindNames = [...]string{
	AccRead:   "read",
	AccWrite:  "write",
	AccStatus: "status",
	AccPeek:   "peek",
}

func (k AccessKind) String() string {
	if int(k) < len(accessKindNames) {
		return accessKindNames[k]
	}

	return fmt.Sprintf("access(%d)", int(k))
}

// Resource is a shared stateful resource: a referenceable.
type Resource struct {
	ID   ResourceID
	Name string
	Kind ResourceKind

	// The width and signedness of the data held by the resource.
	Width  int
	Signed bool

	// Memory geometry.  Ports is at least 1 for memories.
	Depth, Ports int

	// Memory access latencies in cycles.
	ReadLatency, WriteLatency int
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Name)
}

// AddressWidth returns the number of address bits of a memory.
func (r *Resource) AddressWidth() int {
	w := 1
	for (1 << w) < r.Depth {
		w++
	}

	return w
}

// AccessInfo describes the access of an access component: a referencer.
type AccessInfo struct {
	Resource ResourceID
	Kind     AccessKind

	// MemPort is the memory port used by a memory access.
	MemPort int
}

// -----------------------------------------------------------------------------

// ArbiterKind is the kind of arbitration hardware synthesized for a resource.
type ArbiterKind int

// Enumeration of arbiter kinds.
const (
	// ArbiterMux steers the accesses of a single task onto the resource.  The
	// task's schedule already guarantees they never overlap.
	ArbiterMux ArbiterKind = iota

	// ArbiterPriority grants one of several concurrently running tasks per
	// cycle in declaration order.
	ArbiterPriority
)

func (k ArbiterKind) String() string {
	if k == ArbiterPriority {
		return "priority"
	}

	return "mux"
}

// Arbiter is the arbitration hardware inserted for a shared resource.
type Arbiter struct {
	Resource ResourceID
	Kind     ArbiterKind

	// Slots are ordered by priority: slot 0 wins every conflict.
	Slots []ArbiterSlot
}

// ArbiterSlot is the arbiter input of one task.
type ArbiterSlot struct {
	Task ComponentID

	// The accesses of the task in program order.
	Accesses []ComponentID
}

// Tag identifies the issuer of an access to an arbiter: the slot and the
// index of the access within the slot.
type Tag struct {
	Slot, Access int
}

// Grant returns the slot granted in a cycle where the slots flagged in
// `requests` are requesting, or -1 if none is.  At most one slot is ever
// granted and the lowest numbered requester always wins.
func (a *Arbiter) Grant(requests []bool) int {
	for i, req := range requests {
		if i >= len(a.Slots) {
			break
		}

		if req {
			return i
		}
	}

	return -1
}

// TagOf returns the tag of an access.
func (a *Arbiter) TagOf(access ComponentID) (Tag, bool) {
	for i, slot := range a.Slots {
		for j, acc := range slot.Accesses {
			if acc == access {
				return Tag{Slot: i, Access: j}, true
			}
		}
	}

	return Tag{}, false
}

// Route returns the access a response carrying the given tag is delivered to.
func (a *Arbiter) Route(tag Tag) (ComponentID, bool) {
	if tag.Slot < 0 || tag.Slot >= len(a.Slots) {
		return 0, false
	}

	slot := a.Slots[tag.Slot]
	if tag.Access < 0 || tag.Access >= len(slot.Accesses) {
		return 0, false
	}

	return slot.Accesses[tag.Access], true
}
