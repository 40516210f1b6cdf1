package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// #region registry-struct

type entry struct {
	region  Region
	element Element // nil for raw Register calls
	seq     uint64
}

// Registry is the page-session collection of pinned regions. Scenes receive
// it by reference; it is created when the root composition mounts and closed
// when it unmounts.
//
// Register/Unregister may be called in any order during mount and unmount.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSeq uint64
	version uint64
	closed  bool
	logger  *slog.Logger
}

// New creates an empty registry. logger may be nil.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger.With("component", "registry"),
	}
}

// #endregion registry-struct

// #region register

// Register adds a region. The id must be unique among active regions.
func (r *Registry) Register(region Region) error {
	_, err := r.add(region, nil)
	return err
}

// RegisterPinned registers the element's current bounds under id and returns
// a handle whose Release unregisters it.
func (r *Registry) RegisterPinned(id string, el Element) (*Handle, error) {
	if el == nil {
		return nil, fmt.Errorf("register %s: nil element: %w", id, ErrInvalidRegion)
	}
	seq, err := r.add(el.Bounds().Region(id), el)
	if err != nil {
		return nil, err
	}
	return &Handle{reg: r, id: id, seq: seq}, nil
}

func (r *Registry) add(region Region, el Element) (uint64, error) {
	if !region.valid() {
		return 0, fmt.Errorf("register %s [%v, %v]: %w", region.ID, region.StartOffset, region.EndOffset, ErrInvalidRegion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if _, exists := r.entries[region.ID]; exists {
		return 0, fmt.Errorf("register %s: %w", region.ID, ErrDuplicateID)
	}

	r.nextSeq++
	r.version++
	r.entries[region.ID] = &entry{region: region, element: el, seq: r.nextSeq}

	r.logger.Debug("region registered",
		"region_id", region.ID,
		"start", region.StartOffset,
		"end", region.EndOffset,
		"active", len(r.entries),
	)
	return r.nextSeq, nil
}

// #endregion register

// #region unregister

// Unregister removes the region with the given id.
func (r *Registry) Unregister(id string) error {
	return r.remove(id, 0)
}

// remove deletes id; a non-zero seq only matches the registration that
// produced it, so a released handle never removes a newer scene's region.
func (r *Registry) remove(id string, seq uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	e, exists := r.entries[id]
	if !exists || (seq != 0 && e.seq != seq) {
		return fmt.Errorf("unregister %s: %w", id, ErrNotFound)
	}

	delete(r.entries, id)
	r.version++

	r.logger.Debug("region unregistered", "region_id", id, "active", len(r.entries))
	return nil
}

// #endregion unregister

// #region read

// Regions returns a copy of the active regions sorted ascending by
// StartOffset; equal starts keep registration order.
func (r *Registry) Regions() []Region {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].region.StartOffset != entries[j].region.StartOffset {
			return entries[i].region.StartOffset < entries[j].region.StartOffset
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]Region, len(entries))
	for i, e := range entries {
		out[i] = e.region
	}
	return out
}

// Lookup returns the active region for id.
func (r *Registry) Lookup(id string) (Region, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return Region{}, false
	}
	return e.region, true
}

// Len returns the number of active regions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Version increments on every mutation. Consumers holding a snapshot compare
// it to detect registrations that happened after the snapshot was taken.
func (r *Registry) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// #endregion read

// #region revalidate

// Revalidate re-reads the bounds of every element-backed region. Regions whose
// new bounds are invalid keep their previous offsets. It reports how many
// regions moved.
func (r *Registry) Revalidate() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0
	}

	moved := 0
	for id, e := range r.entries {
		if e.element == nil {
			continue
		}
		next := e.element.Bounds().Region(id)
		if !next.valid() {
			r.logger.Warn("revalidate: invalid bounds, keeping previous",
				"region_id", id, "start", next.StartOffset, "end", next.EndOffset)
			continue
		}
		if next != e.region {
			e.region = next
			moved++
		}
	}
	if moved > 0 {
		r.version++
		r.logger.Debug("regions revalidated", "moved", moved)
	}
	return moved
}

// #endregion revalidate

// #region close

// Close destroys every region. Later Register/Unregister calls return
// ErrClosed. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.entries = make(map[string]*entry)
	r.version++
}

// #endregion close

// #region handle

// Handle is the scene-side token for a pinned registration.
type Handle struct {
	reg  *Registry
	id   string
	seq  uint64
	once sync.Once
}

// ID returns the registered region id.
func (h *Handle) ID() string { return h.id }

// Region returns the handle's current region, reflecting any revalidation.
func (h *Handle) Region() (Region, bool) {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()

	e, ok := h.reg.entries[h.id]
	if !ok || e.seq != h.seq {
		return Region{}, false
	}
	return e.region, true
}

// Release unregisters the region. Safe to call any number of times, and
// after the registry itself was closed.
func (h *Handle) Release() {
	h.once.Do(func() {
		_ = h.reg.remove(h.id, h.seq)
	})
}

// #endregion handle
