package registry

import (
	"errors"
	"math"
	"testing"
)

// movable is an Element whose bounds tests can change between reads.
type movable struct {
	b Bounds
}

func (m *movable) Bounds() Bounds { return m.b }

func TestRegisterSortedByStart(t *testing.T) {
	r := New(nil)
	for _, reg := range []Region{
		{ID: "showcase", StartOffset: 3000, EndOffset: 3900},
		{ID: "hero", StartOffset: 0, EndOffset: 1170},
		{ID: "features", StartOffset: 1500, EndOffset: 2400},
	} {
		if err := r.Register(reg); err != nil {
			t.Fatalf("Register(%s): %v", reg.ID, err)
		}
	}

	got := r.Regions()
	want := []string{"hero", "features", "showcase"}
	if len(got) != len(want) {
		t.Fatalf("expected %d regions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestRegisterEqualStartKeepsRegistrationOrder(t *testing.T) {
	r := New(nil)
	_ = r.Register(Region{ID: "second", StartOffset: 100, EndOffset: 200})
	_ = r.Register(Region{ID: "first", StartOffset: 0, EndOffset: 50})
	_ = r.Register(Region{ID: "third", StartOffset: 100, EndOffset: 300})

	got := r.Regions()
	if got[1].ID != "second" || got[2].ID != "third" {
		t.Fatalf("tie order broken: %v", got)
	}
}

func TestRegisterDuplicateID(t *testing.T) {
	r := New(nil)
	if err := r.Register(Region{ID: "hero", StartOffset: 0, EndOffset: 10}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(Region{ID: "hero", StartOffset: 20, EndOffset: 30})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 region, got %d", r.Len())
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := New(nil)
	err := r.Register(Region{ID: "backwards", StartOffset: 10, EndOffset: 5})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
	err = r.Register(Region{ID: "nan", StartOffset: math.NaN(), EndOffset: 5})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion for NaN, got %v", err)
	}
	if _, err := r.RegisterPinned("nil", nil); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion for nil element, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	r := New(nil)
	_ = r.Register(Region{ID: "hero", StartOffset: 0, EndOffset: 10})

	if err := r.Unregister("hero"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if err := r.Unregister("hero"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestHandleReleaseIdempotent(t *testing.T) {
	r := New(nil)
	h, err := r.RegisterPinned("hero", StaticBounds{Top: 0, Span: 1170})
	if err != nil {
		t.Fatalf("RegisterPinned: %v", err)
	}
	// A second scene with the same id must be able to register after release.
	h.Release()
	before := r.Version()
	h.Release()
	if r.Version() != before {
		t.Fatal("second Release mutated the registry")
	}

	h2, err := r.RegisterPinned("hero", StaticBounds{Top: 0, Span: 900})
	if err != nil {
		t.Fatalf("re-register after release: %v", err)
	}
	// Releasing the stale handle again must not remove the new registration.
	h.Release()
	if r.Len() != 1 {
		t.Fatalf("stale handle removed live region, len=%d", r.Len())
	}
	h2.Release()
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestReleaseAfterClose(t *testing.T) {
	r := New(nil)
	h, _ := r.RegisterPinned("hero", StaticBounds{Top: 0, Span: 100})
	r.Close()
	r.Close()
	h.Release()

	if r.Len() != 0 {
		t.Fatalf("expected no regions after close, got %d", r.Len())
	}
	if err := r.Register(Region{ID: "late", EndOffset: 1}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRevalidate(t *testing.T) {
	r := New(nil)
	el := &movable{b: Bounds{Top: 900, Span: 1170}}
	h, err := r.RegisterPinned("hero", el)
	if err != nil {
		t.Fatalf("RegisterPinned: %v", err)
	}
	_ = r.Register(Region{ID: "raw", StartOffset: 5000, EndOffset: 6000})

	v := r.Version()
	if moved := r.Revalidate(); moved != 0 {
		t.Fatalf("expected 0 moved, got %d", moved)
	}
	if r.Version() != v {
		t.Fatal("no-op revalidate bumped version")
	}

	// Splash overlay removed: element now starts at the top of the document.
	el.b = Bounds{Top: 0, Span: 1170}
	if moved := r.Revalidate(); moved != 1 {
		t.Fatalf("expected 1 moved, got %d", moved)
	}
	reg, ok := h.Region()
	if !ok {
		t.Fatal("handle region missing")
	}
	if reg.StartOffset != 0 || reg.EndOffset != 1170 {
		t.Fatalf("unexpected region after revalidate: %+v", reg)
	}

	el.b = Bounds{Top: 10, Span: -50}
	r.Revalidate()
	reg, _ = h.Region()
	if reg.StartOffset != 0 {
		t.Fatalf("invalid bounds should be ignored, got %+v", reg)
	}
}

func TestNormalize(t *testing.T) {
	reg := Region{ID: "a", StartOffset: 0, EndOffset: 300}
	n := reg.Normalize(1000)
	if n.Start != 0 || n.End != 0.3 || math.Abs(n.Center-0.15) > 1e-12 {
		t.Fatalf("unexpected normalization: %+v", n)
	}

	zero := reg.Normalize(0)
	if zero.Start != 0 || zero.End != 0 || zero.Center != 0 {
		t.Fatalf("degenerate extent should normalize to zero: %+v", zero)
	}
}

func TestStaleHandleDoesNotRemoveRemount(t *testing.T) {
	r := New(nil)
	old, _ := r.RegisterPinned("hero", StaticBounds{Top: 0, Span: 100})
	if err := r.Unregister("hero"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	fresh, err := r.RegisterPinned("hero", StaticBounds{Top: 0, Span: 200})
	if err != nil {
		t.Fatalf("RegisterPinned: %v", err)
	}

	old.Release()
	if _, ok := fresh.Region(); !ok {
		t.Fatal("stale handle released the remounted scene's region")
	}
	if _, ok := old.Region(); ok {
		t.Fatal("stale handle should not see the remounted region")
	}
}
