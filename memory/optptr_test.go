package memory

import (
	"testing"
	"unsafe"
)

func TestOptPtrNone(t *testing.T) {
	var zero OptPtr[int]
	n := None[int]()
	for _, o := range []OptPtr[int]{zero, n} {
		if !o.IsNone() || o.IsSome() {
			t.Error("expected none")
		}
		if _, ok := o.AsRef(); ok {
			t.Error("AsRef on none should report false")
		}
		if o.AsMut() != nil {
			t.Error("AsMut on none should be nil")
		}
		if o.String() != "none" {
			t.Errorf("got %q", o.String())
		}
	}
}

func TestOptPtrSameSizeAsPtr(t *testing.T) {
	if unsafe.Sizeof(OptPtr[int]{}) != unsafe.Sizeof(Ptr[int]{}) {
		t.Error("OptPtr should add no space over Ptr")
	}
}

func TestOptPtrSome(t *testing.T) {
	forEachProfile(t, func(t *testing.T, h *Heap) {
		p := NewIn(h, 5)
		o := Some(p.Clone())
		defer p.Release()

		got, ok := o.AsRef()
		if !ok || !got.PtrEq(p) {
			t.Fatal("AsRef should return the wrapped pointer")
		}
		if p.RefCount() != 2 {
			t.Errorf("RefCount = %d, want 2", p.RefCount())
		}
		if o.String() != "some(5)" {
			t.Errorf("got %q", o.String())
		}

		c := o.Clone()
		if p.RefCount() != 3 {
			t.Errorf("RefCount after clone = %d, want 3", p.RefCount())
		}
		c.Release()
		if c.IsSome() {
			t.Error("Release should leave none")
		}

		taken, ok := o.Take()
		if !ok || o.IsSome() {
			t.Fatal("Take should empty the option")
		}
		taken.Release()
		if p.RefCount() != 1 {
			t.Errorf("RefCount after take = %d, want 1", p.RefCount())
		}
	})
}

func TestOptPtrGetOrInsertWith(t *testing.T) {
	forEachProfile(t, func(t *testing.T, h *Heap) {
		var o OptPtr[string]
		calls := 0
		mk := func() Ptr[string] {
			calls++
			return NewIn(h, "made")
		}

		first := o.GetOrInsertWith(mk)
		second := o.GetOrInsertWith(mk)
		if calls != 1 {
			t.Errorf("f called %d times, want 1", calls)
		}
		if !first.PtrEq(*second) || *second.Get() != "made" {
			t.Error("second call should return the stored pointer")
		}
		o.Release()
	})
}

func TestOptPtrGetOrInsertDefaultIn(t *testing.T) {
	forEachProfile(t, func(t *testing.T, h *Heap) {
		var o OptPtr[int]
		p := o.GetOrInsertDefaultIn(h)
		if *p.Get() != 0 {
			t.Errorf("expected zero value, got %d", *p.Get())
		}
		if p.Heap() != h {
			t.Error("default value should be allocated on the given heap")
		}
		if again := o.GetOrInsertDefaultIn(h); !again.PtrEq(*p) {
			t.Error("second call should return the stored pointer")
		}
		o.Release()
		if st := h.Stats(); st.Live != 0 {
			t.Errorf("expected nothing live, got %+v", st)
		}
	})
}

func TestOptPtrAsMutAndSet(t *testing.T) {
	forEachProfile(t, func(t *testing.T, h *Heap) {
		old := NewIn(h, 1)
		watch := old.Clone()
		o := Some(old)

		slot := o.AsMut()
		if slot == nil {
			t.Fatal("AsMut on some should return the slot")
		}
		*MakeMut(slot) = 2
		if *watch.Get() != 1 {
			t.Error("MakeMut through AsMut must not change other handles")
		}

		o.Set(NewIn(h, 3))
		if p, _ := o.IntoOption(); *p.Get() != 3 {
			t.Errorf("Set did not store the new pointer")
		}
		o.Release()
		watch.Release()
		if st := h.Stats(); st.Live != 0 {
			t.Errorf("leaked allocations: %+v", st)
		}
	})
}

func TestFromOption(t *testing.T) {
	forEachProfile(t, func(t *testing.T, h *Heap) {
		p := NewIn(h, 1)
		if FromOption(p, false).IsSome() {
			t.Error("ok=false should give none")
		}
		o := FromOption(p, true)
		if !o.IsSome() {
			t.Error("ok=true should give some")
		}
		o.Release()
	})
}
