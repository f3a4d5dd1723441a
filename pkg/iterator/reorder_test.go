package iterator

import (
	"testing"
	"time"

	"github.com/chazu/ifcgeom/pkg/errors"
)

func TestReorderBufferOrder(t *testing.T) {
	b := newReorderBuffer(4)
	for _, seq := range []int{2, 0, 3, 1} {
		b.Put(seq, result{err: errors.Newf("%d", seq)})
	}
	for seq := 0; seq < 4; seq++ {
		r, ok := b.Take(seq)
		if !ok {
			t.Fatalf("Take(%d) failed", seq)
		}
		if got := r.err.Error(); got != string(rune('0'+seq)) {
			t.Errorf("Take(%d) = %s", seq, got)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after draining", b.Len())
	}
}

func TestReorderBufferWindow(t *testing.T) {
	b := newReorderBuffer(2)
	if !b.Reserve(0) || !b.Reserve(1) {
		t.Fatal("Reserve() inside the window failed")
	}

	reserved := make(chan bool)
	go func() { reserved <- b.Reserve(2) }()
	select {
	case <-reserved:
		t.Fatal("Reserve(2) returned while the window was full")
	case <-time.After(20 * time.Millisecond):
	}

	b.Put(0, result{})
	if _, ok := b.Take(0); !ok {
		t.Fatal("Take(0) failed")
	}
	select {
	case ok := <-reserved:
		if !ok {
			t.Error("Reserve(2) = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("Reserve(2) still blocked after Take(0)")
	}
}

func TestReorderBufferClose(t *testing.T) {
	b := newReorderBuffer(1)
	taken := make(chan bool)
	go func() {
		_, ok := b.Take(0)
		taken <- ok
	}()
	reserved := make(chan bool)
	go func() { reserved <- b.Reserve(5) }()

	time.Sleep(10 * time.Millisecond)
	b.Close()
	if <-taken {
		t.Error("Take() after Close = true, want false")
	}
	if <-reserved {
		t.Error("Reserve() after Close = true, want false")
	}
	b.Put(0, result{})
	if b.Len() != 0 {
		t.Error("Put() after Close stored a result")
	}
}
