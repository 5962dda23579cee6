package util

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	var fired int32
	d := NewDebouncer(30 * time.Millisecond)

	for i := 0; i < 5; i++ {
		d.Debounce(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("want 1 firing, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var fired int32
	d := NewDebouncer(20 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&fired, 1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("cancel should stop the pending call, got %d firings", got)
	}
}
