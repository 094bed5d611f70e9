package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(op Operation) FileEvent {
	return FileEvent{Path: "/tmp/scenes.json", Operation: op, Timestamp: time.Now()}
}

func collectOne(t *testing.T, d *Debouncer) FileEvent {
	t.Helper()
	select {
	case ev, ok := <-d.Output():
		require.True(t, ok, "output closed before an event arrived")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced event")
		return FileEvent{}
	}
}

func TestDebouncer_BurstCollapsesToOneEvent(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// When: a burst of modifications arrives
	for i := 0; i < 5; i++ {
		d.Add(event(OpModify))
	}

	// Then: exactly one event is emitted
	ev := collectOne(t, d)
	assert.Equal(t, OpModify, ev.Operation)

	select {
	case extra, ok := <-d.Output():
		if ok {
			t.Fatalf("unexpected second event: %v", extra)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_CreateThenDeleteCancelsOut(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// When: a create is immediately followed by a delete
	d.Add(event(OpCreate))
	d.Add(event(OpDelete))

	// Then: nothing is emitted
	select {
	case ev, ok := <-d.Output():
		if ok {
			t.Fatalf("expected no event, got %v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_CreateThenModifyStaysCreate(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// When: a create is followed by modifications
	d.Add(event(OpCreate))
	d.Add(event(OpModify))

	// Then: the emitted event is still a create
	ev := collectOne(t, d)
	assert.Equal(t, OpCreate, ev.Operation)
}

func TestDebouncer_DeleteThenCreateBecomesModify(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// When: the file is replaced (delete then create)
	d.Add(event(OpDelete))
	d.Add(event(OpCreate))

	// Then: the emitted event is a modify
	ev := collectOne(t, d)
	assert.Equal(t, OpModify, ev.Operation)
}

func TestDebouncer_StopIsIdempotentAndDropsLateAdds(t *testing.T) {
	// Given: a stopped debouncer
	d := NewDebouncer(20 * time.Millisecond)
	d.Stop()
	d.Stop()

	// When: adding after stop
	d.Add(event(OpModify))

	// Then: the output is closed with no events
	_, ok := <-d.Output()
	assert.False(t, ok)
}
