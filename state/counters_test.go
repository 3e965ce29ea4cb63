package state

import "testing"

func TestPersistentCounterFirstCallYieldsStart(t *testing.T) {
	counters := NewCounters(nil, nil)
	next := counters.Persistent("employeeId", 100)

	if got := next(); got != 100 {
		t.Errorf("first draw = %d, want 100", got)
	}
	if got := next(); got != 101 {
		t.Errorf("second draw = %d, want 101", got)
	}
}

func TestPersistentCounterResumesFromSeed(t *testing.T) {
	counters := NewCounters(map[string]int{"employeeId": 7}, nil)
	next := counters.Persistent("employeeId", 1)

	if got := next(); got != 7 {
		t.Errorf("draw after seed = %d, want 7", got)
	}
}

func TestPersistentCountersAreIndependent(t *testing.T) {
	counters := NewCounters(nil, nil)
	a := counters.Persistent("a", 1)
	b := counters.Persistent("b", 10)

	a()
	a()
	if got := b(); got != 10 {
		t.Errorf("counter b first draw = %d, want 10", got)
	}
}

func TestInitIfAbsent(t *testing.T) {
	counters := NewCounters(map[string]int{"present": 42}, nil)

	counters.InitIfAbsent("present", 5)
	counters.InitIfAbsent("absent", 5)

	snap := counters.Snapshot()
	if snap["present"] != 42 {
		t.Errorf("present = %d, want 42 (InitIfAbsent must not overwrite)", snap["present"])
	}
	if snap["absent"] != 5 {
		t.Errorf("absent = %d, want 5", snap["absent"])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	counters := NewCounters(nil, nil)
	counters.Persistent("a", 1)()

	snap := counters.Snapshot()
	snap["a"] = 999

	if counters.Snapshot()["a"] != 2 {
		t.Error("mutating a snapshot must not touch the store")
	}
}

func TestEphemeralCounterPostIncrement(t *testing.T) {
	next := EphemeralCounter()
	for want := 1; want <= 3; want++ {
		if got := next(); got != want {
			t.Errorf("draw = %d, want %d", got, want)
		}
	}

	// A fresh ephemeral counter starts over.
	if got := EphemeralCounter()(); got != 1 {
		t.Errorf("fresh counter first draw = %d, want 1", got)
	}
}
