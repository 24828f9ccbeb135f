package engine

import "testing"

func TestTracker_Transitions(t *testing.T) {
	t.Parallel()

	tr := newTracker([]string{"20", "21"})
	if got := tr.get("20"); got != StatePending {
		t.Fatalf("initial state %s", got)
	}
	if err := tr.move("20", StateResolved); err == nil {
		t.Fatal("pending -> resolved must go through resolving")
	}
	if err := tr.move("20", StateResolving); err != nil {
		t.Fatalf("pending -> resolving: %v", err)
	}
	if err := tr.move("20", StateResolved); err != nil {
		t.Fatalf("resolving -> resolved: %v", err)
	}
	if err := tr.move("20", StateUnresolved); err == nil {
		t.Fatal("terminal states must not change")
	}
	if err := tr.move("21", StateUnresolved); err != nil {
		t.Fatalf("pending -> unresolved short-circuit: %v", err)
	}
}
