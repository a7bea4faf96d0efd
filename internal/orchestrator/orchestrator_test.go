package orchestrator_test

import (
	"testing"

	"github.com/ashgo/ashfall/internal/orchestrator"
)

func TestAdvanceRunsPhasesInOrder(t *testing.T) {
	var order []string
	r := orchestrator.NewRunner()
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseCleanup, F: func(int64) {
		order = append(order, "cleanup")
	}})
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseFields, F: func(int64) {
		order = append(order, "fields")
	}})
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseActors, F: func(int64) {
		order = append(order, "actors")
	}})
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseItems, F: func(int64) {
		order = append(order, "items")
	}})

	r.Advance()

	want := []string{"fields", "items", "actors", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("phase %d: got %q, want %q (full: %v)", i, order[i], w, order)
		}
	}
}

func TestAdvanceIncrementsTurn(t *testing.T) {
	r := orchestrator.NewRunner()
	if r.Turn() != 0 {
		t.Fatalf("new runner turn = %d, want 0", r.Turn())
	}
	r.Advance()
	r.Advance()
	if r.Turn() != 2 {
		t.Fatalf("turn after two advances = %d, want 2", r.Turn())
	}
}

func TestSamePhaseInsertionOrderPreserved(t *testing.T) {
	var order []int
	r := orchestrator.NewRunner()
	for i := 0; i < 5; i++ {
		i := i
		r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseActors, F: func(int64) {
			order = append(order, i)
		}})
	}
	r.Advance()
	for i, v := range order {
		if v != i {
			t.Fatalf("insertion order not preserved: %v", order)
		}
	}
}
