package actorset_test

import (
	"testing"

	"github.com/ashgo/ashfall/internal/actorset"
	"github.com/ashgo/ashfall/internal/geom"
)

func TestBaseBudgetLifecycle(t *testing.T) {
	b := &actorset.Base{Speed: 100}
	b.RefreshBudget()
	if b.Budget() != 100 {
		t.Fatalf("budget after refresh = %d, want 100", b.Budget())
	}
	b.SpendBudget(60)
	if b.Budget() != 40 {
		t.Fatalf("budget after spend = %d, want 40", b.Budget())
	}
	b.RefreshBudget()
	if b.Budget() != 140 {
		t.Fatalf("budget after second refresh = %d, want 140 (budgets accumulate across turns)", b.Budget())
	}
}

func TestBaseSetPosition(t *testing.T) {
	b := &actorset.Base{}
	p := geom.Point{X: 3, Y: 4, Z: 1}
	b.SetPosition(p)
	if b.Position() != p {
		t.Fatalf("Position() = %v, want %v", b.Position(), p)
	}
}

func TestStatusAddReplaceClear(t *testing.T) {
	b := &actorset.Base{}
	b.AddStatus(actorset.StatusEffect{Name: "poison", Duration: 5})
	if !b.HasStatus("poison") {
		t.Fatal("expected poison status present")
	}
	// adding the same name again replaces rather than duplicates
	b.AddStatus(actorset.StatusEffect{Name: "poison", Duration: 9})
	if len(b.Statuses) != 1 {
		t.Fatalf("expected 1 status after replace, got %d", len(b.Statuses))
	}
	if b.Statuses[0].Duration != 9 {
		t.Fatalf("replaced duration = %d, want 9", b.Statuses[0].Duration)
	}
	b.ClearStatus("poison")
	if b.HasStatus("poison") {
		t.Fatal("expected poison status cleared")
	}
}

func TestMonsterSatisfiesActor(t *testing.T) {
	var _ actorset.Actor = &actorset.Monster{}
	var _ actorset.Actor = &actorset.Player{}
	var _ actorset.Actor = &actorset.NPC{}
}
