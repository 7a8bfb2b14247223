package session

import (
	"errors"
	"testing"
)

func TestWizardHappyPath(t *testing.T) {
	store := NewStore()
	const chatID = int64(42)
	const ownerID = int64(7)

	store.Start(chatID, ownerID)

	w, err := store.Advance(chatID, ownerID, "Moon Doge")
	if err != nil {
		t.Fatalf("name step: %v", err)
	}
	if w.Step != StepSymbol {
		t.Fatalf("after name got step %s, want %s", w.Step, StepSymbol)
	}

	w, err = store.Advance(chatID, ownerID, "mdoge")
	if err != nil {
		t.Fatalf("symbol step: %v", err)
	}
	if w.Draft.Symbol != "MDOGE" {
		t.Fatalf("symbol not uppercased: %q", w.Draft.Symbol)
	}
	if w.Step != StepSupply {
		t.Fatalf("after symbol got step %s, want %s", w.Step, StepSupply)
	}

	w, err = store.Advance(chatID, ownerID, "1,000,000")
	if err != nil {
		t.Fatalf("supply step: %v", err)
	}
	if w.Step != StepConfirmation {
		t.Fatalf("after supply got step %s, want %s", w.Step, StepConfirmation)
	}
	if w.Draft.Supply != 1_000_000 {
		t.Fatalf("supply = %d, want 1000000", w.Draft.Supply)
	}

	draft, err := store.Complete(chatID, ownerID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if draft.Name != "Moon Doge" || draft.Symbol != "MDOGE" || draft.Supply != 1_000_000 {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if store.Active(chatID) {
		t.Fatal("session still active after completion")
	}
}

func TestWizardInvalidInputDoesNotAdvance(t *testing.T) {
	cases := []struct {
		name  string
		step  Step
		setup []string
		input string
	}{
		{name: "empty name", step: StepName, input: "   "},
		{name: "name too long", step: StepName, input: "this token name is far too long to be accepted ever"},
		{name: "symbol with punctuation", step: StepSymbol, setup: []string{"Doge"}, input: "DO-GE"},
		{name: "symbol too long", step: StepSymbol, setup: []string{"Doge"}, input: "ABCDEFGHIJK"},
		{name: "supply not a number", step: StepSupply, setup: []string{"Doge", "DOGE"}, input: "lots"},
		{name: "supply zero", step: StepSupply, setup: []string{"Doge", "DOGE"}, input: "0"},
		{name: "supply over cap", step: StepSupply, setup: []string{"Doge", "DOGE"}, input: "2000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			store.Start(1, 10)
			for _, in := range tc.setup {
				if _, err := store.Advance(1, 10, in); err != nil {
					t.Fatalf("setup input %q: %v", in, err)
				}
			}
			w, err := store.Advance(1, 10, tc.input)
			if err == nil {
				t.Fatalf("input %q accepted, want error", tc.input)
			}
			if w.Step != tc.step {
				t.Fatalf("step moved to %s on invalid input, want %s", w.Step, tc.step)
			}
			if !store.Active(1) {
				t.Fatal("session dropped on invalid input")
			}
		})
	}
}

func TestWizardRestartReplacesSession(t *testing.T) {
	store := NewStore()
	store.Start(7, 10)
	if _, err := store.Advance(7, 10, "First"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	w := store.Start(7, 10)
	if w.Step != StepName {
		t.Fatalf("restarted wizard at step %s, want %s", w.Step, StepName)
	}
	if w.Draft.Name != "" {
		t.Fatalf("restarted wizard kept draft name %q", w.Draft.Name)
	}
}

func TestWizardCancel(t *testing.T) {
	store := NewStore()
	if store.Cancel(9) {
		t.Fatal("cancel reported success with no session")
	}
	store.Start(9, 10)
	if !store.Cancel(9) {
		t.Fatal("cancel failed for active session")
	}
	if _, err := store.Advance(9, 10, "Doge"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("advance after cancel: got %v, want ErrNoSession", err)
	}
}

func TestWizardIgnoresOtherUsers(t *testing.T) {
	store := NewStore()
	const owner, intruder = int64(10), int64(11)
	store.Start(5, owner)

	if _, err := store.Advance(5, intruder, "Hijack Coin"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("intruder advance: got %v, want ErrNotOwner", err)
	}
	w, ok := store.Get(5)
	if !ok {
		t.Fatal("session dropped by intruder input")
	}
	if w.Step != StepName || w.Draft.Name != "" {
		t.Fatalf("intruder input changed the wizard: %+v", w)
	}

	for _, in := range []string{"Moon Doge", "MDOGE", "1000"} {
		if _, err := store.Advance(5, owner, in); err != nil {
			t.Fatalf("owner input %q: %v", in, err)
		}
	}
	if _, err := store.Complete(5, intruder); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("intruder complete: got %v, want ErrNotOwner", err)
	}
	if _, err := store.Complete(5, owner); err != nil {
		t.Fatalf("owner complete: %v", err)
	}
}

func TestWizardCompleteRequiresConfirmationStep(t *testing.T) {
	store := NewStore()
	store.Start(3, 10)
	if _, err := store.Complete(3, 10); err == nil {
		t.Fatal("complete succeeded before confirmation step")
	}
	if !store.Active(3) {
		t.Fatal("premature complete dropped the session")
	}
}
