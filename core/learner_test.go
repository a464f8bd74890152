package core

import (
	"errors"
	"testing"

	erand "golang.org/x/exp/rand"
)

func TestLabels(t *testing.T) {
	got := Labels[Signal](3)
	for i, s := range got {
		if s != Signal(i) {
			t.Errorf("label %d: got %d", i, s)
		}
	}
	if len(Labels[State](0)) != 0 {
		t.Errorf("expected no labels for n=0")
	}
}

func TestSenderReceiverDomains(t *testing.T) {
	sender, err := NewSender(Labels[State](3), Labels[Signal](2))
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	receiver, err := NewReceiver(Labels[Signal](2), Labels[State](3))
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	if len(sender.Keys()) != 3 || len(sender.Outcomes()) != 2 {
		t.Errorf("sender: expected 3 urns of 2 signals, got %d urns of %d", len(sender.Keys()), len(sender.Outcomes()))
	}
	if len(receiver.Keys()) != 2 || len(receiver.Outcomes()) != 3 {
		t.Errorf("receiver: expected 2 urns of 3 states, got %d urns of %d", len(receiver.Keys()), len(receiver.Outcomes()))
	}

	src := erand.NewSource(1)
	for _, st := range sender.Keys() {
		sig, err := sender.Signal(src, st)
		if err != nil {
			t.Fatalf("Signal(%d): %v", st, err)
		}
		if sig < 0 || sig > 1 {
			t.Errorf("signal %d out of domain", sig)
		}
		act, err := receiver.Act(src, sig)
		if err != nil {
			t.Fatalf("Act(%d): %v", sig, err)
		}
		if act < 0 || act > 2 {
			t.Errorf("act %d out of domain", act)
		}
	}
}

func TestLearnerUnknownKeyCarriesRole(t *testing.T) {
	sender, err := NewSender(Labels[State](2), Labels[Signal](2))
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	_, err = sender.Signal(erand.NewSource(1), 7)
	var keyErr *UnknownKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("expected *UnknownKeyError, got %v", err)
	}
	if keyErr.Role != "sender" {
		t.Errorf("expected role sender, got %q", keyErr.Role)
	}

	receiver, err := NewReceiver(Labels[Signal](2), Labels[State](2))
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	if err := receiver.Reinforce(0, 4, Unit); !errors.As(err, &keyErr) || keyErr.Role != "receiver" {
		t.Errorf("expected receiver unknown key error, got %v", err)
	}
}

func TestNewLearnerWrapsRole(t *testing.T) {
	_, err := NewReceiver(nil, Labels[State](2))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if got := err.Error(); len(got) < 9 || got[:9] != "receiver:" {
		t.Errorf("expected error prefixed by role, got %q", got)
	}
}

func TestGameNewLearners(t *testing.T) {
	tests := []struct {
		name    string
		game    Game
		wantErr bool
	}{
		{"two by two", Game{States: 2, Signals: 2}, false},
		{"more signals", Game{States: 2, Signals: 4, Punish: PunishDecay}, false},
		{"no states", Game{States: 0, Signals: 2}, true},
		{"no signals", Game{States: 2, Signals: 0}, true},
		{"custom minimum weight", Game{States: 2, Signals: 2, MinWeight: 0.01}, false},
		{"negative minimum weight", Game{States: 2, Signals: 2, MinWeight: -1}, true},
		{"minimum weight above initial", Game{States: 2, Signals: 2, MinWeight: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, receiver, err := tt.game.NewLearners()
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLearners: %v", err)
			}
			if len(sender.Keys()) != tt.game.States || len(receiver.Keys()) != tt.game.Signals {
				t.Errorf("unexpected urn counts: sender %d, receiver %d", len(sender.Keys()), len(receiver.Keys()))
			}
			if sender.urns.PunishRule() != tt.game.Punish || receiver.urns.PunishRule() != tt.game.Punish {
				t.Errorf("punish rule not propagated")
			}
			wantMin := tt.game.MinWeight
			if wantMin == 0 {
				wantMin = DefaultMinWeight
			}
			if sender.urns.MinWeight() != wantMin || receiver.urns.MinWeight() != wantMin {
				t.Errorf("expected minimum weight %v, got %v and %v", wantMin, sender.urns.MinWeight(), receiver.urns.MinWeight())
			}
		})
	}
}
