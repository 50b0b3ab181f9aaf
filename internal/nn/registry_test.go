package nn

import (
	"errors"
	"math"
	"testing"

	"pacsim/internal/model"
)

func TestRegisteredActivationDrivesForward(t *testing.T) {
	t.Cleanup(resetActivationsForTests)

	if err := RegisterActivation("square", func(x float64) float64 { return x * x }); err != nil {
		t.Fatalf("register activation: %v", err)
	}
	genome := model.Genome{
		Neurons:   []model.Neuron{{ID: "in", Activation: "identity"}, {ID: "out", Layer: 1, Activation: "square"}},
		Synapses:  []model.Synapse{{ID: "s", From: "in", To: "out", Weight: 1, Enabled: true}},
		InputIDs:  []string{"in"},
		OutputIDs: []string{"out"},
	}
	got, err := ForwardVector(genome, []float64{-3})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got[0] != 9 {
		t.Fatalf("unexpected activation result: got=%f want=9", got[0])
	}
}

func TestRegisterActivationRejects(t *testing.T) {
	t.Cleanup(resetActivationsForTests)

	if err := RegisterActivation("", func(x float64) float64 { return x }); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := RegisterActivation("nil", nil); err == nil {
		t.Fatal("expected nil function error")
	}
	if err := RegisterActivation("tanh", math.Tanh); !errors.Is(err, ErrActivationExists) {
		t.Fatalf("expected ErrActivationExists for a builtin, got: %v", err)
	}
}

func TestGetActivationNotFound(t *testing.T) {
	if _, err := GetActivation("missing"); !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected ErrActivationNotFound, got: %v", err)
	}
}

func TestListActivationsSorted(t *testing.T) {
	t.Cleanup(resetActivationsForTests)

	for _, name := range []string{"zz", "aa"} {
		if err := RegisterActivation(name, func(x float64) float64 { return x }); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	names := ListActivations()
	want := []string{"aa", "gaussian", "identity", "relu", "sigmoid", "tanh", "zz"}
	if len(names) != len(want) {
		t.Fatalf("unexpected activation list: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected activation list: %v", names)
		}
	}
}

func TestBuiltinValues(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"identity", -2, -2},
		{"relu", -2, 0},
		{"relu", 3, 3},
		{"sigmoid", 0, 0.5},
		{"tanh", 0, 0},
		{"gaussian", 0, 1},
	}
	for _, tc := range cases {
		fn, err := GetActivation(tc.name)
		if err != nil {
			t.Fatalf("get builtin activation %s: %v", tc.name, err)
		}
		if got := fn(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}
