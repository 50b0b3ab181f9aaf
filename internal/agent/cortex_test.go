package agent

import (
	"context"
	"errors"
	"testing"

	"pacsim/internal/model"
	"pacsim/internal/nn"
)

func passthrough() model.Genome {
	return model.Genome{
		ID: "g1",
		Neurons: []model.Neuron{
			{ID: "i1", Activation: "identity"},
			{ID: "i2", Activation: "identity"},
			{ID: "o1", Layer: 1, Activation: "identity"},
		},
		Synapses: []model.Synapse{
			{ID: "s1", From: "i1", To: "o1", Weight: 0.5, Enabled: true},
			{ID: "s2", From: "i2", To: "o1", Weight: 0.5, Enabled: true},
		},
		InputIDs:  []string{"i1", "i2"},
		OutputIDs: []string{"o1"},
	}
}

func TestCortexPropagate(t *testing.T) {
	cortex, err := NewCortex(passthrough())
	if err != nil {
		t.Fatalf("new cortex: %v", err)
	}
	out, err := cortex.Propagate([]float64{1, 3})
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if len(out) != 1 || out[0] != 2 {
		t.Fatalf("unexpected output: %v", out)
	}
	if _, err := cortex.Propagate([]float64{1}); !errors.Is(err, nn.ErrInputSize) {
		t.Fatalf("expected input size error, got %v", err)
	}
}

func TestCortexFitness(t *testing.T) {
	cortex, err := NewCortex(passthrough())
	if err != nil {
		t.Fatalf("new cortex: %v", err)
	}
	if cortex.ID() != "g1" || cortex.Fitness() != 0 {
		t.Fatalf("unexpected initial cortex state: id=%s fitness=%f", cortex.ID(), cortex.Fitness())
	}
	cortex.SetFitness(12.5)
	if cortex.Fitness() != 12.5 {
		t.Fatalf("expected fitness 12.5, got %f", cortex.Fitness())
	}
}

func TestCortexRunStepHonorsContext(t *testing.T) {
	cortex, err := NewCortex(passthrough())
	if err != nil {
		t.Fatalf("new cortex: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cortex.RunStep(ctx, []float64{1, 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled context, got %v", err)
	}
}

func TestNewCortexValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Genome)
	}{
		{name: "missing id", mutate: func(g *model.Genome) { g.ID = "" }},
		{name: "missing inputs", mutate: func(g *model.Genome) { g.InputIDs = nil }},
		{name: "missing outputs", mutate: func(g *model.Genome) { g.OutputIDs = nil }},
		{name: "unknown activation", mutate: func(g *model.Genome) { g.Neurons[2].Activation = "nope" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := passthrough()
			tc.mutate(&g)
			if _, err := NewCortex(g); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
