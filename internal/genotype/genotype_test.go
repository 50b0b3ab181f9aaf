package genotype

import (
	"errors"
	"math/rand"
	"testing"

	"pacsim/internal/nn"
)

func TestConstructLayeredShape(t *testing.T) {
	genome, err := ConstructLayered(3, []int{4, 2}, 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if len(genome.InputIDs) != 3 || len(genome.OutputIDs) != 5 {
		t.Fatalf("unexpected io ids: in=%v out=%v", genome.InputIDs, genome.OutputIDs)
	}
	if len(genome.Neurons) != 3+4+2+5 {
		t.Fatalf("unexpected neuron count: %d", len(genome.Neurons))
	}
	if want := 3*4 + 4*2 + 2*5; len(genome.Synapses) != want {
		t.Fatalf("unexpected synapse count: got=%d want=%d", len(genome.Synapses), want)
	}
	if genome.ID == "" || genome.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected versioned genome with id, got %+v", genome.VersionedRecord)
	}
	for _, s := range genome.Synapses {
		if s.Weight < -0.5 || s.Weight >= 0.5 || !s.Enabled {
			t.Fatalf("unexpected synapse: %+v", s)
		}
	}

	outputs, err := nn.ForwardVector(genome, []float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if len(outputs) != 5 {
		t.Fatalf("expected 5 outputs, got %d", len(outputs))
	}
}

func TestConstructLayeredWithoutHidden(t *testing.T) {
	genome, err := ConstructLayered(2, nil, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if len(genome.Synapses) != 2 || genome.Neurons[2].Layer != 1 {
		t.Fatalf("expected direct input to output wiring, got %+v", genome)
	}
}

func TestConstructLayeredValidation(t *testing.T) {
	cases := []struct {
		name    string
		inputs  int
		hidden  []int
		outputs int
	}{
		{name: "no inputs", inputs: 0, outputs: 1},
		{name: "no outputs", inputs: 1, outputs: 0},
		{name: "empty hidden layer", inputs: 1, hidden: []int{3, 0}, outputs: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ConstructLayered(tc.inputs, tc.hidden, tc.outputs, nil); !errors.Is(err, ErrInvalidShape) {
				t.Fatalf("expected ErrInvalidShape, got %v", err)
			}
		})
	}
}

func TestConstructLayeredDeterministicWithSeed(t *testing.T) {
	a, err := ConstructLayered(2, []int{2}, 2, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("construct a: %v", err)
	}
	b, err := ConstructLayered(2, []int{2}, 2, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("construct b: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("expected equal ids, got %s and %s", a.ID, b.ID)
	}
	for i := range a.Synapses {
		if a.Synapses[i].Weight != b.Synapses[i].Weight {
			t.Fatalf("synapse %d differs: %f vs %f", i, a.Synapses[i].Weight, b.Synapses[i].Weight)
		}
	}
}

func TestCloneGenomeDoesNotAlias(t *testing.T) {
	genome, err := ConstructLayered(2, []int{2}, 2, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	clone := CloneGenome(genome)
	clone.Synapses[0].Weight = 42
	clone.Neurons[0].Bias = 42
	clone.InputIDs[0] = "changed"
	if genome.Synapses[0].Weight == 42 || genome.Neurons[0].Bias == 42 || genome.InputIDs[0] == "changed" {
		t.Fatal("clone mutated its source")
	}

	child := CloneAsChild(genome, "child")
	if child.ID != "child" || child.ParentID != genome.ID {
		t.Fatalf("unexpected child lineage: id=%s parent=%s", child.ID, child.ParentID)
	}
}

func TestRandomElement(t *testing.T) {
	values := []string{"a", "b", "c", "d"}
	gotA, err := RandomElement(rand.New(rand.NewSource(7)), values)
	if err != nil {
		t.Fatalf("random element first call: %v", err)
	}
	gotB, err := RandomElement(rand.New(rand.NewSource(7)), values)
	if err != nil {
		t.Fatalf("random element second call: %v", err)
	}
	if gotA != gotB {
		t.Fatalf("expected deterministic output with equal seeds, got %q != %q", gotA, gotB)
	}
	if _, err := RandomElement[int](rand.New(rand.NewSource(1)), nil); err == nil {
		t.Fatal("expected error for empty values")
	}
}
