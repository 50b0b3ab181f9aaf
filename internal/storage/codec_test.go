package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pacsim/internal/model"
)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func TestDecodeGenomeFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("genome_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	genome, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if genome.ID != "genome-fixture-1" || len(genome.Neurons) != 3 || len(genome.Synapses) != 2 {
		t.Fatalf("unexpected genome: %+v", genome)
	}
	if genome.OutputIDs[0] != "o0" || genome.Neurons[2].Activation != "tanh" {
		t.Fatalf("unexpected genome wiring: %+v", genome)
	}
}

func TestGenomeRoundTripPreservesFields(t *testing.T) {
	in := model.Genome{
		VersionedRecord: Versioned(),
		ID:              "g",
		ParentID:        "p",
		Neurons:         []model.Neuron{{ID: "i", Activation: "identity"}, {ID: "o", Layer: 1, Activation: "relu", Bias: 0.1}},
		Synapses:        []model.Synapse{{ID: "s", From: "i", To: "o", Weight: 2, Enabled: true}},
		InputIDs:        []string{"i"},
		OutputIDs:       []string{"o"},
	}
	data, err := EncodeGenome(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch\nin=%+v\nout=%+v", in, out)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	cases := []struct {
		name   string
		decode func([]byte) error
	}{
		{name: "genome", decode: func(b []byte) error { _, err := DecodeGenome(b); return err }},
		{name: "best", decode: func(b []byte) error { _, err := DecodeBestGenome(b); return err }},
		{name: "high score", decode: func(b []byte) error { _, err := DecodeHighScore(b); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.decode([]byte(`{"schema_version": 2, "codec_version": 1}`))
			if !errors.Is(err, ErrVersionMismatch) {
				t.Fatalf("expected ErrVersionMismatch, got %v", err)
			}
		})
	}

	_, err := DecodeGenerationDiagnostics([]byte(`[{"schema_version": 1, "codec_version": 9}]`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected diagnostics version mismatch, got %v", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeGenome([]byte("{")); err == nil {
		t.Fatal("expected malformed genome error")
	}
}
