package nn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

// ActivationFunc maps a neuron's weighted input sum to its output.
type ActivationFunc func(x float64) float64

func builtinActivations() map[string]ActivationFunc {
	return map[string]ActivationFunc{
		"identity": func(x float64) float64 { return x },
		"relu":     func(x float64) float64 { return math.Max(0, x) },
		"tanh":     math.Tanh,
		"sigmoid":  func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		"gaussian": func(x float64) float64 { return math.Exp(-x * x) },
	}
}

// activations is keyed by the name stored on model.Neuron.Activation.
var activations = struct {
	sync.RWMutex
	byName map[string]ActivationFunc
}{byName: builtinActivations()}

// RegisterActivation adds a named activation that genomes may reference
// and mutation may pick.
func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" {
		return errors.New("activation name is required")
	}
	if fn == nil {
		return errors.New("activation function is required")
	}
	activations.Lock()
	defer activations.Unlock()
	if _, exists := activations.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, name)
	}
	activations.byName[name] = fn
	return nil
}

func GetActivation(name string) (ActivationFunc, error) {
	activations.RLock()
	fn, ok := activations.byName[name]
	activations.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActivationNotFound, name)
	}
	return fn, nil
}

// ListActivations returns registered names in sorted order, so random
// picks over the list are reproducible for a given seed.
func ListActivations() []string {
	activations.RLock()
	defer activations.RUnlock()
	names := make([]string, 0, len(activations.byName))
	for name := range activations.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetActivationsForTests() {
	activations.Lock()
	activations.byName = builtinActivations()
	activations.Unlock()
}
