package genotype

import "pacsim/internal/model"

// CloneGenome deep-copies g. The copy shares no slices with g.
func CloneGenome(g model.Genome) model.Genome {
	out := g
	out.Neurons = append([]model.Neuron(nil), g.Neurons...)
	out.Synapses = append([]model.Synapse(nil), g.Synapses...)
	out.InputIDs = append([]string(nil), g.InputIDs...)
	out.OutputIDs = append([]string(nil), g.OutputIDs...)
	return out
}

// CloneAsChild copies g under a new id and records g as its parent.
func CloneAsChild(g model.Genome, id string) model.Genome {
	out := CloneGenome(g)
	out.ID = id
	out.ParentID = g.ID
	return out
}
