package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"pacsim/internal/agent"
	"pacsim/internal/genotype"
	"pacsim/internal/model"
)

type Config struct {
	Size       int
	EliteCount int
	Selector   Selector
	// Mutations is the weighted operator mix applied to each child.
	// DefaultMutations is used when empty.
	Mutations         []WeightedMutation
	MutationsPerChild int
	Rand              *rand.Rand
}

// LineageRecord describes how one member of the current generation was
// produced.
type LineageRecord struct {
	GenomeID   string `json:"genome_id"`
	ParentID   string `json:"parent_id"`
	Generation int    `json:"generation"`
	Operation  string `json:"operation"`
}

// Population holds one generation of controllers. Evaluation writes each
// member's fitness through SetFitness; Evolve replaces the members with the
// next generation.
type Population struct {
	cfg        Config
	rng        *rand.Rand
	members    []*agent.Cortex
	lineage    []LineageRecord
	generation int
}

func (c *Config) normalize() error {
	if c.Size <= 0 {
		return fmt.Errorf("population size must be > 0")
	}
	if c.EliteCount <= 0 || c.EliteCount > c.Size {
		return fmt.Errorf("elite count must be in [1, population size]")
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(1))
	}
	if c.Selector == nil {
		c.Selector = EliteSelector{}
	}
	if len(c.Mutations) == 0 {
		c.Mutations = DefaultMutations(c.Rand)
	}
	positive := false
	for i, item := range c.Mutations {
		if item.Operator == nil {
			return fmt.Errorf("mutation operator is required at index %d", i)
		}
		if item.Weight < 0 {
			return fmt.Errorf("mutation weight must be >= 0 at index %d", i)
		}
		positive = positive || item.Weight > 0
	}
	if !positive {
		return fmt.Errorf("mutation policy requires at least one positive weight")
	}
	if c.MutationsPerChild <= 0 {
		c.MutationsPerChild = 1
	}
	return nil
}

// NewRandomPopulation seeds cfg.Size freshly constructed layered genomes.
func NewRandomPopulation(cfg Config, inputs int, hidden []int, outputs int) (*Population, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	seeds := make([]model.Genome, cfg.Size)
	for i := range seeds {
		g, err := genotype.ConstructLayered(inputs, hidden, outputs, cfg.Rand)
		if err != nil {
			return nil, err
		}
		seeds[i] = g
	}
	return NewPopulation(cfg, seeds)
}

// NewPopulation builds a population from seeds. When there are fewer seeds
// than cfg.Size, the remaining members are clones of the seeds, in order,
// under fresh ids.
func NewPopulation(cfg Config, seeds []model.Genome) (*Population, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one seed genome is required")
	}
	p := &Population{cfg: cfg, rng: cfg.Rand}
	for i := 0; i < cfg.Size; i++ {
		seed := seeds[i%len(seeds)]
		g := genotype.CloneGenome(seed)
		op := "seed"
		if i >= len(seeds) {
			g = genotype.CloneAsChild(seed, genotype.NewGenomeID(p.rng))
			op = "seed_clone"
		}
		cortex, err := agent.NewCortex(g)
		if err != nil {
			return nil, err
		}
		p.members = append(p.members, cortex)
		p.lineage = append(p.lineage, LineageRecord{GenomeID: g.ID, ParentID: g.ParentID, Operation: op})
	}
	return p, nil
}

func (p *Population) Genomes() []*agent.Cortex {
	return append([]*agent.Cortex(nil), p.members...)
}

// Generation counts how many times Evolve has run.
func (p *Population) Generation() int {
	return p.generation
}

func (p *Population) Lineage() []LineageRecord {
	return append([]LineageRecord(nil), p.lineage...)
}

// Ranked returns the members sorted by fitness, best first. Ties keep
// member order.
func (p *Population) Ranked() []ScoredGenome {
	ranked := make([]ScoredGenome, len(p.members))
	for i, m := range p.members {
		ranked[i] = ScoredGenome{Genome: m.Genome(), Fitness: m.Fitness()}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// Evolve keeps the elite unchanged and fills the rest of the next
// generation with mutated children of selected parents. Fitness values are
// reset to zero.
func (p *Population) Evolve(ctx context.Context) error {
	ranked := p.Ranked()
	next := make([]*agent.Cortex, 0, p.cfg.Size)
	lineage := make([]LineageRecord, 0, p.cfg.Size)
	generation := p.generation + 1

	for i := 0; i < p.cfg.EliteCount; i++ {
		elite, err := agent.NewCortex(genotype.CloneGenome(ranked[i].Genome))
		if err != nil {
			return err
		}
		next = append(next, elite)
		lineage = append(lineage, LineageRecord{
			GenomeID:   elite.ID(),
			ParentID:   ranked[i].Genome.ID,
			Generation: generation,
			Operation:  "elite_clone",
		})
	}

	for len(next) < p.cfg.Size {
		if err := ctx.Err(); err != nil {
			return err
		}
		parent, err := p.cfg.Selector.PickParent(p.rng, ranked, p.cfg.EliteCount)
		if err != nil {
			return err
		}
		child, record, err := p.mutateFromParent(ctx, parent, generation)
		if err != nil {
			return err
		}
		cortex, err := agent.NewCortex(child)
		if err != nil {
			return err
		}
		next = append(next, cortex)
		lineage = append(lineage, record)
	}

	p.members = next
	p.lineage = lineage
	p.generation = generation
	return nil
}

func (p *Population) mutateFromParent(ctx context.Context, parent model.Genome, generation int) (model.Genome, LineageRecord, error) {
	mutated := genotype.CloneAsChild(parent, genotype.NewGenomeID(p.rng))
	names := make([]string, 0, p.cfg.MutationsPerChild)
	for step := 0; step < p.cfg.MutationsPerChild; step++ {
		operator := p.chooseMutation()
		next, err := operator.Apply(ctx, mutated)
		if err != nil {
			if errors.Is(err, ErrNoSynapses) || errors.Is(err, ErrNoNeurons) || errors.Is(err, ErrNoMutationChoice) {
				names = append(names, "noop("+operator.Name()+")")
				continue
			}
			return model.Genome{}, LineageRecord{}, fmt.Errorf("%s: %w", operator.Name(), err)
		}
		mutated = next
		names = append(names, operator.Name())
	}
	return mutated, LineageRecord{
		GenomeID:   mutated.ID,
		ParentID:   parent.ID,
		Generation: generation,
		Operation:  strings.Join(names, "+"),
	}, nil
}

func (p *Population) chooseMutation() Operator {
	total := 0.0
	for _, item := range p.cfg.Mutations {
		total += item.Weight
	}
	pick := p.rng.Float64() * total
	acc := 0.0
	for _, item := range p.cfg.Mutations {
		acc += item.Weight
		if item.Weight > 0 && pick <= acc {
			return item.Operator
		}
	}
	return p.cfg.Mutations[len(p.cfg.Mutations)-1].Operator
}
