package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pacsim/pkg/pacsim"
)

// runFile is the on-disk layout of a train run config.
type runFile struct {
	RunID             string `yaml:"run_id"`
	Blueprint         string `yaml:"blueprint"`
	Population        int    `yaml:"population"`
	Generations       int    `yaml:"generations"`
	StartGeneration   int    `yaml:"start_generation"`
	Hidden            []int  `yaml:"hidden"`
	EliteCount        int    `yaml:"elite_count"`
	Selection         string `yaml:"selection"`
	MutationsPerChild int    `yaml:"mutations_per_child"`
	Workers           int    `yaml:"workers"`
	Seed              int64  `yaml:"seed"`
	ResumeGenomeID    string `yaml:"resume_genome_id"`
}

func loadTrainRequestFromConfig(path string) (pacsim.TrainRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return pacsim.TrainRequest{}, err
	}
	defer file.Close()

	var raw runFile
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return pacsim.TrainRequest{}, err
	}
	return pacsim.TrainRequest{
		RunID:             raw.RunID,
		Blueprint:         raw.Blueprint,
		Population:        raw.Population,
		Generations:       raw.Generations,
		StartGeneration:   raw.StartGeneration,
		Hidden:            raw.Hidden,
		EliteCount:        raw.EliteCount,
		Selection:         raw.Selection,
		MutationsPerChild: raw.MutationsPerChild,
		Workers:           raw.Workers,
		Seed:              raw.Seed,
		ResumeGenomeID:    raw.ResumeGenomeID,
	}, nil
}

func loadOrDefaultTrainRequest(configPath string) (pacsim.TrainRequest, error) {
	if configPath == "" {
		return pacsim.TrainRequest{}, nil
	}
	req, err := loadTrainRequestFromConfig(configPath)
	if err != nil {
		return pacsim.TrainRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// overrideFromFlags copies the explicitly set flags over a file-loaded
// request.
func overrideFromFlags(req *pacsim.TrainRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "blueprint":
			req.Blueprint = v.(string)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "start-gen":
			req.StartGeneration = v.(int)
		case "hidden":
			hidden, err := parseHidden(v.(string))
			if err != nil {
				return err
			}
			req.Hidden = hidden
		case "elite":
			req.EliteCount = v.(int)
		case "selection":
			req.Selection = v.(string)
		case "mutations":
			req.MutationsPerChild = v.(int)
		case "workers":
			req.Workers = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "resume-genome":
			req.ResumeGenomeID = v.(string)
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}

// parseHidden reads a comma separated list of hidden layer widths.
func parseHidden(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	layers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid hidden layer width %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("hidden layer width must be > 0, got %d", n)
		}
		layers = append(layers, n)
	}
	return layers, nil
}
