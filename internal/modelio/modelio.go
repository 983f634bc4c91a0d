// Package modelio loads and dumps ConsMDP models as YAML documents, the
// on-disk format for the solver CLI.
package modelio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rfielding/conslevel/consmdp"
)

// ModelDocument is the YAML schema for a ConsMDP on disk.
type ModelDocument struct {
	Version int              `yaml:"version"`
	States  []StateDocument  `yaml:"states"`
	Actions []ActionDocument `yaml:"actions"`
}

// StateDocument describes one state.
type StateDocument struct {
	Name   string `yaml:"name"`
	Reload bool   `yaml:"reload"`
}

// ActionDocument describes one action: its source state by name, a
// label, its consumption, and its successor distribution as a map from
// successor state name to probability; the weights must be positive and
// sum to 1.
type ActionDocument struct {
	From        string             `yaml:"from"`
	Label       string             `yaml:"label"`
	Consumption int                `yaml:"consumption"`
	To          map[string]float64 `yaml:"to"`
}

const supportedVersion = 1

// Load reads a ModelDocument from path and builds a frozen ConsMDP from
// it. State names must be unique; an action's "from" and every key of
// "to" must name a declared state.
func Load(path string) (*consmdp.ConsMDP, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc ModelDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Version != supportedVersion {
		return nil, fmt.Errorf("modelio: unsupported model document version: %d", doc.Version)
	}

	m := consmdp.New()
	byName := make(map[string]consmdp.StateID, len(doc.States))
	for _, s := range doc.States {
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("modelio: duplicate state name %q", s.Name)
		}
		byName[s.Name] = m.NewState(s.Name, s.Reload)
	}

	for i, a := range doc.Actions {
		src, ok := byName[a.From]
		if !ok {
			return nil, fmt.Errorf("modelio: action %d: unknown source state %q", i, a.From)
		}
		weights := make(map[consmdp.StateID]float64, len(a.To))
		for name, w := range a.To {
			succ, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("modelio: action %d: unknown successor state %q", i, name)
			}
			weights[succ] = w
		}
		dist, err := consmdp.NewDistribution(weights)
		if err != nil {
			return nil, fmt.Errorf("modelio: action %d: %w", i, err)
		}
		if _, err := m.AddAction(src, dist, a.Label, a.Consumption); err != nil {
			return nil, fmt.Errorf("modelio: action %d: %w", i, err)
		}
	}

	if err := m.Freeze(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dump renders mdp as a ModelDocument and writes it to path.
func Dump(path string, mdp *consmdp.ConsMDP) error {
	doc := ModelDocument{Version: supportedVersion}
	n := mdp.NumStates()
	for s := 0; s < n; s++ {
		sid := consmdp.StateID(s)
		doc.States = append(doc.States, StateDocument{
			Name:   mdp.StateName(sid),
			Reload: mdp.IsReload(sid),
		})
		for _, a := range mdp.ActionsFor(sid) {
			to := make(map[string]float64)
			for _, succ := range a.Dist.Support() {
				to[mdp.StateName(succ)] = a.Dist.Prob(succ)
			}
			doc.Actions = append(doc.Actions, ActionDocument{
				From:        mdp.StateName(sid),
				Label:       a.Label,
				Consumption: a.Consumption,
				To:          to,
			})
		}
	}

	b, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
