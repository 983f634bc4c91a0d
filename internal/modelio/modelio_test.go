package modelio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rfielding/conslevel/consmdp"
)

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const twoStateDoc = `
version: 1
states:
  - name: s0
    reload: false
  - name: s1
    reload: true
actions:
  - from: s0
    label: go
    consumption: 2
    to:
      s1: 1
  - from: s1
    label: back
    consumption: 1
    to:
      s0: 1
`

func TestLoadBuildsFrozenModel(t *testing.T) {
	path := writeDoc(t, twoStateDoc)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NumStates() != 2 {
		t.Fatalf("NumStates() = %d, want 2", m.NumStates())
	}
	if !m.Frozen() {
		t.Fatalf("Load should return a frozen model")
	}
}

func TestLoadRejectsUnknownState(t *testing.T) {
	path := writeDoc(t, `
version: 1
states:
  - name: s0
    reload: false
actions:
  - from: s0
    label: go
    consumption: 1
    to:
      ghost: 1
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an action referencing an undeclared state")
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	path := writeDoc(t, "version: 2\nstates: []\nactions: []\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unsupported document version")
	}
}

func TestDumpLoadRoundTrip(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", false)
	s1 := m.NewState("s1", true)
	dist, err := consmdp.NewDistribution(map[consmdp.StateID]float64{s1: 1})
	if err != nil {
		t.Fatalf("NewDistribution: %v", err)
	}
	if _, err := m.AddAction(s0, dist, "go", 2); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	back, err := consmdp.NewDistribution(map[consmdp.StateID]float64{s0: 1})
	if err != nil {
		t.Fatalf("NewDistribution: %v", err)
	}
	if _, err := m.AddAction(s1, back, "back", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if err := m.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Dump(path, m); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Dump: %v", err)
	}
	if reloaded.NumStates() != m.NumStates() {
		t.Fatalf("round-tripped model has %d states, want %d", reloaded.NumStates(), m.NumStates())
	}
	if reloaded.NumActions() != m.NumActions() {
		t.Fatalf("round-tripped model has %d actions, want %d", reloaded.NumActions(), m.NumActions())
	}
}
