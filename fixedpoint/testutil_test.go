package fixedpoint

import (
	"context"
	"testing"

	"github.com/rfielding/conslevel/consmdp"
)

func dist(t *testing.T, weights map[consmdp.StateID]float64) consmdp.Distribution {
	t.Helper()
	d, err := consmdp.NewDistribution(weights)
	if err != nil {
		t.Fatalf("NewDistribution: %v", err)
	}
	return d
}

func det(t *testing.T, s consmdp.StateID) consmdp.Distribution {
	t.Helper()
	return dist(t, map[consmdp.StateID]float64{s: 1})
}

func mustFreeze(t *testing.T, m *consmdp.ConsMDP) *consmdp.ConsMDP {
	t.Helper()
	if err := m.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return m
}

func bg() context.Context {
	return context.Background()
}
