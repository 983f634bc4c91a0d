// Command conslevel solves qualitative objectives on consumption Markov
// decision processes, can play a solved model against randomly sampled
// successors (seeded), and can render a model as Graphviz DOT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/rfielding/conslevel/consmdp"
	"github.com/rfielding/conslevel/fixedpoint"
	"github.com/rfielding/conslevel/internal/modelio"
	"github.com/rfielding/conslevel/internal/obslog"
	"github.com/rfielding/conslevel/selector"
	"github.com/rfielding/conslevel/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	runID := uuid.NewString()

	var err error
	switch os.Args[1] {
	case "solve":
		err = runSolve(os.Args[2:], runID)
	case "play":
		err = runPlay(os.Args[2:], runID)
	case "dot":
		err = runDot(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "conslevel:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: conslevel <solve|play|dot> [flags]")
}

func runDot(args []string) error {
	fs := flag.NewFlagSet("dot", flag.ExitOnError)
	model := fs.String("model", "", "path to a model YAML document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" {
		return fmt.Errorf("dot: -model is required")
	}
	mdp, err := modelio.Load(*model)
	if err != nil {
		return err
	}
	fmt.Print(mdp.DOT())
	return nil
}

func parseObjective(kind string, targetNames []string, mdp *consmdp.ConsMDP) (fixedpoint.Objective, error) {
	targets := fixedpoint.NewTargets()
	byName := make(map[string]consmdp.StateID)
	for s := 0; s < mdp.NumStates(); s++ {
		sid := consmdp.StateID(s)
		byName[mdp.StateName(sid)] = sid
	}
	for _, name := range targetNames {
		sid, ok := byName[name]
		if !ok {
			return fixedpoint.Objective{}, fmt.Errorf("unknown target state %q", name)
		}
		targets[sid] = true
	}

	switch kind {
	case "safety":
		return fixedpoint.SafetyObjective(), nil
	case "posreach":
		return fixedpoint.PositiveReachabilityObjective(targets), nil
	case "asreach":
		return fixedpoint.AlmostSureReachabilityObjective(targets), nil
	case "buchi":
		return fixedpoint.AlmostSureBuchiObjective(targets), nil
	default:
		return fixedpoint.Objective{}, fmt.Errorf("unknown objective kind %q (want safety, posreach, asreach or buchi)", kind)
	}
}

func runSolve(args []string, runID string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	model := fs.String("model", "", "path to a model YAML document")
	capacity := fs.Int("capacity", 0, "resource capacity")
	objective := fs.String("objective", "safety", "safety, posreach, asreach or buchi")
	var targets commaList
	fs.Var(&targets, "targets", "comma-separated target state names (ignored for safety)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" {
		return fmt.Errorf("solve: -model is required")
	}

	log := obslog.New(runID, obslog.Options{Writers: []io.Writer{os.Stderr}})
	log.Info("loading model", "path", *model)

	mdp, err := modelio.Load(*model)
	if err != nil {
		return err
	}
	obj, err := parseObjective(*objective, targets.values, mdp)
	if err != nil {
		return err
	}

	log.Info("solving", slog.String("objective", *objective), slog.Int("capacity", *capacity))
	result, err := fixedpoint.Solve(context.Background(), mdp, *capacity, obj)
	if err != nil {
		return err
	}

	for s := 0; s < mdp.NumStates(); s++ {
		sid := consmdp.StateID(s)
		lvl := result.MinLevel[s]
		if lvl == fixedpoint.Inf {
			fmt.Printf("%s\tinf\n", mdp.StateName(sid))
			continue
		}
		fmt.Printf("%s\t%d\n", mdp.StateName(sid), lvl)
	}
	return nil
}

func runPlay(args []string, runID string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	model := fs.String("model", "", "path to a model YAML document")
	capacity := fs.Int("capacity", 0, "resource capacity")
	objective := fs.String("objective", "safety", "safety, posreach, asreach or buchi")
	start := fs.String("start", "", "initial state name")
	initLevel := fs.Int("level", 0, "initial resource level")
	steps := fs.Int("steps", 20, "number of steps to play")
	seed := fs.Int64("seed", 1, "random seed for successor sampling")
	var targets commaList
	fs.Var(&targets, "targets", "comma-separated target state names (ignored for safety)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" || *start == "" {
		return fmt.Errorf("play: -model and -start are required")
	}

	log := obslog.New(runID, obslog.Options{Writers: []io.Writer{os.Stderr}})

	mdp, err := modelio.Load(*model)
	if err != nil {
		return err
	}
	obj, err := parseObjective(*objective, targets.values, mdp)
	if err != nil {
		return err
	}
	result, err := fixedpoint.Solve(context.Background(), mdp, *capacity, obj)
	if err != nil {
		return err
	}
	sel, err := selector.Build(mdp, result)
	if err != nil {
		return err
	}

	var initial consmdp.StateID
	found := false
	for s := 0; s < mdp.NumStates(); s++ {
		if mdp.StateName(consmdp.StateID(s)) == *start {
			initial = consmdp.StateID(s)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("play: unknown start state %q", *start)
	}

	st, err := strategy.New(mdp, sel, initial, fixedpoint.Level(*initLevel))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	log.Info("playing", "start", *start, "level", *initLevel, "steps", *steps)

	for i := 0; i < *steps; i++ {
		action, err := st.NextAction()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		succ := sampleSuccessor(rng, action.Dist)
		if _, err := st.Step(succ); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		fmt.Printf("%d\t%s --%s--> %s\tlevel=%d\n", i, mdp.StateName(action.Src), action.Label, mdp.StateName(succ), st.Level())
	}
	return nil
}

func sampleSuccessor(rng *rand.Rand, dist consmdp.Distribution) consmdp.StateID {
	r := rng.Float64()
	var cumulative float64
	support := dist.Support()
	for _, s := range support {
		cumulative += dist.Prob(s)
		if r <= cumulative {
			return s
		}
	}
	return support[len(support)-1]
}

// commaList is a flag.Value collecting a comma-separated list of names.
type commaList struct {
	values []string
}

func (c *commaList) String() string { return fmt.Sprint(c.values) }

func (c *commaList) Set(s string) error {
	c.values = nil
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				c.values = append(c.values, s[start:i])
			}
			start = i + 1
		}
	}
	return nil
}
