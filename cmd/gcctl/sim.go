package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gengc/gc"
	"github.com/joshuapare/gengc/heap"
	"github.com/joshuapare/gengc/internal/simulate"
	"github.com/joshuapare/gengc/internal/taskfarm"
)

var (
	simHeapWords  uint64
	simBudget     uint64
	simAllocs     int
	simAllocWords uint64
	simSurvival   int
	simImmutable  int
	simJitter     int
	simSeed       int64
	simThreads    uint
	simFullEvery  int
)

func init() {
	cmd := newSimCmd()
	cmd.Flags().Uint64Var(&simHeapWords, "heap-words", 1<<20, "Initial mutable heap size in words")
	cmd.Flags().Uint64Var(&simBudget, "budget", 0, "Total heap budget in words (0 = unlimited)")
	cmd.Flags().IntVar(&simAllocs, "allocs", 100000, "Number of allocations to perform")
	cmd.Flags().Uint64Var(&simAllocWords, "alloc-words", 64, "Words per allocation")
	cmd.Flags().IntVar(&simSurvival, "survival", 20, "Percent of each generation that survives")
	cmd.Flags().IntVar(&simImmutable, "immutable", 50, "Percent of survivors that are immutable data")
	cmd.Flags().IntVar(&simJitter, "jitter", 5, "Survival jitter in percentage points")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed for the survival model")
	cmd.Flags().UintVar(&simThreads, "threads", 4, "Worker threads for the collection engines")
	cmd.Flags().IntVar(&simFullEvery, "full-every", 0, "Force a full collection every N collections (0 = never)")
	rootCmd.AddCommand(cmd)
}

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a simulated mutator against the collector",
		Long: `The sim command allocates synthetic data until the heap fills, runs a
collection, and repeats, using a statistical survival model in place of real
collection engines. The accumulated statistics show how the sizing policy
behaved under the chosen profile.

Example:
  gcctl sim --allocs 500000 --survival 35
  gcctl sim --budget 2097152 --jitter 10 --json
  gcctl sim --full-every 100 --threads 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim()
		},
	}
	return cmd
}

func runSim() error {
	if simSurvival < 0 || simSurvival > 100 || simImmutable < 0 || simImmutable > 100 {
		return errors.New("survival and immutable percentages must be 0-100")
	}

	reg := heap.NewRegistry(simBudget)
	if _, ok := reg.NewLocalSpace(simHeapWords, heap.Mutable); !ok {
		return fmt.Errorf("cannot create a %d-word initial space within budget %d",
			simHeapWords, simBudget)
	}

	farm, err := taskfarm.New(simThreads, 100)
	if err != nil {
		return err
	}
	defer farm.Close()

	eng := simulate.New(simSeed, simulate.Config{
		SurvivalPercent:  simSurvival,
		ImmutablePercent: simImmutable,
		JitterPercent:    simJitter,
	}, farm)
	c := gc.New(gc.Config{}, reg, gc.Engines{
		Mark:    eng,
		Weak:    eng,
		Compact: eng,
		Update:  eng,
	})

	printVerbose("Simulating %d allocations of %d words (survival %d%%, immutable %d%%)\n",
		simAllocs, simAllocWords, simSurvival, simImmutable)

	collections := 0
	for i := 0; i < simAllocs; i++ {
		if simulate.Allocate(reg, simAllocWords) {
			continue
		}
		collections++
		full := simFullEvery > 0 && collections%simFullEvery == 0
		if err := c.RunCollection(full, simAllocWords); err != nil {
			return fmt.Errorf("heap exhausted after %d allocations: %w", i, err)
		}
		printVerbose("collection %d: %d local spaces, %d words total\n",
			collections, len(reg.Local()), reg.TotalLocalWords())
		if !simulate.Allocate(reg, simAllocWords) {
			return fmt.Errorf("allocation still failing after a successful collection")
		}
	}

	if jsonOut {
		return printJSON(c.Stats())
	}
	printInfo("\nFinal heap: %d local spaces, %d words (%d mutable free, %d immutable free)\n\n",
		len(reg.Local()), reg.TotalLocalWords(),
		reg.FreeWords(heap.Mutable), reg.FreeWords(heap.Immutable))
	printInfo("%s", c.Stats().Report())
	return nil
}
