package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/patrickgillette/NeuroNet/config"
	"github.com/patrickgillette/NeuroNet/coordinator"
	"github.com/patrickgillette/NeuroNet/examples/gridworld"
	"github.com/patrickgillette/NeuroNet/population"
	"github.com/patrickgillette/NeuroNet/runtime"
)

// csiHomeClear moves the cursor home and clears the screen, the same
// ANSI sequence original_source/NeuroNet/demo_run.py writes before each
// rendered frame.
const csiHomeClear = "\x1b[H\x1b[J"

type runOptions struct {
	configPath   string
	width        int
	height       int
	ticks        int
	renderEvery  int
	realtime     bool
	navPort      string
	screenPort   string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a network config and drive it against the gridworld reference environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a network TOML config (required)")
	flags.IntVar(&opts.width, "width", 16, "gridworld screen width in cells")
	flags.IntVar(&opts.height, "height", 9, "gridworld screen height in cells")
	flags.IntVar(&opts.ticks, "ticks", 1000, "number of ticks to run")
	flags.IntVar(&opts.renderEvery, "render-every", 20, "render an ASCII frame every N ticks (0 disables rendering)")
	flags.BoolVar(&opts.realtime, "realtime", false, "pace ticks in wall-clock time by sleeping dt_ms between them")
	flags.StringVar(&opts.navPort, "nav-port", "nav", "output port name bound to the move decoder")
	flags.StringVar(&opts.screenPort, "screen-port", "screen", "input port name bound to the position encoder")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runNetwork(cmd *cobra.Command, opts *runOptions) error {
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("run_id", runID)

	root, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	core := population.NewCore()
	for _, p := range root.Populations {
		if err := core.Add(p.Name, p.Size); err != nil {
			return err
		}
	}
	n, err := core.Materialize()
	if err != nil {
		return err
	}

	net, err := runtime.NewNetwork(n, root.LIF, root.Synapse, root.Plasticity)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(root.Seed))
	for _, w := range root.Wiring {
		switch w.Kind {
		case "dense":
			pre, err := core.Get(w.PrePop)
			if err != nil {
				return err
			}
			post, err := core.Get(w.PostPop)
			if err != nil {
				return err
			}
			if err := population.Dense(net.Synapses, rng, pre, post, w.WRange, w.DelayMs, w.Plastic); err != nil {
				return err
			}
		case "lateral_inhibition":
			pop, err := core.Get(w.Pop)
			if err != nil {
				return err
			}
			if err := population.LateralInhibition(net.Synapses, pop, w.WInh, w.DelayMs); err != nil {
				return err
			}
		default:
			return fmt.Errorf("neuronet: unknown wiring kind %q", w.Kind)
		}
	}

	inPop, err := core.Get("in")
	if err != nil {
		return fmt.Errorf("neuronet: gridworld demo requires a population named \"in\": %w", err)
	}
	outPop, err := core.Get("out")
	if err != nil {
		return fmt.Errorf("neuronet: gridworld demo requires a population named \"out\": %w", err)
	}
	if inPop.Size != opts.width*opts.height {
		return fmt.Errorf("neuronet: population \"in\" has size %d, want width*height=%d", inPop.Size, opts.width*opts.height)
	}
	if outPop.Size != 4 {
		return fmt.Errorf("neuronet: population \"out\" has size %d, want 4 (up, down, left, right)", outPop.Size)
	}

	env := gridworld.NewScreen(opts.width, opts.height, opts.width/2, opts.height/2)
	encoder := &gridworld.PositionEncoder{
		Width:         opts.width,
		Height:        opts.height,
		BaseNeuronID:  inPop.Start,
		MinIntervalMs: 5.0,
	}
	outIDs := outPop.IDs()
	decoder := &gridworld.FirstToSpikeMoveDecoder{
		Up:    toSet(outIDs[0]),
		Down:  toSet(outIDs[1]),
		Left:  toSet(outIDs[2]),
		Right: toSet(outIDs[3]),
	}
	goal := gridworld.WallSeekingGoal{}

	readoutPeriodMs := 100.0
	for _, ob := range root.OutputBindings {
		if ob.Port == opts.navPort {
			readoutPeriodMs = ob.ReadoutPeriodMs
		}
	}

	io := coordinator.New(n)
	if err := io.BindInput(opts.screenPort, encoder, inPop.IDs()); err != nil {
		return err
	}
	if err := io.BindOutput(opts.navPort, decoder, outIDs, readoutPeriodMs); err != nil {
		return err
	}

	logger.Info("network ready", "neurons", n, "ticks", opts.ticks, "dt_ms", root.DtMs)

	t := 0.0
	for i := 0; i < opts.ticks; i++ {
		actions, err := runtime.Tick(net, io, env, goal, t, root.DtMs, root.InjectScale, logger)
		if err != nil {
			return err
		}
		if opts.renderEvery > 0 && i%opts.renderEvery == 0 {
			renderASCII(cmd, env, t)
		}
		if len(actions) > 0 {
			logger.Debug("action applied", "t", t, "actions", actions)
		}
		t += root.DtMs
		if opts.realtime {
			time.Sleep(time.Duration(root.DtMs * float64(time.Millisecond)))
		}
	}
	return nil
}

func toSet(ids ...int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// renderASCII prints one frame of the screen as '#'/'.' rows, matching
// original_source/NeuroNet/demo_run.py's render_ascii.
func renderASCII(cmd *cobra.Command, env *gridworld.Screen, t float64) {
	frame := env.Observe(t)["screen"].(*gridworld.Frame)
	var b strings.Builder
	b.WriteString(csiHomeClear)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if frame.Get(x, y) != 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "sim time: %.1f ms\n", t)
	fmt.Fprint(cmd.OutOrStdout(), b.String())
}
