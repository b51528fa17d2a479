// Command trials runs repeated noisy actuation trials for one command and
// noise model, writing raw and summary CSVs, recording into the trial
// database, and optionally rendering report artifacts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/banshee-data/odometry.sim/internal/agent"
	"github.com/banshee-data/odometry.sim/internal/config"
	"github.com/banshee-data/odometry.sim/internal/control"
	"github.com/banshee-data/odometry.sim/internal/noisemodel"
	"github.com/banshee-data/odometry.sim/internal/report"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
)

func main() {
	var (
		configPath      = flag.String("config", "", "path to a sim config JSON file (optional)")
		robot           = flag.String("robot", "", "robot noise model (default from config)")
		controller      = flag.String("controller", "", "controller noise model (default from config)")
		command         = flag.String("command", control.MoveForward, "control to run (move_forward, move_backward, turn_left, turn_right)")
		amount          = flag.Float64("amount", 0, "commanded amount per step, metres or degrees (0 = config step size)")
		steps           = flag.Int("steps", 1, "steps per trial")
		trials          = flag.Int("trials", 100, "number of trials")
		noiseMultiplier = flag.Float64("noise-multiplier", -1, "noise multiplier (negative = config value)")
		seed            = flag.Uint64("seed", 0, "base seed; trial i uses seed+i (0 = config seed)")
		outDir          = flag.String("out", "trials-out", "output directory for CSVs and plots")
		dbPath          = flag.String("db", "", "record trials into this SQLite database (optional)")
		plots           = flag.Bool("plots", false, "render endpoint scatter HTML and forward histogram PNG")
	)
	flag.Parse()

	cfg := config.EmptySimConfig()
	if *configPath != "" {
		loaded, err := config.LoadSimConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	params := TrialParams{
		Robot:           *robot,
		Controller:      *controller,
		Command:         *command,
		Amount:          *amount,
		NoiseMultiplier: *noiseMultiplier,
		Steps:           *steps,
		Seed:            *seed,
	}
	if params.Robot == "" {
		params.Robot = cfg.GetDefaultRobot()
	}
	if params.Controller == "" {
		params.Controller = cfg.GetDefaultController()
	}
	if params.NoiseMultiplier < 0 {
		params.NoiseMultiplier = cfg.GetNoiseMultiplier()
	}
	if params.Seed == 0 {
		params.Seed = cfg.GetSeed()
	}
	if params.Amount == 0 {
		if params.Command == control.TurnLeft || params.Command == control.TurnRight {
			params.Amount = cfg.GetTurnStepDeg()
		} else {
			params.Amount = cfg.GetForwardStepM()
		}
	}
	if _, err := control.Default().Get(params.Command); err != nil {
		log.Fatalf("Unknown command: %v", err)
	}
	if *trials < 1 || *steps < 1 {
		log.Fatal("trials and steps must both be at least 1")
	}

	if err := run(params, *trials, *outDir, *dbPath, *plots); err != nil {
		log.Fatalf("Trial run failed: %v", err)
	}
}

func run(params TrialParams, trials int, outDir, dbPath string, plots bool) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	summaryFile, err := os.Create(filepath.Join(outDir, "summary.csv"))
	if err != nil {
		return err
	}
	defer summaryFile.Close()
	rawFile, err := os.Create(filepath.Join(outDir, "raw.csv"))
	if err != nil {
		return err
	}
	defer rawFile.Close()

	out := NewCSVWriter(summaryFile, rawFile)
	out.WriteHeaders()
	defer out.Flush()

	var db *trialdb.DB
	runID := uuid.NewString()
	if dbPath != "" {
		db, err = trialdb.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open trial database: %w", err)
		}
		defer db.Close()

		err = db.InsertRun(trialdb.Run{
			RunID:           runID,
			Robot:           params.Robot,
			Controller:      params.Controller,
			Command:         params.Command,
			Amount:          params.Amount,
			NoiseMultiplier: params.NoiseMultiplier,
			Seed:            params.Seed,
			Trials:          trials,
		})
		if err != nil {
			return err
		}
	}

	log.Printf("Running %d trials of %s (amount=%g, %s/%s, multiplier=%g, seed=%d)",
		trials, params.Command, params.Amount, params.Robot, params.Controller,
		params.NoiseMultiplier, params.Seed)

	var finals []trialdb.StepRecord
	for trial := 0; trial < trials; trial++ {
		a, err := agent.New(agent.Config{
			Robot:           noisemodel.Robot(params.Robot),
			Controller:      noisemodel.Controller(params.Controller),
			NoiseMultiplier: params.NoiseMultiplier,
			Seed:            params.Seed + uint64(trial),
		})
		if err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}

		var last agent.Step
		for i := 0; i < params.Steps; i++ {
			step, err := a.Act(params.Command, params.Amount)
			if err != nil {
				return fmt.Errorf("trial %d step %d: %w", trial, i, err)
			}
			out.WriteRawRow(params, trial, step)

			record := trialdb.StepRecord{
				RunID:     runID,
				Trial:     trial,
				StepIndex: step.Index,
				Command:   step.Command,
				Amount:    step.Amount,
				PosX:      step.Position.X,
				PosY:      step.Position.Y,
				PosZ:      step.Position.Z,
				YawRad:    step.YawRad,
			}
			if db != nil {
				if err := db.InsertStep(record); err != nil {
					return err
				}
			}
			last = step
		}

		finals = append(finals, trialdb.StepRecord{
			RunID: runID, Trial: trial, StepIndex: last.Index,
			Command: last.Command, Amount: last.Amount,
			PosX: last.Position.X, PosY: last.Position.Y, PosZ: last.Position.Z,
			YawRad: last.YawRad,
		})
	}

	out.WriteSummary(params, finals)

	if plots {
		if err := renderArtifacts(outDir, params, finals); err != nil {
			return err
		}
	}
	return nil
}

func renderArtifacts(outDir string, params TrialParams, finals []trialdb.StepRecord) error {
	scatterPath := filepath.Join(outDir, "endpoints.html")
	scatterFile, err := os.Create(scatterPath)
	if err != nil {
		return err
	}
	defer scatterFile.Close()

	subtitle := fmt.Sprintf("%s amount=%g %s/%s multiplier=%g trials=%d",
		params.Command, params.Amount, params.Robot, params.Controller,
		params.NoiseMultiplier, len(finals))
	if err := report.EndpointScatter(scatterFile, "Trial Endpoints", subtitle, finals); err != nil {
		return err
	}

	forward := make([]float64, len(finals))
	for i, f := range finals {
		forward[i] = -f.PosZ
	}
	histPath := filepath.Join(outDir, "forward_hist.png")
	if err := report.ForwardHistogram(histPath, "Forward displacement", forward, 30); err != nil {
		return err
	}

	log.Printf("Wrote %s and %s", scatterPath, histPath)
	return nil
}
