package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bresilla/muli/config"
	"github.com/bresilla/muli/physics"
)

var runTicks int

var runCmd = &cobra.Command{
	Use:   "run <scene.yaml>",
	Short: "Step a scene for N ticks and print a summary of where every body ended up",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().IntVarP(&runTicks, "ticks", "n", 300, "number of fixed timesteps to run")
}

func loadScene(path string) (*physics.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	scene, err := config.LoadScene(data)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	w, err := scene.Build(physics.DefaultWorldSettings())
	if err != nil {
		return nil, fmt.Errorf("build world from %s: %w", path, err)
	}
	return w, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	w, err := loadScene(args[0])
	if err != nil {
		return err
	}

	logger.Info("run.start", "scene", args[0], "ticks", runTicks, "world", w.ID())
	for i := 0; i < runTicks; i++ {
		w.Step()
	}

	for _, b := range w.Bodies() {
		t := b.Transform()
		fmt.Printf("body %d: pos=(%.4f, %.4f) angle=%.4f sleeping=%v\n",
			b.ID(), t.Position.X, t.Position.Y, t.Rotation.Angle(), b.IsSleeping())
	}
	return nil
}
