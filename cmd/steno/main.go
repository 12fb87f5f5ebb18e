// Command steno solves Steno-Chess puzzles: every legal game matching a
// string of marks is searched breadth-first and the surviving move
// sequences are printed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"steno-solver/solver"
	"steno-solver/steno"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		vocab        string
		maxPositions string
		maxCooks     string
		tasks        int
		solutions    int
		showBoards   bool
		showMeta     bool
		noChunking   bool
		startFen     string
		outputFile   string
		ckptFile     string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "steno [flags] <steno>",
		Short: "solve a Steno-Chess puzzle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			cfg := solver.DefaultConfig()
			v, err := steno.ParseVocabulary(vocab)
			if err != nil {
				return err
			}
			cfg.Vocab = v
			if cfg.MaxPositions, err = solver.ParseLimit(maxPositions); err != nil {
				return err
			}
			if cfg.MaxCooks, err = solver.ParseLimit(maxCooks); err != nil {
				return err
			}
			cfg.MaxTasks = tasks
			cfg.MaxSolutions = solutions
			cfg.DisplayPositions = showBoards
			cfg.ShowMetaMarks = showMeta
			cfg.AllowChunking = !noChunking
			cfg.OutputFile = outputFile
			if err := cfg.SetStartFEN(startFen); err != nil {
				return err
			}

			rep, err := solver.NewLogReporter(cfg.OutputFile)
			if err != nil {
				return err
			}
			defer rep.Close()

			s, err := solver.New(cfg, rep)
			if err != nil {
				return err
			}
			if ckptFile != "" {
				if blob, err := os.ReadFile(ckptFile); err == nil {
					if err := s.LoadCheckpoint(blob); err != nil {
						return err
					}
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := s.Solve(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, line := range res.ListSolutions(cfg.MaxSolutions, cfg.DisplayPositions) {
				fmt.Println(line)
			}
			if ckptFile != "" && s.Checkpoint() != nil {
				if err := os.WriteFile(ckptFile, s.Checkpoint(), 0o644); err != nil {
					return fmt.Errorf("%w: %v", solver.ErrInvalidFile, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&vocab, "vocabulary", "V", "Classic", "mark dialect: Classic, Extended or PGN")
	cmd.Flags().StringVar(&maxPositions, "max-positions", "MAX", "frontier cap per mark (K/M/B suffix, MAX)")
	cmd.Flags().StringVar(&maxCooks, "max-cooks", "8", "move sequences kept per position")
	cmd.Flags().IntVar(&tasks, "tasks", solver.DefaultConfig().MaxTasks, "parallel solver tasks")
	cmd.Flags().IntVar(&solutions, "solutions", 8, "solutions listed at the end (0 or >1)")
	cmd.Flags().BoolVar(&showBoards, "display-positions", false, "draw each solution's final board")
	cmd.Flags().BoolVar(&showMeta, "show-meta-marks", false, "report synthesised marks per entry")
	cmd.Flags().BoolVar(&noChunking, "no-chunking", false, "refuse chunk directives and a leading $")
	cmd.Flags().StringVar(&startFen, "fen", "", "start position: FEN fields or a Chess960 back rank")
	cmd.Flags().StringVar(&outputFile, "output", "", "append Status messages to this file")
	cmd.Flags().StringVar(&ckptFile, "checkpoint", "", "load/save the checkpoint here")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}
