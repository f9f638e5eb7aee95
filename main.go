package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "roomsync",
		Short:        "Poll a meeting-room calendar into an in-memory meeting registry",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to .roomsync.toml")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Sync continuously until interrupted",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDaemon(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "once",
			Short: "Run a single fetch cycle and print the meetings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd.Context(), configPath)
			},
		},
		newStatusCommand(&configPath),
	)
	return root
}

func newStatusCommand(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sync cycles from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := readConfig(*configPath)
			if err != nil {
				return err
			}
			journal, err := OpenJournal(config.Database)
			if err != nil {
				return err
			}
			defer journal.Close()

			cycles, err := journal.RecentCycles(limit)
			if err != nil {
				return err
			}
			printCycles(cmd.OutOrStdout(), cycles)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of cycles to show")
	return cmd
}

// setup loads config and builds the logger, journal and syncer shared by run and once.
func setup(configPath string) (*Syncer, *MeetingRegistry, func(), error) {
	config, err := readConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading config file: %w", err)
	}
	logger, err := newLogger(config.VerbosityLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error creating logger: %w", err)
	}

	opts := []Option{WithLogger(logger)}
	cleanup := func() { _ = logger.Sync() }

	if !config.DisableJournal {
		journal, err := OpenJournal(config.Database)
		if err != nil {
			logger.Warn("journal disabled", zap.String("database", config.Database), zap.Error(err))
		} else {
			opts = append(opts, WithJournal(journal))
			cleanup = func() {
				_ = journal.Close()
				_ = logger.Sync()
			}
		}
	}

	registry := NewMeetingRegistry()
	return NewSyncer(config, registry, opts...), registry, cleanup, nil
}

func runDaemon(ctx context.Context, configPath string) error {
	syncer, _, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncer.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	syncer.Stop()
	syncer.Wait()
	return nil
}

func runOnce(ctx context.Context, configPath string) error {
	syncer, registry, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := syncer.config.Validate(); err != nil {
		return err
	}
	if err := syncer.FetchEvents(ctx); err != nil {
		return fmt.Errorf("unable to fetch calendar data: %w", err)
	}
	syncer.logger.Info("calendar fetched", zap.Int("meetings", registry.Len()))
	printMeetings(os.Stdout, registry.Meetings())
	return nil
}
