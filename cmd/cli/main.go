package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/internal/config"
	"github.com/hazelcare/scheduler/internal/metrics"
	"github.com/hazelcare/scheduler/pkg/clients/redisnotify"
	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
	"github.com/hazelcare/scheduler/pkg/core/services"
	"github.com/hazelcare/scheduler/pkg/core/sweeper"
	"github.com/hazelcare/scheduler/pkg/postgres"
	"github.com/hazelcare/scheduler/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	database  *postgres.DB
	notifier  *redisnotify.Publisher
	collector *metrics.Collector
	opts      services.EngineOptions
	ctx       context.Context
}

var (
	env        string
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Caregiving shift scheduler - cascade shift assignment",
		Long:  `A CLI for creating caregiving shifts and driving the cascade offer engine that staffs them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.database != nil {
					app.database.Close()
				}
				if app.notifier != nil {
					app.notifier.Close()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (defaults to scheduler_config.yaml lookup)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(createShiftCmd())
	rootCmd.AddCommand(respondToOfferCmd())
	rootCmd.AddCommand(cancelShiftCmd())
	rootCmd.AddCommand(sweepOffersCmd())
	rootCmd.AddCommand(runSweeperCmd())
	rootCmd.AddCommand(listShiftsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, notifier, and metrics
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database ready")

	app.notifier = redisnotify.New(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB, app.logger)
	if err := app.notifier.Ping(app.ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.logger.Info("Notification publisher ready", zap.String("redis_addr", app.cfg.RedisAddr))

	loc, err := app.cfg.Location()
	if err != nil {
		return err
	}

	app.collector = metrics.NewCollector()
	app.opts = services.EngineOptions{
		OfferWindow:      app.cfg.OfferWindow(),
		MinShiftDuration: app.cfg.MinShiftDuration(),
		Location:         loc,
		Metrics:          app.collector,
	}

	return nil
}

// Command definitions

func createShiftCmd() *cobra.Command {
	var (
		elderID     string
		date        string
		startTime   string
		endTime     string
		mode        string
		caregiverID string
		preferredID string
		createdBy   string
		rruleStr    string
	)

	cmd := &cobra.Command{
		Use:   "createShift",
		Short: "Create a shift (direct-assign or cascade)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cascade.ShiftInput{
				ElderID:              elderID,
				Date:                 date,
				StartTime:            startTime,
				EndTime:              endTime,
				AssignmentMode:       model.AssignmentMode(mode),
				CaregiverID:          caregiverID,
				PreferredCaregiverID: preferredID,
				CreatedBy:            createdBy,
			}

			if rruleStr != "" {
				result, err := services.CreateRecurringShifts(app.ctx, app.database, app.notifier, app.logger, app.opts, input, rruleStr)
				if err != nil {
					return err
				}

				color.Green("\n✓ Created %d recurring shifts\n", len(result.Created))
				for _, shift := range result.Created {
					printShift(shift)
				}
				for failedDate, failErr := range result.Failed {
					color.Red("  ✗ %s: %v\n", failedDate, failErr)
				}
				return nil
			}

			shift, err := services.CreateShift(app.ctx, app.database, app.notifier, app.logger, app.opts, input)
			if err != nil {
				return err
			}

			color.Green("\n✓ Shift created\n")
			printShift(shift)
			return nil
		},
	}

	cmd.Flags().StringVar(&elderID, "elder", "", "Elder id (required)")
	cmd.Flags().StringVar(&date, "date", "", "Shift date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&startTime, "start", "", "Start time, HH:MM (required)")
	cmd.Flags().StringVar(&endTime, "end", "", "End time, HH:MM (required)")
	cmd.Flags().StringVar(&mode, "mode", "cascade", "Assignment mode: direct or cascade")
	cmd.Flags().StringVar(&caregiverID, "caregiver", "", "Caregiver id (required for direct mode)")
	cmd.Flags().StringVar(&preferredID, "preferred", "", "Preferred caregiver id (cascade ranking boost)")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Owner creating the shift (required)")
	cmd.Flags().StringVar(&rruleStr, "rrule", "", "Recurrence rule (e.g. FREQ=WEEKLY;COUNT=4)")
	cmd.MarkFlagRequired("elder")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	cmd.MarkFlagRequired("created-by")

	return cmd
}

func respondToOfferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "respondToOffer <shift_id> <caregiver_id> <accept|decline>",
		Short: "Record a caregiver's response to a pending offer",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := services.RespondToOffer(app.ctx, app.database, app.notifier, app.logger, app.opts,
				args[0], args[1], cascade.Decision(args[2]))
			if err != nil {
				return err
			}

			color.Green("\n✓ Response recorded\n")
			printShift(shift)
			return nil
		},
	}
}

func cancelShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancelShift <shift_id>",
		Short: "Cancel a shift (safe at any point in the cascade)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := services.CancelShift(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			color.Green("\n✓ Shift is %s\n", shift.Status)
			return nil
		},
	}
}

func sweepOffersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweepOffers",
		Short: "Run a single expired-offer sweep pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			advanced, err := services.SweepExpiredOffers(app.ctx, app.database, app.notifier, app.logger, app.opts)
			if err != nil {
				return err
			}

			color.Green("\n✓ Sweep complete, %d shifts advanced\n", advanced)
			return nil
		},
	}
}

func runSweeperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runSweeper",
		Short: "Run the expired-offer sweeper as a daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if app.cfg.MetricsAddr != "" {
				go func() {
					app.logger.Info("Serving metrics", zap.String("addr", app.cfg.MetricsAddr))
					mux := http.NewServeMux()
					mux.Handle("/metrics", app.collector.Handler())
					if err := http.ListenAndServe(app.cfg.MetricsAddr, mux); err != nil {
						app.logger.Error("Metrics server stopped", zap.Error(err))
					}
				}()
			}

			s := sweeper.New(app.database, app.notifier, app.logger, app.opts, app.cfg.SweepInterval())
			s.Run(ctx)
			return nil
		},
	}
}

func listShiftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listShifts <from_date> <to_date>",
		Short: "List shifts in a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shifts, err := services.ListShifts(app.ctx, app.database, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d shifts:\n\n", len(shifts))
			for i := range shifts {
				printShift(&shifts[i])
			}
			return nil
		},
	}
}

func printShift(s *model.Shift) {
	fmt.Printf("  %s  %s %s-%s  elder=%s  mode=%s  status=%s",
		s.ID, s.Date, s.StartTime, s.EndTime, s.ElderID, s.AssignmentMode, s.Status)
	if s.CaregiverID != "" {
		fmt.Printf("  caregiver=%s", s.CaregiverID)
	}
	fmt.Println()

	if s.Cascade != nil {
		fmt.Printf("    cascade: %d candidates, %d offers made\n",
			len(s.Cascade.RankedCandidates),
			len(s.Cascade.OfferHistory))
		for _, entry := range s.Cascade.OfferHistory {
			fmt.Printf("      %s  offered %s  expires %s  %s\n",
				entry.CaregiverID,
				entry.OfferedAt.Format("15:04:05"),
				entry.ExpiresAt.Format("15:04:05"),
				entry.Resolution)
		}
	}
}
