package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/runtrack/internal/config"
	"github.com/sandeepkv93/runtrack/internal/dispatch"
	"github.com/sandeepkv93/runtrack/internal/logger"
	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/scheduler"
	"github.com/sandeepkv93/runtrack/internal/storage"
	"github.com/sandeepkv93/runtrack/internal/tracker"
	"github.com/sandeepkv93/runtrack/internal/update"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "runtrack failed: %v\n", err)
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand of one invocation.
type cli struct {
	v   *viper.Viper
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper(), cfg: config.Default()}
	root := &cobra.Command{
		Use:   "runtrack",
		Short: "Running goals with progress notifications",
		Long: `runtrack tracks running goals and notifies you about their progress.
Without a subcommand it opens the terminal UI; the subcommands below script the same operations.
- Goals: distance, frequency, duration or pace targets over a number of days.
- Notifications: milestones at 25/50/75/100%, deadline warnings, streaks, summaries and daily reminders.
- Preferences: quiet hours, per-type switches and platform delivery, importable as YAML.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv(slog.Default())
			c.cfg = config.FromViper(config.Default(), c.v, slog.Default())
			return nil
		},
		RunE: c.runTUI,
	}
	c.addPersistentFlags(root)
	root.AddCommand(c.checkCmd())
	root.AddCommand(c.remindCmd())
	root.AddCommand(c.goalCmd())
	root.AddCommand(c.runCmd())
	root.AddCommand(c.notificationsCmd())
	root.AddCommand(c.prefsCmd())
	root.AddCommand(c.statsCmd())
	return root
}

func (c *cli) addPersistentFlags(root *cobra.Command) {
	def := config.Default()
	flags := root.PersistentFlags()
	flags.String("db-path", def.DBPath, "sqlite database file")
	flags.String("log-file", def.LogFile, "log output file")
	flags.String("env", def.Env, "development or production")
	flags.String("platform", def.Platform, "platform delivery: desktop, fcm or none")
	flags.String("timezone", "", "IANA timezone for days, quiet hours and reminders")
	flags.Bool("json", false, "output JSON")
	for _, name := range []string{"db-path", "log-file", "env", "platform", "timezone", "json"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}
}

// app is the wired engine stack for one invocation.
type app struct {
	cfg        config.Config
	log        *slog.Logger
	logFile    io.Closer
	store      *storage.SQLiteStore
	dispatcher *dispatch.Dispatcher
	engine     *notify.Engine
	service    *tracker.Service
}

func newApp(ctx context.Context, cfg config.Config, toaster notify.Toaster) (*app, error) {
	f, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log := logger.Init(f, cfg.IsDevelopment(), cfg.SentryDSN)

	loc := cfg.Location()
	store, err := storage.OpenSQLite(cfg.DBPath, loc)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	dispatcher := dispatch.NewDispatcher(newPlatform(ctx, cfg, log), cfg.PlatformAutoClose, log)
	engine := notify.NewEngine(ctx, notify.Options{
		KV:         store,
		Location:   loc,
		Dispatcher: dispatcher,
		Toaster:    toaster,
		Logger:     log,
	})
	log.Info("runtrack started", "db", cfg.DBPath, "platform", dispatcher.PlatformName(), "timezone", loc.String())
	return &app{
		cfg:        cfg,
		log:        log,
		logFile:    f,
		store:      store,
		dispatcher: dispatcher,
		engine:     engine,
		service:    tracker.New(store, engine, log),
	}, nil
}

func (a *app) Close() {
	a.dispatcher.Wait()
	a.dispatcher.CloseAll()
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store failed", "error", err)
	}
	logger.Flush()
	_ = a.logFile.Close()
}

// newPlatform picks the OS-level surface. An FCM setup error degrades to no
// platform delivery.
func newPlatform(ctx context.Context, cfg config.Config, log *slog.Logger) dispatch.Platform {
	switch cfg.Platform {
	case config.PlatformNone:
		return dispatch.NoopPlatform{}
	case config.PlatformFCM:
		p, err := dispatch.NewFCMPlatform(ctx, cfg.FCMCredentialsFile, cfg.FCMDeviceTokens, log)
		if err != nil {
			log.Warn("fcm unavailable, platform notifications disabled", "error", err)
			return dispatch.NoopPlatform{}
		}
		return p
	default:
		return dispatch.NewDesktopPlatform(cfg.PlatformAutoClose)
	}
}

func (c *cli) withApp(cmd *cobra.Command, toaster notify.Toaster, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, c.cfg, toaster)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// printToaster echoes engine toasts on the command's output.
func printToaster(w io.Writer) notify.Toaster {
	return notify.ToasterFunc(func(message string, severity notify.Severity) {
		fmt.Fprintf(w, "[%s] %s\n", severity, message)
	})
}

func (c *cli) runTUI(cmd *cobra.Command, _ []string) error {
	toasts := update.NewToastQueue(c.cfg.SchedulerBuffer)
	return c.withApp(cmd, toasts, func(ctx context.Context, a *app) error {
		sched := scheduler.NewEngine(a.cfg.SchedulerBuffer)
		sched.Start()
		defer sched.Stop()

		m := update.NewModel(ctx, update.Options{
			Service:       a.service,
			Scheduler:     sched,
			Toasts:        toasts,
			ToastDuration: a.cfg.ToastDuration,
			CheckInterval: a.cfg.CheckInterval,
		})
		program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			a.log.Error("tui exited with error", "error", err)
			return err
		}
		return nil
	})
}

func (c *cli) wantJSON() bool {
	return c.v.GetBool("json")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
