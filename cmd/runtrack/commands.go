package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/runtrack/internal/commands"
	"github.com/sandeepkv93/runtrack/internal/tracker"
	"github.com/sandeepkv93/runtrack/internal/update"
	"github.com/sandeepkv93/runtrack/internal/views"
)

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run milestone, deadline, streak and summary checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				accepted, err := a.service.Check(ctx)
				if err != nil {
					return err
				}
				if c.wantJSON() {
					return printJSON(out, accepted)
				}
				fmt.Fprintf(out, "check complete: %d new notification(s)\n", len(accepted))
				return nil
			})
		},
	}
}

func (c *cli) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "remind morning|evening",
		Short:     "Emit the morning check-in or evening missed-run reminder",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"morning", "evening"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var evening bool
			switch args[0] {
			case "morning":
			case "evening":
				evening = true
			default:
				return fmt.Errorf("unknown reminder %q, want morning or evening", args[0])
			}
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				_, ok, err := a.service.Reminder(ctx, evening)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "no reminder sent")
				}
				return nil
			})
		},
	}
}

func (c *cli) goalCmd() *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Manage goals"}
	goal.AddCommand(&cobra.Command{
		Use:   "add <type> <target> <unit|-> <days> <title...>",
		Short: "Create a goal starting today",
		Args:  cobra.MinimumNArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.Parse("goal " + strings.Join(args, " "))
			if err != nil {
				return err
			}
			in := parsed.Goal
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				g, err := a.service.AddGoal(ctx, tracker.GoalInput{
					Title:  in.Title,
					Type:   in.Type,
					Target: in.Target,
					Unit:   in.Unit,
					Days:   in.Days,
				})
				if err != nil {
					return err
				}
				if c.wantJSON() {
					return printJSON(out, g)
				}
				fmt.Fprintf(out, "added goal %s: %s (due %s)\n", g.ID, g.Title, g.EndDate.Format("2006-01-02"))
				return nil
			})
		},
	})
	goal.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List goals with progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				ov, err := a.service.Overview(ctx)
				if err != nil {
					return err
				}
				if c.wantJSON() {
					return printJSON(out, ov.Goals)
				}
				writeGoalsTable(out, ov)
				return nil
			})
		},
	})
	goal.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal and forget its milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				if err := a.service.DeleteGoal(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted goal %s\n", args[0])
				return nil
			})
		},
	})
	return goal
}

func (c *cli) runCmd() *cobra.Command {
	run := &cobra.Command{Use: "run", Short: "Log and list runs"}
	run.AddCommand(&cobra.Command{
		Use:   "log <km> [minutes] [notes...]",
		Short: "Log a run today and check goals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.Parse("log " + strings.Join(args, " "))
			if err != nil {
				return err
			}
			in := parsed.Log
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				r, accepted, err := a.service.LogRun(ctx, in.DistanceKm, in.Duration, in.Notes)
				if err != nil {
					return err
				}
				if c.wantJSON() {
					return printJSON(out, r)
				}
				fmt.Fprintf(out, "logged %.2f km (%d new notification(s))\n", r.DistanceKm, len(accepted))
				return nil
			})
		},
	})
	run.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List logged runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				runs, err := a.service.Runs(ctx)
				if err != nil {
					return err
				}
				if c.wantJSON() {
					return printJSON(out, runs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"ID", "Date", "Km", "Time", "Notes"})
				for _, r := range runs {
					dur := "-"
					if r.Duration > 0 {
						dur = r.Duration.Round(time.Second).String()
					}
					tw.AppendRow(table.Row{r.ID, r.Date.Format("2006-01-02"), fmt.Sprintf("%.2f", r.DistanceKm), dur, r.Notes})
				}
				tw.Render()
				return nil
			})
		},
	})
	return run
}

func (c *cli) notificationsCmd() *cobra.Command {
	n := &cobra.Command{Use: "notifications", Aliases: []string{"n"}, Short: "Inspect the notification queue"}
	n.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List visible notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				items := a.engine.Notifications()
				if c.wantJSON() {
					return printJSON(out, items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"ID", "Time", "Type", "Priority", "Title", "Read"})
				for _, item := range items {
					tw.AppendRow(table.Row{item.ID, item.Timestamp.Format("2006-01-02 15:04"), item.Type, item.Priority, item.Icon + " " + item.Title, onOff(item.Read)})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "unread", a.engine.UnreadCount()})
				tw.Render()
				return nil
			})
		},
	})
	n.AddCommand(c.notificationMutation("read <id>", "Mark a notification read", func(ctx context.Context, a *app, id string) bool {
		return a.engine.MarkAsRead(ctx, id)
	}))
	n.AddCommand(c.notificationMutation("dismiss <id>", "Dismiss a notification", func(ctx context.Context, a *app, id string) bool {
		return a.engine.DismissNotification(ctx, id)
	}))
	n.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				fmt.Fprintf(out, "marked %d notification(s) read\n", a.engine.MarkAllAsRead(ctx))
				return nil
			})
		},
	})
	n.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				a.engine.ClearAllNotifications(ctx)
				fmt.Fprintln(out, "notifications cleared")
				return nil
			})
		},
	})
	return n
}

func (c *cli) notificationMutation(use, short string, fn func(context.Context, *app, string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				if !fn(ctx, a, args[0]) {
					return fmt.Errorf("notification %q not found", args[0])
				}
				fmt.Fprintln(out, "ok")
				return nil
			})
		},
	}
}

func (c *cli) prefsCmd() *cobra.Command {
	prefs := &cobra.Command{Use: "prefs", Short: "Show, export and import notification preferences"}
	export := func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
			if c.wantJSON() {
				return printJSON(out, a.engine.Preferences(ctx))
			}
			data, err := a.engine.PreferenceStore().ExportYAML(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return os.WriteFile(args[0], data, 0o644)
			}
			_, err = out.Write(data)
			return err
		})
	}
	prefs.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print preferences as YAML",
		Args:  cobra.NoArgs,
		RunE:  export,
	})
	prefs.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write preferences as YAML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  export,
	})
	prefs.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Merge preferences from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				p, err := a.engine.PreferenceStore().ImportYAML(ctx, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, views.RenderPreferences(update.PreferencesData(p, a.engine.PlatformName())))
				return nil
			})
		},
	})
	return prefs
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show goal statistics and suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withApp(cmd, printToaster(out), func(ctx context.Context, a *app) error {
				ov, err := a.service.Overview(ctx)
				if err != nil {
					return err
				}
				data := update.StatsData(ov)
				if c.wantJSON() {
					return printJSON(out, data)
				}
				fmt.Fprint(out, views.RenderMarkdown(views.StatsMarkdown(data)))
				return nil
			})
		},
	}
}

func writeGoalsTable(w io.Writer, ov tracker.Overview) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Goal", "Type", "Progress", "Target", "Days left", "Status"})
	for _, g := range ov.Goals {
		p := ov.Progress[g.ID]
		status := "active"
		switch {
		case g.IsCompleted:
			status = "completed"
		case !g.IsActive:
			status = "inactive"
		}
		tw.AppendRow(table.Row{
			g.ID,
			g.Icon + " " + g.Title,
			g.Type,
			fmt.Sprintf("%.0f%%", p.DisplayPercentage()),
			fmt.Sprintf("%.1f/%.1f %s", p.CurrentValue, g.TargetValue, g.TargetUnit),
			p.DaysRemaining,
			status,
		})
	}
	tw.Render()
}

func onOff(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
