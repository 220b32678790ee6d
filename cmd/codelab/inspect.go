package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"codelab/internal/store"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect archived session telemetry",
	}
	cmd.AddCommand(inspectEventsCmd())
	cmd.AddCommand(inspectRunsCmd())
	cmd.AddCommand(inspectSummaryCmd())
	return cmd
}

func inspectEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <session-id>",
		Short: "List the telemetry events of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(func(ctx context.Context, db store.Store) error {
				events, err := db.ListEvents(ctx, args[0])
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(os.Stdout, "No events found.")
					return nil
				}
				for _, e := range events {
					fmt.Fprintf(os.Stdout, "%s  %-20s %v\n",
						e.RecordedAt.Format(time.RFC3339), e.Name, e.Meta)
				}
				return nil
			})
		},
	}
}

func inspectRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs <lesson-id>",
		Short: "List archived verification runs for a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid lesson id: %s", args[0])
			}
			return withArchive(func(ctx context.Context, db store.Store) error {
				runs, err := db.ListRuns(ctx, id)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(os.Stdout, "No runs found.")
					return nil
				}
				for _, r := range runs {
					verdict := "FAIL"
					if r.Correct {
						verdict = "PASS"
					}
					fmt.Fprintf(os.Stdout, "%s  %s  score %3.0f  session %s\n",
						r.CreatedAt.Format(time.RFC3339), verdict, r.Score, r.SessionID)
				}
				return nil
			})
		},
	}
}

func inspectSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <session-id>",
		Short: "Summarize a session's interaction counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(func(ctx context.Context, db store.Store) error {
				s, err := db.SessionSummary(ctx, args[0])
				if err != nil {
					return err
				}
				if s.Events == 0 {
					fmt.Fprintln(os.Stdout, "No events found.")
					return nil
				}
				fmt.Fprintf(os.Stdout, "Session:      %s\n", s.SessionID)
				fmt.Fprintf(os.Stdout, "Lesson:       %d\n", s.LessonID)
				fmt.Fprintf(os.Stdout, "Events:       %d\n", s.Events)
				fmt.Fprintf(os.Stdout, "Decisions:    %d\n", s.Decisions)
				fmt.Fprintf(os.Stdout, "Consequences: %d\n", s.Consequences)
				fmt.Fprintf(os.Stdout, "Hints used:   %d\n", s.HintsUsed)
				fmt.Fprintf(os.Stdout, "Resets:       %d\n", s.Resets)
				fmt.Fprintf(os.Stdout, "Duration:     %s\n", s.LastEvent.Sub(s.FirstEvent).Round(time.Second))
				return nil
			})
		},
	}
}

func withArchive(fn func(ctx context.Context, db store.Store) error) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Driver == "" {
		return fmt.Errorf("no store configured; set store.driver in %s", configFile)
	}

	db, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	return fn(ctx, db)
}
