package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/leasecraft/internal/state"
	"github.com/user/leasecraft/internal/types"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionClearCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage conversation sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)
		turns := state.NewTurnLogStore(cfg.DataDir)

		ctx := context.Background()
		list, err := sessions.List(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCONTRACT\tTURNS\tUPDATED")
		for _, s := range list {
			count, err := turns.Count(ctx, s.SessionID)
			if err != nil {
				count = 0
			}
			contract := "-"
			if s.HasContract() {
				contract = fmt.Sprintf("%d chars", len(s.Contract))
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				s.SessionID,
				contract,
				count,
				s.UpdatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's contract and recent turns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)
		turns := state.NewTurnLogStore(cfg.DataDir)

		ctx := context.Background()
		id := types.SessionID(args[0])

		rec, err := sessions.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("session not found: %s", id)
		}

		fmt.Fprintf(os.Stdout, "Session: %s\nTurns:   %d\nCreated: %s\nUpdated: %s\n",
			rec.SessionID,
			rec.Turns,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		)

		if rec.HasContract() {
			fmt.Fprintf(os.Stdout, "\n--- Contract (%d chars) ---\n%s\n", len(rec.Contract), rec.Contract)
		} else {
			fmt.Fprintln(os.Stdout, "\nNo contract stored.")
		}

		recent, err := turns.Tail(ctx, id, 10)
		if err != nil {
			return fmt.Errorf("read turn log: %w", err)
		}
		if len(recent) > 0 {
			fmt.Fprintln(os.Stdout, "\n--- Recent turns ---")
			for _, t := range recent {
				fmt.Fprintf(os.Stdout, "[%d] %s intent=%s action=%s\n  > %s\n",
					t.Turn, t.At.Format("2006-01-02 15:04:05"), t.Intent, t.Action, t.UserMessage)
			}
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id|all>",
	Short: "Clear a session or all sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)
		ctx := context.Background()

		if args[0] == "all" {
			list, err := sessions.List(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			for _, s := range list {
				if err := sessions.Delete(ctx, s.SessionID); err != nil {
					return fmt.Errorf("delete session %s: %w", s.SessionID, err)
				}
			}
			fmt.Println("All sessions cleared.")
			return nil
		}

		id := types.SessionID(args[0])
		if _, err := sessions.Get(ctx, id); err != nil {
			return fmt.Errorf("session not found: %s", args[0])
		}
		if err := sessions.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Session %s cleared.\n", args[0])
		return nil
	},
}
