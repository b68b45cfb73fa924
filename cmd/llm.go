package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/llm"
	"github.com/abhisek/quizwatch/internal/store"
)

const tsLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		session, _ := cmd.Flags().GetString("session")

		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, SessionID: session}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeLLMEvents(cmd.OutOrStdout(), events, purpose)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the stored request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		writeLLMUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("\u2500", n))
}

// writeLLMEvents prints one row per event, skipping other purposes when
// purpose is set.
func writeLLMEvents(w io.Writer, events []store.LLMEvent, purpose string) {
	var shown []store.LLMEvent
	for _, e := range events {
		if purpose == "" || e.Purpose == purpose {
			shown = append(shown, e)
		}
	}
	if len(shown) == 0 {
		fmt.Fprintln(w, "No LLM events found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTimestamp\tPurpose\tSession\tModel\tIn\tOut\tMs\tOK")
	for _, e := range shown {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		session := truncate(e.SessionID, 8)
		if session == "" {
			session = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Timestamp.Local().Format(tsLayout), e.Purpose, session,
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
	}
	tw.Flush()
}

func writeLLMEvent(w io.Writer, e *store.LLMEvent) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	field := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }

	field("ID", strconv.Itoa(e.ID))
	field("Time", e.Timestamp.Local().Format(tsLayout))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	if e.SessionID != "" {
		field("Session", e.SessionID)
	}
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", strconv.FormatBool(e.Success))
	if e.ErrorMessage != "" {
		field("Error", e.ErrorMessage)
	}
	tw.Flush()

	for _, sec := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		rule(w, 60)
		fmt.Fprintln(w, sec.title)
		rule(w, 60)
		if sec.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, sec.body)
	}
}

func writeLLMUsage(w io.Writer, byPurpose []store.LLMPurposeUsage, byModel []store.LLMModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}

	fmt.Fprintln(w, "Usage by purpose")
	rule(w, 72)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Purpose\tCalls\tInput\tOutput\tAvg ms\t")
	var calls, in, out int
	for _, u := range byPurpose {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t\t\n", calls, in, out)
	tw.Flush()

	if len(byModel) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated cost (USD)")
	rule(w, 72)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Model\tCalls\tInput\tOutput\tCost\t")
	var (
		total   float64
		unknown []string
	)
	for _, u := range byModel {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unknown = append(unknown, u.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	tw.Flush()

	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (question-gen, explanation, attention)")
	llmListCmd.Flags().StringP("session", "s", "", "Only show calls made during this session ID")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
