package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/store"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Inspect evidence frames captured during sessions",
}

var evidenceListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List evidence frames for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		recs, err := s.EvidenceRepo().ListBySession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No evidence frames found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-4s  %-10s  %8s  %s\n", "ID", "Captured", "Step", "Type", "Bytes", "Key")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range recs {
			fmt.Printf("%-5d  %-19s  %-4d  %-10s  %8d  %s\n",
				r.ID, r.CapturedAt.Local().Format("2006-01-02 15:04:05"), r.StepIndex,
				r.MIMEType, r.SizeBytes, r.ObjectKey)
		}
		return nil
	},
}

var evidenceExportCmd = &cobra.Command{
	Use:   "export <session-id> <dir>",
	Short: "Copy a session's evidence frames into a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, cfg, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		dataDir, err := store.DataDir()
		if err != nil {
			return err
		}
		blobs, err := openBlobs(ctx, cfg.Blob, dataDir)
		if err != nil {
			return err
		}

		recs, err := s.EvidenceRepo().ListBySession(ctx, args[0])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(args[1], 0o755); err != nil {
			return fmt.Errorf("create %s: %w", args[1], err)
		}

		for _, r := range recs {
			data, err := blobs.Get(ctx, r.ObjectKey)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", r.ObjectKey, err)
			}
			dst := filepath.Join(args[1], path.Base(r.ObjectKey))
			if err := os.WriteFile(dst, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
		}
		fmt.Printf("Exported %d frames from %s to %s.\n", len(recs), blobs.Location(), args[1])
		return nil
	},
}

func init() {
	evidenceCmd.AddCommand(evidenceListCmd)
	evidenceCmd.AddCommand(evidenceExportCmd)
}
