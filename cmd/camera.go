package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/camera"
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Camera utilities",
}

var cameraCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Open the configured camera and grab one frame",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		wait, _ := cmd.Flags().GetDuration("wait")

		res := camera.NewResource(cameraDevice(cfg.Camera))
		fmt.Println("Device:", res.DeviceName())

		ctx, cancel := context.WithTimeout(cmd.Context(), wait+5*time.Second)
		defer cancel()

		h, err := res.Acquire(ctx)
		if err != nil {
			return err
		}
		defer res.Release(h)

		deadline := time.Now().Add(wait)
		for {
			if f := res.CaptureFrame(h); f != nil {
				fmt.Printf("Captured %d bytes (%s).\n", len(f.Data), f.MIMEType)
				return nil
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: no frame within %s", camera.ErrDeviceUnavailable, wait)
			}
			time.Sleep(200 * time.Millisecond)
		}
	},
}

func init() {
	cameraCheckCmd.Flags().Duration("wait", 5*time.Second, "How long to wait for the first frame")
	cameraCmd.AddCommand(cameraCheckCmd)
}
