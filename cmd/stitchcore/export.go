// Export commands render tech packs through the async export worker and
// wait for the artifacts.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stitchcore/internal/adapters/exports"
	"stitchcore/internal/blob"
)

var (
	exportFormats []string
	exportTimeout time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export garment tech packs",
}

var exportTechpackCmd = &cobra.Command{
	Use:   "techpack <garment-id>",
	Short: "Render a garment tech pack to the configured blob store",
	Long: `Techpack renders the garment aggregate (composition, attributes,
supplier engagements) to JSON and CSV artifacts in the blob store selected
by STITCHCORE_BLOB_DRIVER (fs by default).

Example:
  stitchcore export techpack 42
  stitchcore export techpack 42 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runExportTechpack,
}

func runExportTechpack(cmd *cobra.Command, args []string) error {
	garmentID, err := parseID(args[0], "garment id")
	if err != nil {
		return err
	}
	store, err := blob.Open(cmd.Context())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	formats := make([]exports.Format, 0, len(exportFormats))
	for _, f := range exportFormats {
		formats = append(formats, exports.Format(f))
	}

	worker := exports.NewWorker(svc, store, nil)
	worker.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = worker.Stop(stopCtx)
	}()

	job, err := worker.Enqueue(cmd.Context(), exports.Input{GarmentID: garmentID, Formats: formats})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(exportTimeout)
	for time.Now().Before(deadline) {
		current, ok := worker.GetJob(job.ID)
		if !ok {
			return fmt.Errorf("export job %s vanished", job.ID)
		}
		switch current.Status {
		case exports.StatusSucceeded:
			human := fmt.Sprintf("Exported tech pack for garment %d:", garmentID)
			for _, a := range current.Artifacts {
				human += fmt.Sprintf("\n  %s (%s, %d bytes)", a.Key, a.Format, a.SizeBytes)
			}
			return emit(current, human)
		case exports.StatusFailed:
			return fmt.Errorf("export failed: %s", current.Error)
		}
		time.Sleep(25 * time.Millisecond)
	}
	return fmt.Errorf("export timed out after %s", exportTimeout)
}

func init() {
	exportTechpackCmd.Flags().StringSliceVar(&exportFormats, "format", nil, "rendition format json|csv (repeatable, default both)")
	exportTechpackCmd.Flags().DurationVar(&exportTimeout, "timeout", 30*time.Second, "how long to wait for the export")

	exportCmd.AddCommand(exportTechpackCmd)
}
