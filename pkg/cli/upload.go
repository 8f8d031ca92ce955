package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/peekapeak/peekctl/internal/peaksearch"
	"github.com/peekapeak/peekctl/internal/upload"
)

func newUploadCommand(a *app) *cobra.Command {
	var (
		capturedAt string
		lat, lng   float64
		alt        float64
		peakName   string
		noLocation bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload a summit photo",
		Long: `Uploads a photo through the same workflow as the web client: EXIF
metadata is extracted and prefilled, flags override the extracted
values, an optional peak is matched near the photo's location, and the
finalized draft is submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			searcher := peaksearch.New(ctx, a.client, a.cfg.Search)
			wizard := upload.NewWizard(a.client, searcher)
			defer wizard.Close()

			draft := wizard.AttachPhoto(filepath.Base(args[0]), data)
			reportExtracted(draft)

			// Flag overrides beat extracted values
			if capturedAt != "" {
				t, err := time.Parse(time.RFC3339, capturedAt)
				if err != nil {
					return fmt.Errorf("invalid --captured-at (want RFC 3339): %w", err)
				}
				draft.SetCapturedAt(t)
			}
			if noLocation {
				if err := wizard.ClearLocation(); err != nil {
					return err
				}
			} else if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return errors.New("--lat and --lng must be given together")
				}
				var altPtr *float64
				if cmd.Flags().Changed("alt") {
					altPtr = &alt
				}
				if err := wizard.SetLocation(lat, lng, altPtr); err != nil {
					return err
				}
			}

			if peakName != "" {
				if err := attachPeak(cmd, wizard, searcher, peakName); err != nil {
					return err
				}
			}

			if err := wizard.ConfirmReview(); err != nil {
				if errors.Is(err, upload.ErrCapturedAtRequired) {
					return errors.New("captured date and time is required; pass --captured-at")
				}
				return err
			}

			if dryRun {
				fmt.Println("Dry run: draft is valid, skipping submission")
				return nil
			}

			photo, err := wizard.Submit(ctx)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Printf("Uploaded photo #%d (%s)\n", photo.ID, photo.FileName)
			if photo.Peak != nil {
				fmt.Printf("Summit: %s (%.0f m)\n", photo.Peak.Name, photo.Peak.Elevation)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&capturedAt, "captured-at", "", "Capture time (RFC 3339), overrides EXIF")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude, overrides EXIF")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude, overrides EXIF")
	cmd.Flags().Float64Var(&alt, "alt", 0, "Altitude in meters")
	cmd.Flags().StringVar(&peakName, "peak", "", "Attach the nearby peak best matching this name")
	cmd.Flags().BoolVar(&noLocation, "no-location", false, "Drop any extracted location")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the draft without uploading")

	return cmd
}

// attachPeak resolves a peak by name near the draft's location and
// selects it on the wizard
func attachPeak(cmd *cobra.Command, wizard *upload.Wizard, searcher *peaksearch.Searcher, name string) error {
	candidates, err := searcher.SearchNow(cmd.Context(), name)
	if err != nil {
		if errors.Is(err, peaksearch.ErrNoLocation) {
			return errors.New("--peak needs a location; the photo has no GPS data and no --lat/--lng was given")
		}
		return fmt.Errorf("peak search failed: %w", err)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no peak found matching %q near the photo's location", name)
	}

	chosen := candidates[0]
	for _, c := range candidates {
		if strings.EqualFold(c.Peak.Name, name) {
			chosen = c
			break
		}
	}

	if err := wizard.SelectPeak(chosen.Peak); err != nil {
		return err
	}
	fmt.Printf("Matched peak %s at %.0f m away\n", chosen.Peak.Name, chosen.Distance)
	return nil
}

// reportExtracted prints what EXIF prefilled, mirroring the review step
func reportExtracted(draft *upload.Draft) {
	if t, ok := draft.CapturedAt(); ok {
		fmt.Printf("Extracted capture time: %s\n", t.Format(time.RFC3339))
	}
	if lat, lng, ok := draft.Location(); ok {
		if alt, ok := draft.Altitude(); ok {
			fmt.Printf("Extracted location: %.5f, %.5f (%.0f m)\n", lat, lng, alt)
		} else {
			fmt.Printf("Extracted location: %.5f, %.5f\n", lat, lng)
		}
	}
}
