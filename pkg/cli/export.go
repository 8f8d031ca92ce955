package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peekapeak/peekctl/internal/config"
	"github.com/peekapeak/peekctl/internal/export"
	"github.com/peekapeak/peekctl/internal/journal"
	"github.com/peekapeak/peekctl/internal/logger"
	"github.com/peekapeak/peekctl/internal/progress"
	"github.com/peekapeak/peekctl/internal/worker"
	"github.com/peekapeak/peekctl/pkg/s3client"
)

func newExportCommand(a *app) *cobra.Command {
	var flags config.ExportConfig

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Archive your summit photos to S3-compatible storage",
		Long: `Downloads every photo of the logged-in user from the backend and
uploads it to an S3-compatible bucket, preserving capture metadata as
object metadata. Interrupted exports resume from a local journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := mergeExportFlags(cmd, a.cfg.Export, flags)

			if cfg.Endpoint == "" || cfg.Bucket == "" {
				return fmt.Errorf("an S3 endpoint and bucket are required (flags or config file)")
			}

			user, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			storage, err := s3client.New(ctx, s3client.Config{
				Endpoint:  cfg.Endpoint,
				Region:    cfg.Region,
				Bucket:    cfg.Bucket,
				AccessKey: cfg.AccessKey,
				SecretKey: cfg.SecretKey,
				UseSSL:    cfg.UseSSL,
				Prefix:    cfg.Prefix,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize S3 client: %w", err)
			}

			jnl := journal.New(cfg.JournalPath)
			if cfg.Resume {
				if err := jnl.Load(); err != nil {
					logger.Warn("Could not load export journal: %v", err)
				}
			}

			pool := worker.NewPool(cfg.Concurrency)
			reporter := progress.New()

			exporter := export.New(ctx, a.client, storage, jnl, pool, reporter, cfg)
			if err := exporter.Run(user.Username); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Endpoint, "endpoint", "", "S3 endpoint URL")
	cmd.Flags().StringVar(&flags.Region, "region", "", "S3 region")
	cmd.Flags().StringVar(&flags.Bucket, "bucket", "", "S3 bucket name")
	cmd.Flags().StringVar(&flags.AccessKey, "access-key", "", "S3 access key")
	cmd.Flags().StringVar(&flags.SecretKey, "secret-key", "", "S3 secret key")
	cmd.Flags().BoolVar(&flags.UseSSL, "use-ssl", true, "Use SSL for the S3 connection")
	cmd.Flags().StringVar(&flags.Prefix, "prefix", "", "Prefix for S3 object keys")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 4, "Number of concurrent uploads")
	cmd.Flags().BoolVar(&flags.Resume, "resume", true, "Resume a previous export if interrupted")
	cmd.Flags().StringVar(&flags.JournalPath, "journal", "", "Path to the journal file for resumable exports")
	cmd.Flags().BoolVar(&flags.SkipExisting, "skip-existing", true, "Skip photos already in the bucket")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Simulate the export without uploading")

	return cmd
}

// mergeExportFlags layers explicitly set flags over the file/env config
func mergeExportFlags(cmd *cobra.Command, base, flags config.ExportConfig) config.ExportConfig {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("endpoint") {
		base.Endpoint = flags.Endpoint
	}
	if set("region") {
		base.Region = flags.Region
	}
	if set("bucket") {
		base.Bucket = flags.Bucket
	}
	if set("access-key") {
		base.AccessKey = flags.AccessKey
	}
	if set("secret-key") {
		base.SecretKey = flags.SecretKey
	}
	if set("use-ssl") {
		base.UseSSL = flags.UseSSL
	}
	if set("prefix") {
		base.Prefix = flags.Prefix
	}
	if set("concurrency") {
		base.Concurrency = flags.Concurrency
	}
	if set("resume") {
		base.Resume = flags.Resume
	}
	if set("journal") {
		base.JournalPath = flags.JournalPath
	}
	if set("skip-existing") {
		base.SkipExisting = flags.SkipExisting
	}
	if set("dry-run") {
		base.DryRun = flags.DryRun
	}
	return base
}
