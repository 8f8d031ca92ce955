// pkg/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/config"
	"github.com/peekapeak/peekctl/internal/logger"
	"github.com/peekapeak/peekctl/internal/session"
)

// app carries the wired-up client state shared by all commands
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Session
}

// requireUser resolves the authenticated user or fails with a hint to
// log in first
func (a *app) requireUser(ctx context.Context) (api.User, error) {
	if err := a.session.Init(ctx); err != nil {
		return api.User{}, err
	}
	user, ok := a.session.CurrentUser()
	if !ok {
		return api.User{}, fmt.Errorf("not logged in; run 'peekctl login' first")
	}
	return user, nil
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	var (
		configFile string
		logLevel   string
		apiURL     string
	)

	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "peekctl",
		Short: "Command-line client for the Peek-a-Peak summit diary",
		Long: `peekctl talks to a Peek-a-Peak backend: upload summit photos with
EXIF-derived metadata and peak matching, browse your diary, and archive
your photos to S3-compatible storage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if cfg.API.CookiePath == "" {
				home, err := os.UserHomeDir()
				if err == nil {
					cfg.API.CookiePath = filepath.Join(home, ".peekctl-session.json")
				}
			}

			logger.SetLevel(cfg.LogLevel)

			client, err := api.New(cfg.API)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.client = client
			a.session = session.New(client)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.session != nil {
				if err := a.session.Close(); err != nil {
					logger.Warn("Could not persist session: %v", err)
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the Peek-a-Peak API")

	rootCmd.AddCommand(newLoginCommand(a))
	rootCmd.AddCommand(newRegisterCommand(a))
	rootCmd.AddCommand(newLogoutCommand(a))
	rootCmd.AddCommand(newWhoamiCommand(a))
	rootCmd.AddCommand(newUploadCommand(a))
	rootCmd.AddCommand(newPhotosCommand(a))
	rootCmd.AddCommand(newPeaksCommand(a))
	rootCmd.AddCommand(newExportCommand(a))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}
