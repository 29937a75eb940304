package vantixcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vantix/vantix/internal/config"
	"github.com/vantix/vantix/internal/envutil"
	"github.com/vantix/vantix/internal/logging"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/webapp"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	return root.Execute()
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: vantix setup [--api-base-url URL] [--addr :3000] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       vantix run [--env-file .env]")
	fmt.Fprintln(w, "       vantix check [--env-file .env]")
}

func usageError() error {
	return fmt.Errorf("%w: vantix <setup|run|check> [...]", ErrUsage)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "vantix",
		Short:         "Vantix sales-force web front-end",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to .env file")

	root.AddCommand(
		newSetupCmd(&envFile),
		newRunCmd(&envFile),
		newCheckCmd(&envFile),
	)
	return root
}

func newSetupCmd(envFile *string) *cobra.Command {
	var (
		apiBaseURL string
		addr       string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a .env file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := config.Defaults()
			if apiBaseURL != "" {
				values["API_BASE_URL"] = apiBaseURL
			}
			if addr != "" {
				values["CLIENT_ADDR"] = addr
			}
			if err := ensureParentDirs(*envFile); err != nil {
				return err
			}
			if err := envutil.WriteDotEnv(*envFile, values, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", *envFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", "", "backend base url, for example http://127.0.0.1:8000/api/v1")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the front-end")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing env file")
	return cmd
}

func newRunCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve the front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.SessionSnapshotPath != "" {
				if err := ensureParentDirs(cfg.SessionSnapshotPath); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := webapp.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("front-end stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func newCheckCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Confirm the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
			defer cancel()

			client := vantixapi.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout})
			start := time.Now()
			status, err := client.Ping(ctx)
			if err != nil {
				return fmt.Errorf("backend %s unreachable: %w", cfg.APIBaseURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %s up (status %d, %s)\n",
				cfg.APIBaseURL, status, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func ensureParentDirs(paths ...string) error {
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
