// cmd/bat/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bat/internal/config"
	"bat/internal/diff"
	baterrors "bat/internal/errors"
	"bat/internal/logging"
	"bat/internal/repo"
	"bat/internal/watch"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what the persistent pre-run resolves for every command.
type cli struct {
	repoRoot   string
	configPath string
	logLevel   string

	config *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "bat",
		Short: "bat is a minimal content-addressed version control system",
		Long: `bat snapshots files into a content-addressed object store, records
commits as a linked history and shows line diffs between a commit and its
parent.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.repoRoot, "repo", ".", "repository root directory")
	flags.StringVar(&c.configPath, "config", "", "config file (default <repo>/.bat/config.json)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new bat repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.repoRoot
			if err := repo.Initialize(root); err != nil {
				if errors.Is(err, baterrors.ErrAlreadyInitialized) {
					fmt.Fprintln(cmd.OutOrStdout(), "bat repository already initialized in", repo.Dir(root))
					return nil
				}
				return fmt.Errorf("initializing repository: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty bat repository in", repo.Dir(root))
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <file>",
		Short: "Store a file and stage it for the next commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			hash, err := r.Add(args[0])
			if err != nil {
				return fmt.Errorf("adding file: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", args[0])
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged files as a new commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			created, err := r.Commit(args[0])
			if err != nil {
				return fmt.Errorf("creating commit: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Commit created successfully:", created.Hash)
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show commit history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			head, err := r.Head()
			if err != nil {
				return err
			}

			// Print while walking so a broken link still shows the newer history
			out := cmd.OutOrStdout()
			for entry, err := range r.Graph.Walk(head) {
				if err != nil {
					return fmt.Errorf("reading history: %w", err)
				}
				fmt.Fprintf(out, "commit: %s\n", entry.Hash)
				fmt.Fprintf(out, "Date: %s\n", entry.Timestamp)
				fmt.Fprintf(out, "Message: %s\n", entry.Message)
				fmt.Fprintln(out, "----------------------------------")
			}
			return nil
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show <commit>",
		Short: "Show what a commit changed relative to its parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			cd, err := r.Diff(args[0])
			if err != nil {
				if errors.Is(err, baterrors.ErrCommitNotFound) {
					c.logger.Debug("commit lookup failed", zap.Error(err))
					fmt.Fprintln(cmd.OutOrStdout(), "Commit not found:", args[0])
					return nil
				}
				return fmt.Errorf("showing commit: %w", err)
			}

			diff.Render(cmd.OutOrStdout(), cd)
			return nil
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-add files automatically whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			w, err := watch.New(r, args, c.logger)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			w.OnAdd = func(path, hash string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", path, hash)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d file(s), press Ctrl-C to stop\n", len(args))
			return w.Run(ctx)
		},
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check every stored object against its hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			result, err := r.Verify()
			if err != nil {
				return fmt.Errorf("verifying objects: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, f := range result.Failures {
				fmt.Fprintf(out, "%s: %v\n", f.Hash, f.Err)
			}
			fmt.Fprintf(out, "Verified %d objects, %d corrupt\n", result.Checked, len(result.Failures))

			if len(result.Failures) > 0 {
				return fmt.Errorf("%d corrupt object(s)", len(result.Failures))
			}
			return nil
		},
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(verifyCmd)

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	path, optional := c.configPath, false
	if path == "" {
		path, optional = repo.ConfigPath(c.repoRoot), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.config = cfg

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	c.logger = logger.WithRunID(uuid.New().String()).Logger
	c.logger.Debug("starting command",
		zap.String("command", cmd.Name()),
		zap.String("repo", c.repoRoot),
		zap.String("backend", cfg.Storage.Backend),
	)
	return nil
}

func (c *cli) teardown(cmd *cobra.Command, args []string) error {
	if c.logger != nil {
		// stderr does not support fsync on every platform
		_ = c.logger.Sync()
	}
	return nil
}

func (c *cli) open() (*repo.Repo, error) {
	r, err := repo.Open(c.repoRoot, c.config, c.logger)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return r, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
