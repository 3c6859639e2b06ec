package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Thaodan/elfeed-autotag/internal/api"
	"github.com/Thaodan/elfeed-autotag/internal/config"
	"github.com/Thaodan/elfeed-autotag/internal/runner"
	"github.com/Thaodan/elfeed-autotag/internal/rules"
	"github.com/Thaodan/elfeed-autotag/internal/store"
)

var (
	cfgPath string
	files   []string
	logger  = log.NewWithOptions(os.Stderr, log.Options{Prefix: "autotag"})
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autotag",
		Short: "Compile outline documents into feed tagging rules",
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringSliceVarP(&files, "file", "f", nil, "outline document (overrides config)")

	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(feedsCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		cfg.Files = files
	}
	return cfg, nil
}

func getStore(cfg *config.Config) (*store.Store, error) {
	dir := filepath.Dir(cfg.Database)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.Database)
}

func compileTable(cfg *config.Config) (*rules.Table, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("no outline documents configured (use --file or the config file)")
	}
	opts := rules.Options{MarkerTag: cfg.MarkerTag, IgnoreTag: cfg.IgnoreTag}
	return rules.Compile(cfg.Files, opts)
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile outline documents and report rule counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Files = args
			}

			table, err := compileTable(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Compiled %d rules (%d keyword, %d subscription) from %d document(s)\n",
				table.RuleCount(), len(table.KeywordRules), len(table.SubscriptionRules), len(cfg.Files))
			return nil
		},
	}
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [files...]",
		Short: "Compile and list the resulting rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Files = args
			}

			table, err := compileTable(cfg)
			if err != nil {
				return err
			}

			for _, r := range table.KeywordRules {
				fmt.Printf("keyword      %-18s %q -> %s\n", r.Field, r.Match, strings.Join(r.AddTags, " "))
			}
			for _, r := range table.SubscriptionRules {
				line := fmt.Sprintf("subscription %s -> %s", r.FeedURL, strings.Join(r.AddTags, " "))
				if r.Title != "" {
					line += fmt.Sprintf(" (title: %s)", r.Title)
				}
				fmt.Println(line)
			}

			fmt.Printf("\n%d rules total\n", table.RuleCount())
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch subscribed feeds and tag their entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.RefreshSchedule = schedule
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			r := runner.New(cfg, s, logger)
			return r.RunScheduled(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", `cron refresh schedule, e.g. "@every 30m"`)
	return cmd
}

func feedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "List known feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			feeds, err := s.ListFeeds()
			if err != nil {
				return err
			}

			if len(feeds) == 0 {
				fmt.Println("No feeds yet. Use 'autotag run' to fetch subscriptions.")
				return nil
			}

			for _, f := range feeds {
				if f.Title != "" {
					fmt.Printf("%s  (%s)\n", f.URL, f.Title)
				} else {
					fmt.Println(f.URL)
				}
			}
			return nil
		},
	}
}

func entriesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List recent entries with their tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.ListEntries(limit, 0)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries yet. Use 'autotag run' to fetch subscriptions.")
				return nil
			}

			for _, e := range entries {
				tags := ""
				if len(e.Tags) > 0 {
					tags = "  [" + strings.Join(e.Tags, " ") + "]"
				}
				fmt.Printf("%s  %s%s\n", e.ID[:8], truncate(e.Title, 60), tags)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.SearchEntries(args[0])
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No matching entries found.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %s\n", e.ID[:8], truncate(e.Title, 60))
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			r := runner.New(cfg, s, logger)
			if len(cfg.Files) > 0 {
				if _, err := r.Recompile(); err != nil {
					logger.Warn("initial compile failed", "err", err)
				}
			}

			server := api.New(s, r, cfg.Addr, logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
