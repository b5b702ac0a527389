package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"review-response-metrics/internal/config"
	"review-response-metrics/internal/presenter"
	"review-response-metrics/internal/service"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewstats",
		Short:         "Code review responsiveness reports",
		Long:          "Measures how quickly reviewers answer review requests and posts weekly and daily reports to Slack.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (or set REVIEWSTATS_CONFIG)")

	root.AddCommand(newWeeklyCmd(a), newDailyCmd(a), newSyncCmd(a))
	return root
}

type reportFlags struct {
	dryRun     bool
	source     string
	limitRepos int
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the report to stdout instead of posting to Slack")
	cmd.Flags().StringVar(&f.source, "source", sourceGitHub, "Snapshot source: github or db")
	cmd.Flags().IntVar(&f.limitRepos, "limit-repos", 0, "Process at most N repositories (0 means all)")
}

func newWeeklyCmd(a *app) *cobra.Command {
	var flags reportFlags
	var days int

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Per-reviewer response statistics for the last N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.prepare(flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Report.Days
			}

			stats, closeSource, err := a.statsService(ctx, cfg, flags)
			if err != nil {
				return err
			}
			defer closeSource()

			report, err := stats.WeeklyReport(ctx, days)
			if err != nil {
				return err
			}

			if flags.dryRun {
				_, err := fmt.Fprintln(a.out, presenter.FormatWeekly(report))
				return err
			}
			return a.newPoster(cfg).PostWeekly(ctx, report)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days back to analyze")
	return cmd
}

func newDailyCmd(a *app) *cobra.Command {
	var flags reportFlags
	var date string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Review responses submitted during one calendar day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.prepare(flags)
			if err != nil {
				return err
			}

			stats, closeSource, err := a.statsService(ctx, cfg, flags)
			if err != nil {
				return err
			}
			defer closeSource()

			report, err := stats.DailyReport(ctx, date)
			if err != nil {
				return err
			}

			if flags.dryRun {
				for _, chunk := range presenter.SplitMessage(presenter.FormatDaily(report), presenter.DefaultMessageLimit) {
					if _, err := fmt.Fprintln(a.out, chunk); err != nil {
						return err
					}
				}
				return nil
			}
			return a.newPoster(cfg).PostDaily(ctx, report)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Day to report in YYYY-MM-DD (default: yesterday in the configured timezone)")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var days, limitRepos int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch a snapshot from GitHub and store it in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(a.configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Report.Days
			}

			source, closeSource, err := a.openSource(ctx, cfg, sourceGitHub, limitRepos)
			if err != nil {
				return err
			}
			defer closeSource()
			st, closeDB, err := a.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := service.NewSyncService(source, st.prs, st.timelines, st.comments).Sync(ctx, days)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "synced %d repositories, %d pull requests, %d events, %d comments in %s\n",
				result.Repositories, result.PullRequests, result.Events, result.Comments, result.Duration)
			return err
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days back to fetch")
	cmd.Flags().IntVar(&limitRepos, "limit-repos", 0, "Process at most N repositories (0 means all)")
	return cmd
}

// загружает конфигурацию и проверяет настройки, нужные для выбранного режима
func (a *app) prepare(flags reportFlags) (*config.Config, error) {
	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	if !flags.dryRun {
		if err := cfg.RequireSlack(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (a *app) statsService(ctx context.Context, cfg *config.Config, flags reportFlags) (*service.StatsService, func(), error) {
	source, closeSource, err := a.openSource(ctx, cfg, flags.source, flags.limitRepos)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using snapshot source", "source", flags.source, "org", cfg.GitHub.Org)
	return service.NewStatsService(source, cfg.Location(), cfg.Daily.LegacyRequestMatch), closeSource, nil
}
