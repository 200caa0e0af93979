package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/younsl/ebsmig/internal/logging"
	"github.com/younsl/ebsmig/internal/models"
	"github.com/younsl/ebsmig/internal/version"
	awsclient "github.com/younsl/ebsmig/pkg/aws"
	"github.com/younsl/ebsmig/pkg/formatter"
	"github.com/younsl/ebsmig/pkg/input"
	"github.com/younsl/ebsmig/pkg/migrate"
	"github.com/younsl/ebsmig/pkg/pricing"
	"github.com/younsl/ebsmig/pkg/report"
	"github.com/younsl/ebsmig/pkg/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg         models.RunConfig
		dryRun      string
		showVersion bool
		noProgress  bool
	)

	rootCmd := &cobra.Command{
		Use:   "ebsmig",
		Short: "CLI tool to migrate EBS volume types across AWS accounts",
		Long: `ebsmig changes the type of EBS volumes (gp2 to gp3 by default) in one or
more AWS accounts by assuming a migration role in each account.

Volumes are read either from a single account filtered by their current type
(--account-id) or from a CSV file without header (--filename) with lines of
account_id,volume_id,region,desired_vol_type.

Volumes tagged GP3_EXEMPTION_TAG=exempted are never modified. Dry-run is on by
default; pass --dryRun False to apply changes. Every processed volume is written
to ebsoutput-<timestamp>.csv.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get())
				return nil
			}

			cfg.DryRun = models.ParseDryRun(dryRun)
			cfg.ShowProgress = !noProgress
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.AccountID, "account-id", "a", "", "The 12 digit AWS Account ID")
	flags.StringVarP(&cfg.Filename, "filename", "f", "",
		"CSV file (without header) listing volumes as account_id,volume_id,region,desired_vol_type")
	flags.StringVarP(&cfg.Region, "region", "r", models.DefaultRegion, "The target region for the migrations")
	flags.IntVar(&cfg.Iops, "io_ps", models.DefaultIops, "The desired IOPS of volumes")
	flags.IntVar(&cfg.Throughput, "thr_val", models.DefaultThroughput, "The desired throughput of volumes")
	flags.StringVarP(&cfg.TargetVolumeType, "target_volume_type", "t", models.DefaultTargetType, "The target volume type")
	flags.StringVarP(&cfg.CurrentVolumeType, "current_volume_type", "c", models.DefaultCurrentType, "The current volume type")
	flags.StringVarP(&dryRun, "dryRun", "d", models.DefaultDryRun,
		"Dry run option, no modifications made. Generates reports only (True/False)")

	flags.StringVarP(&cfg.Profile, "profile", "p", "", "AWS profile used to assume the migration roles")
	flags.StringVar(&cfg.RoleSuffix, "role-suffix", awsclient.DefaultRoleSuffix,
		"Migration role name suffix; the role assumed is <account-id>-<suffix>")
	flags.StringVar(&cfg.SessionName, "session-name", awsclient.DefaultSessionName, "Role session name")
	flags.StringVarP(&cfg.OutputDir, "output-dir", "o", ".", "Directory for the CSV report")
	flags.StringVar(&cfg.VolumeFilter, "volume-filter", "", "Glob pattern restricting volume IDs in account mode (e.g. vol-0*)")
	flags.StringVar(&cfg.LogLevel, "log-level", models.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable progress bar and spinner")
	flags.BoolVar(&cfg.OfflinePricing, "offline-pricing", false, "Estimate savings from built-in prices instead of the AWS Pricing API")
	flags.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	rootCmd.MarkFlagsMutuallyExclusive("account-id", "filename")

	return rootCmd
}

func run(ctx context.Context, stdout, stderr io.Writer, cfg models.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	if _, ok := utils.GetRegionDescriptiveName(cfg.Region); !ok {
		logger.Warn("region has no pricing location, savings will not be estimated", "region", cfg.Region)
	}

	var volumeFilter glob.Glob
	if cfg.VolumeFilter != "" {
		volumeFilter, err = glob.Compile(cfg.VolumeFilter)
		if err != nil {
			return fmt.Errorf("invalid volume filter %q: %w", cfg.VolumeFilter, err)
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var targets []models.Target
	if cfg.BatchMode() {
		targets, err = input.ReadTargetsFile(cfg.Filename)
		if err != nil {
			return err
		}
	}

	baseCfg, err := awsclient.LoadBaseConfig(ctx, cfg.Profile, cfg.Region)
	if err != nil {
		return err
	}
	provider := awsclient.NewSessionProvider(baseCfg, awsclient.SessionOptions{
		RoleSuffix:  cfg.RoleSuffix,
		SessionName: cfg.SessionName,
	}, logger)
	sessions := awsclient.NewSessionCache()

	startTime := time.Now()
	reporter, err := report.Create(cfg.OutputDir, startTime)
	if err != nil {
		return err
	}

	runner := migrate.NewRunner(provider, sessions, reporter, migrate.Options{
		SourceType:   cfg.CurrentVolumeType,
		TargetType:   cfg.TargetVolumeType,
		DryRun:       cfg.DryRun,
		Iops:         cfg.Iops,
		Throughput:   cfg.Throughput,
		VolumeFilter: volumeFilter,
	}, logger)

	logger.Info("starting EBS volume migration",
		"batch", cfg.BatchMode(), "dryRun", cfg.DryRun, "report", reporter.Path())

	var outcomes []models.Outcome
	var runErr error
	if cfg.BatchMode() {
		var bar *progressbar.ProgressBar
		if cfg.ShowProgress {
			bar = newProgressBar(stderr, len(targets))
			runner.WithProgress(bar)
		}
		outcomes, runErr = runner.RunTargets(ctx, targets)
		if bar != nil {
			_ = bar.Finish()
		}
	} else {
		// Spinner goes to stdout so log lines on stderr do not break it up
		var s *spinner.Spinner
		if cfg.ShowProgress {
			s = newAccountSpinner(stdout, cfg.AccountID, cfg.Region)
			s.Start()
		}
		outcomes, runErr = runner.RunAccount(ctx, cfg.AccountID, cfg.Region)
		if s != nil {
			s.Stop()
		}
	}
	duration := time.Since(startTime)

	closeErr := reporter.Close()

	catalog := pricing.NewCatalog(nil)
	if !cfg.OfflinePricing {
		catalog = pricing.NewCatalogFromConfig(baseCfg)
		logger.Debug("estimating savings with AWS Pricing API", "endpoint", pricing.Endpoint())
	}

	formatter.PrintMigrationSummary(stdout, formatter.Summarize(ctx, outcomes, catalog), startTime, duration)
	formatter.PrintFailedVolumesTable(stdout, outcomes)
	formatter.PrintFailedSessions(stdout, sessions.Failed())
	formatter.PrintPricingAPIStats(stdout, catalog.Stats())
	fmt.Fprintf(stdout, "\nReport written to %s (%d volumes)\n", reporter.Path(), reporter.Rows())

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// newProgressBar creates the per-volume progress bar shown in batch mode
func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Migrating volumes"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// newAccountSpinner creates the spinner shown while an account is processed
func newAccountSpinner(w io.Writer, accountID, region string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = fmt.Sprintf(" Migrating EBS volumes in %s (%s) ...", accountID, region)
	return s
}
