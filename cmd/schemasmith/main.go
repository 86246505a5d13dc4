package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/analyzer"
	"github.com/amosWeiskopf/schemasmith/pkg/crawler"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/reporter"
	"github.com/amosWeiskopf/schemasmith/pkg/utils"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what the persistent pre-run loads for every command
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schemasmith",
		Short: "SchemaSmith - per-country organization profiles from a sitemap",
		Long: `SchemaSmith reads a multi-locale sitemap, groups its URLs into logical pages
and builds one organization profile per country, with contact details and
social links extracted from each country's pages.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")

	rootCmd.AddCommand(a.buildCmd(), a.inspectCmd(), a.reportCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	// a missing .env is fine
	_ = godotenv.Load()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}

	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Logging)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) crawler() (*crawler.Crawler, error) {
	f, err := fetcher.NewHTTPFetcher(a.cfg.Fetcher, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return crawler.New(f, a.cfg.Site, a.logger), nil
}

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build per-country organization configuration from a sitemap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sitemapURL, _ := cmd.Flags().GetString("sitemap")
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.cfg.Output.Path, _ = flags.GetString("output")
			}
			if flags.Changed("format") {
				a.cfg.Output.Format, _ = flags.GetString("format")
			}
			if flags.Changed("keyed") {
				a.cfg.Output.Keyed, _ = flags.GetBool("keyed")
			}
			if flags.Changed("concurrency") {
				a.cfg.Site.MaxConcurrentRequests, _ = flags.GetInt("concurrency")
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			c, err := a.crawler()
			if err != nil {
				return err
			}
			result, err := c.Run(cmd.Context(), sitemapURL)
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}

			r := reporter.New()
			report := analyzer.New(a.cfg.Site.FallbackCountry).Analyze(result.Configs)

			err = writeTo(cmd.OutOrStdout(), a.cfg.Output.Path, func(w io.Writer) error {
				if a.cfg.Output.Format == reporter.FormatMarkdown {
					return r.WriteReport(w, report, reporter.FormatMarkdown)
				}
				return r.WriteConfigs(w, result.Configs, a.cfg.Output.Keyed)
			})
			if err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			if reportPath, _ := flags.GetString("report"); reportPath != "" {
				err := writeTo(cmd.OutOrStdout(), reportPath, func(w io.Writer) error {
					return r.WriteReport(w, report, reporter.FormatMarkdown)
				})
				if err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
			}

			a.logger.Info("configuration written",
				"run_id", result.RunID,
				"output", a.cfg.Output.Path,
				"countries", len(result.Configs),
				"grade", report.Summary.OverallGrade)
			return nil
		},
	}

	cmd.Flags().StringP("sitemap", "s", "", "Sitemap or sitemap index URL")
	cmd.Flags().String("output", "", "Output file, - for stdout (default from config)")
	cmd.Flags().String("format", "", "Output format (json, markdown)")
	cmd.Flags().Bool("keyed", false, "Write a JSON object keyed by country code")
	cmd.Flags().Int("concurrency", 0, "Maximum concurrent country extractions")
	cmd.Flags().String("report", "", "Also write a Markdown coverage report to this file")
	_ = cmd.MarkFlagRequired("sitemap")
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load a sitemap and show how its URLs would be grouped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sitemapURL, _ := cmd.Flags().GetString("sitemap")

			c, err := a.crawler()
			if err != nil {
				return err
			}
			in, err := c.Inspect(cmd.Context(), sitemapURL)
			if err != nil {
				return fmt.Errorf("inspect failed: %w", err)
			}
			printInspection(cmd.OutOrStdout(), in)
			return nil
		},
	}

	cmd.Flags().StringP("sitemap", "s", "", "Sitemap or sitemap index URL")
	_ = cmd.MarkFlagRequired("sitemap")
	return cmd
}

const maxHrefWidth = 120

func printInspection(w io.Writer, in *crawler.Inspection) {
	fmt.Fprintf(w, "Sitemap:          %s\n", in.SitemapURL)
	fmt.Fprintf(w, "Total URLs:       %d\n", in.Total)
	fmt.Fprintf(w, "With alternates:  %d\n", in.WithAlternates)
	fmt.Fprintf(w, "Page groups:      %d\n", in.Groups)

	if in.First != nil {
		fmt.Fprintf(w, "\nFirst entry:\n  %s\n", in.First.Loc)
		for _, alt := range in.First.Alternates {
			fmt.Fprintf(w, "    %-10s %s\n", alt.Hreflang, utils.TruncateText(alt.Href, maxHrefWidth))
		}
	}

	if in.FirstWithAlternates == nil {
		fmt.Fprintln(w, "\nNo entry declares alternate links.")
		return
	}
	fmt.Fprintf(w, "\nFirst entry with alternates:\n  %s\n", in.FirstWithAlternates.Loc)
	for _, alt := range in.Alternates {
		mapped := "unmapped"
		if alt.Known {
			mapped = alt.CountryCode + " " + alt.Locale
		}
		fmt.Fprintf(w, "    %-10s %-12s %s\n", alt.Hreflang, mapped, utils.TruncateText(alt.Href, maxHrefWidth))
	}
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a coverage report from a previously written configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, _ := cmd.Flags().GetString("input")
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			configs, err := readConfigs(input)
			if err != nil {
				return err
			}

			report := analyzer.New(a.cfg.Site.FallbackCountry).Analyze(configs)
			return writeTo(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return reporter.New().WriteReport(w, report, format)
			})
		},
	}

	cmd.Flags().String("input", "", "Configuration file written by build")
	cmd.Flags().String("format", reporter.FormatMarkdown, "Report format (json, markdown)")
	cmd.Flags().String("output", "", "Output file for report (default stdout)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func readConfigs(path string) ([]models.CountryOrganizationConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return reporter.New().ReadConfigs(f)
}

// writeTo runs write against path, or against stdout when path is empty or -
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
