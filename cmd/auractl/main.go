package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	debugFlag  bool
	notifyFlag bool
	rootCmd    = &cobra.Command{
		Use:   "auractl",
		Short: "Run the mood pipeline from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetLevel(logrus.WarnLevel)
			if debugFlag {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	fetchCmd := &cobra.Command{
		Use:   "fetch <username>",
		Short: "Fetch a user's newest posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runFetch(cmd.Context(), args[0], limit, os.Stdout)
		},
	}
	fetchCmd.Flags().IntP("limit", "l", 0, "Number of posts to fetch (0 uses FETCH_LIMIT)")
	rootCmd.AddCommand(fetchCmd)

	trendCmd := &cobra.Command{
		Use:   "trend <username>",
		Short: "Fetch a user and print the daily mood trend with alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			days := -1
			if cmd.Flags().Changed("days") {
				days, _ = cmd.Flags().GetInt("days")
				if days < 0 {
					return fmt.Errorf("--days must not be negative")
				}
			}
			return runTrend(cmd.Context(), args[0], limit, days, os.Stdout)
		},
	}
	trendCmd.Flags().IntP("limit", "l", 0, "Number of posts to fetch (0 uses FETCH_LIMIT)")
	trendCmd.Flags().Int("days", 0, "Trend window in days (defaults to the configured trend window)")
	rootCmd.AddCommand(trendCmd)

	postsCmd := &cobra.Command{
		Use:   "posts <username>",
		Short: "Fetch a user and print per-post sentiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runPosts(cmd.Context(), args[0], limit, os.Stdout)
		},
	}
	postsCmd.Flags().IntP("limit", "l", 0, "Number of posts to fetch (0 uses FETCH_LIMIT)")
	rootCmd.AddCommand(postsCmd)

	for _, kind := range []string{"aura", "emotions", "personality"} {
		kind := kind
		rootCmd.AddCommand(&cobra.Command{
			Use:   kind + " <username>",
			Short: fmt.Sprintf("Print a user's %s", kind),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAnalysis(cmd.Context(), kind, args[0], os.Stdout)
			},
		})
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "scrape",
		Short: "Scrape the configured subreddits into the content cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), os.Stdout)
		},
	})

	patientsCmd := &cobra.Command{
		Use:   "patients",
		Short: "Search the cached scrape grouped by author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			limit, _ := cmd.Flags().GetInt("limit")
			return runPatients(cmd.Context(), query, limit, os.Stdout)
		},
	}
	patientsCmd.Flags().StringP("query", "q", "", "Keyword to match in post content")
	patientsCmd.Flags().IntP("limit", "l", 50, "Maximum number of authors")
	rootCmd.AddCommand(patientsCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run the watch-list alert check once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), notifyFlag, os.Stdout)
		},
	}
	checkCmd.Flags().BoolVar(&notifyFlag, "notify", false, "Deliver digests to the configured channels instead of printing them")
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
