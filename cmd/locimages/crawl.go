package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"locimages/pkg/config"
	"locimages/pkg/crawler"
	"locimages/pkg/logger"
	"locimages/pkg/output"
)

var (
	// Crawl command flags
	ariaFormat        bool
	groupByCollection bool
	rootDir           string
	rateLimit         int
	pageSize          int
	maxElapsed        time.Duration
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a collection or search URL and print image URLs",
	Long: `Crawl a loc.gov collection or search query and print the image URLs found
in its results, in discovery order, one per line on stdout. Diagnostics go
to stderr, so stdout can be piped directly into a file or into aria2c.

By default the output is in aria2c's input-file format (consume it with
aria2c -i); pass --aria-format=false for a plain list of URLs.

Each URL carries the image dimensions as a #h=..&w=.. fragment when the API
reports them.`,
	Example: `  # List images from a collection in aria2c format
  locimages crawl "https://www.loc.gov/collections/baseball-cards/"

  # Plain URL list from a search query
  locimages crawl --aria-format=false "https://www.loc.gov/photos/?q=bridges&dates=1800%2F1899"

  # Download everything with aria2c
  locimages crawl "https://www.loc.gov/collections/fsa-owi-color-photographs/" > images.txt
  aria2c -i images.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().BoolVar(&ariaFormat, "aria-format", true, "emit aria2c input-file format instead of a plain URL list")
	crawlCmd.Flags().BoolVar(&groupByCollection, "group-by-collection", true, "when aria2c formatting, group downloads into per-collection directories")
	crawlCmd.Flags().StringVar(&rootDir, "root-dir", "", "when aria2c formatting, root directory of image downloads (default: current directory)")
	crawlCmd.Flags().IntVar(&rateLimit, "rate-limit", 80, "requests per minute")
	crawlCmd.Flags().IntVar(&pageSize, "page-size", 100, "results requested per page")
	crawlCmd.Flags().DurationVar(&maxElapsed, "max-retry-elapsed", 2*time.Hour, "give up on a page after retrying this long (0 = never)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	rawURL := strings.TrimSpace(args[0])

	// Build flags map from command line
	flags := make(map[string]interface{})
	flags["aria-format"] = ariaFormat
	flags["group-by-collection"] = groupByCollection
	if rootDir != "" {
		flags["root-dir"] = rootDir
	}
	if rateLimit != 80 {
		flags["requests-per-minute"] = rateLimit
	}
	if pageSize != 100 {
		flags["page-size"] = pageSize
	}
	if maxElapsed != 2*time.Hour {
		flags["max-elapsed"] = maxElapsed
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	// Interrupt cancels in-flight waits and ends the stream cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := crawler.New(cfg, log).Crawl(ctx, rawURL)
	if err != nil {
		// Invalid input or a dead first page: fatal, nothing was printed
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	writer := output.NewWriter(out, cfg.Output.AriaFormat, output.Options{
		GroupByCollection: cfg.Output.GroupByCollection,
		RootDir:           cfg.Output.RootDir,
	})

	count := 0
	for img := range stream.Images() {
		if err := writer.WriteImage(img); err != nil {
			return err
		}
		count++
	}

	if err := out.Flush(); err != nil {
		return err
	}

	// A later-page failure is a diagnostic, not a hard failure: the URLs
	// already printed are still useful
	if serr := stream.Err(); serr != nil {
		log.WithError(serr).WithField("images", count).Warn("crawl ended early, output is partial")
	} else {
		log.WithField("images", count).Info("crawl finished")
	}

	return nil
}
