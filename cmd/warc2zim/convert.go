package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openzim/warc2zim/internal/config"
	"github.com/openzim/warc2zim/internal/converter"
	"github.com/openzim/warc2zim/internal/fuzzy"
	"github.com/openzim/warc2zim/internal/logging"
	"github.com/openzim/warc2zim/internal/record"
	"github.com/openzim/warc2zim/internal/urlcanon"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a .warc/.warc.gz capture into a bundle directory",
		RunE:  runConvert,
	}

	cmd.Flags().String("warc", "", "path to a .warc or .warc.gz file (required)")
	cmd.Flags().String("output", "./output", "output directory for the bundle")
	cmd.Flags().String("bundle-prefix", "http://library/content/myzim/", "absolute URL prefix the bundle is served at")
	cmd.Flags().String("custom-css", "", "href of a custom CSS link injected into every page")
	cmd.Flags().String("config", "", "path to a YAML config file")
	cmd.Flags().String("log-format", "text", "log output format (text or json)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConvert(cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).With("run_id", uuid.New().String())

	rules, err := fuzzy.Default()
	if err != nil {
		return fmt.Errorf("convert: loading fuzzy rules: %w", err)
	}
	canon := urlcanon.New(rules)

	stream, err := record.OpenWARCFile(cfg.WarcPath)
	if err != nil {
		return fmt.Errorf("convert: opening %q: %w", cfg.WarcPath, err)
	}
	defer stream.Close()

	sink, err := record.NewDirSink(cfg.OutputDir, logger)
	if err != nil {
		return fmt.Errorf("convert: preparing output dir %q: %w", cfg.OutputDir, err)
	}

	opts := converter.Options{
		BundlePrefix:  cfg.BundlePrefix,
		CustomCSSHref: cfg.CustomCSS,
	}

	summary, err := converter.ConvertWithOptions(cmd.Context(), stream, sink, canon, opts, logger)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	logger.Info("conversion complete",
		"written", summary.Written,
		"aliased", summary.Aliased,
		"skipped", summary.Skipped,
	)
	return nil
}
