package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allscreenshots/allscreenshots-sdk-go"
)

type screenshotOptions struct {
	Output   string
	Device   string
	Format   string
	FullPage bool
	DarkMode bool
	Async    bool
}

func newScreenshotCommand(a *app) *cobra.Command {
	opts := &screenshotOptions{}

	cmd := &cobra.Command{
		Use:   "screenshot <url>",
		Short: "Capture a web page",
		Example: `  # Capture a page to a file
  allscreenshots screenshot https://example.com -o example.png

  # Full-page capture on a phone
  allscreenshots screenshot https://example.com -o phone.png --device "iPhone 14" --full-page

  # Queue the capture and print the job
  allscreenshots screenshot https://example.com --async`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreenshot(cmd, a, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "file to write the image to")
	cmd.Flags().StringVar(&opts.Device, "device", "", "device preset, e.g. \"Desktop HD\" or \"iPhone 14\"")
	cmd.Flags().StringVar(&opts.Format, "format", "", "image format (png, jpeg, webp, pdf)")
	cmd.Flags().BoolVar(&opts.FullPage, "full-page", false, "capture the full scrollable page")
	cmd.Flags().BoolVar(&opts.DarkMode, "dark-mode", false, "emulate a dark color scheme")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "queue the capture and print the job instead of waiting")

	return cmd
}

func runScreenshot(cmd *cobra.Command, a *app, opts *screenshotOptions, target string) error {
	req := &allscreenshots.ScreenshotRequest{URL: target}
	if opts.Device != "" {
		req.Device = &opts.Device
	}
	if opts.Format != "" {
		format := allscreenshots.ImageFormat(opts.Format)
		req.Format = &format
	}
	if opts.FullPage {
		req.FullPage = &opts.FullPage
	}
	if opts.DarkMode {
		req.DarkMode = &opts.DarkMode
	}

	if opts.Async {
		job, err := a.client.TakeScreenshotAsync(cmd.Context(), req)
		if err != nil {
			return err
		}
		return a.printJSON(job)
	}

	if opts.Output == "" {
		return fmt.Errorf("--output is required unless --async is set")
	}

	image, err := a.client.TakeScreenshot(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.Output, image, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}

	a.logger.Info().
		Str("url", target).
		Str("file", opts.Output).
		Int("bytes", len(image)).
		Msg("screenshot saved")
	return nil
}
