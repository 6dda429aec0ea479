package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-covers/internal/artwork"
	"media-covers/internal/cover"
	"media-covers/internal/logging"
	"media-covers/internal/raster"
)

// Default timeout for one generation
const defaultTimeout = 5 * time.Minute

// options are the parsed command line flags.
type options struct {
	dir       string
	library   string
	style     string
	animated  bool
	frames    int
	duration  int
	format    string
	title     string
	subtitle  string
	seed      int64
	titleFont string
	subFont   string
	useVips   bool
	verbose   bool
	out       string
	timeout   time.Duration
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
		cancel()
	}()

	if opts.useVips {
		if err := raster.InitVips(); err != nil {
			logging.Warn("libvips unavailable, using imaging: %v", err)
		}
		defer raster.ShutdownVips()
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("covergen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.dir, "dir", "", "library root directory (one subdirectory per library)")
	fs.StringVar(&opts.library, "library", "", "library to draw artwork from")
	fs.StringVar(&opts.style, "style", string(cover.StyleCollage), "static style: collage, split or cards")
	fs.BoolVar(&opts.animated, "animated", false, "render the scrolling collage animation")
	fs.IntVar(&opts.frames, "frames", cover.DefaultFrameCount, "animation frame count")
	fs.IntVar(&opts.duration, "duration", cover.DefaultFrameDuration, "animation frame duration in milliseconds")
	fs.StringVar(&opts.format, "format", string(cover.FormatGIF), "animation format: gif or webp")
	fs.StringVar(&opts.title, "title", "", "title text")
	fs.StringVar(&opts.subtitle, "subtitle", "", "subtitle text")
	fs.Int64Var(&opts.seed, "seed", -1, "random seed for reproducible output (-1 for random)")
	fs.StringVar(&opts.titleFont, "title-font", "", "title font file (.ttf, .otf or .ttc)")
	fs.StringVar(&opts.subFont, "subtitle-font", "", "subtitle font file (.ttf, .otf or .ttc)")
	fs.BoolVar(&opts.useVips, "vips", false, "use libvips for decoding and WebP encoding")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.StringVar(&opts.out, "out", "", "output file")
	fs.DurationVar(&opts.timeout, "timeout", defaultTimeout, "generation timeout")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	var missing []string
	for name, v := range map[string]string{"-dir": opts.dir, "-library": opts.library, "-out": opts.out} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(stderr, "missing required flags: %v\n", missing)
		fs.Usage()
		return opts, fmt.Errorf("missing required flags: %v", missing)
	}
	return opts, nil
}

// run renders the cover described by opts and writes it to opts.out.
func run(ctx context.Context, opts options) error {
	fonts, err := cover.LoadFonts(opts.titleFont, opts.subFont)
	if err != nil {
		return err
	}

	serviceOpts := []cover.Option{cover.WithFonts(fonts)}
	if raster.IsVipsAvailable() {
		if v, err := raster.NewVips(); err == nil {
			serviceOpts = append(serviceOpts, cover.WithBackend(v))
		}
	}

	svc, err := cover.NewService(artwork.NewDirSource(opts.dir), serviceOpts...)
	if err != nil {
		return err
	}

	params := cover.StyleParams{}
	if opts.seed >= 0 {
		seed := uint64(opts.seed)
		params.Seed = &seed
	}

	start := time.Now()
	var data []byte
	if opts.animated {
		data, err = svc.GenerateAnimated(ctx, cover.AnimatedRequest{
			LibraryID:       opts.library,
			FrameCount:      opts.frames,
			FrameDurationMs: opts.duration,
			Format:          cover.Format(opts.format),
			Title:           opts.title,
			Subtitle:        opts.subtitle,
			Params:          params,
		})
	} else {
		data, err = svc.GenerateStatic(ctx, cover.StaticRequest{
			LibraryID: opts.library,
			Style:     cover.Style(opts.style),
			Title:     opts.title,
			Subtitle:  opts.subtitle,
			Params:    params,
		})
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	fmt.Printf("Wrote %s (%d bytes) in %v\n", opts.out, len(data), time.Since(start).Round(time.Millisecond))
	return nil
}
