package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/textflow/pkg/textflow"
	"github.com/randalmurphal/textflow/pkg/textflow/canvas"
	"github.com/randalmurphal/textflow/pkg/textflow/config"
	"github.com/randalmurphal/textflow/pkg/textflow/observability"
	"github.com/randalmurphal/textflow/pkg/textflow/server"
)

// app is the state shared by subcommands once the root pre-run has loaded
// settings.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	settings  config.Settings
	logger    *slog.Logger
	telemetry *observability.Telemetry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "textflow",
		Short:         "Turn text into flowchart nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.telemetry == nil {
				return nil
			}
			return a.telemetry.Shutdown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "settings file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newExtractCmd(a), newServeCmd(a))
	return root
}

func (a *app) init(logOut io.Writer) error {
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		s.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		s.Log.Format = a.logFormat
	}

	logger, err := observability.NewLogger(logOut, s.Log.Level, s.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	tel, err := observability.Setup(observability.TelemetryConfig{
		Metrics: s.Telemetry.Metrics,
		Tracing: s.Telemetry.Tracing,
		Writer:  logOut,
	})
	if err != nil {
		return err
	}

	a.settings = s
	a.logger = logger
	a.telemetry = tel
	return nil
}

func (a *app) pipeline() *textflow.Pipeline {
	return textflow.NewPipeline(a.settings.NewClient(),
		textflow.WithLogger(a.logger),
		textflow.WithMetrics(a.telemetry.Metrics),
		textflow.WithTracing(a.telemetry.Spans),
		textflow.WithPrompts(a.settings.Prompts()),
	)
}

func (a *app) emitter() *textflow.Emitter {
	return textflow.NewEmitter(
		textflow.WithEmitterLogger(a.logger),
		textflow.WithEmitterMetrics(a.telemetry.Metrics),
		textflow.WithEmitterTracing(a.telemetry.Spans),
	)
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		draw   bool
		driver string
		dsn    string
		page   string
	)

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract flowchart nodes from text (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			r := a.pipeline().Extract(ctx, text, a.settings.HasCredential())
			switch r.Status {
			case textflow.StatusIgnored:
				a.logger.Info("input is blank, nothing to extract")
				return nil
			case textflow.StatusFailure:
				return fmt.Errorf("extract (%s): %w", textflow.KindOf(r.Err), r.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Text())

			if !draw {
				return nil
			}
			return a.draw(ctx, cmd.OutOrStdout(), r.Nodes, driver, dsn, page)
		},
	}

	cmd.Flags().BoolVar(&draw, "draw", false, "lay the nodes out on a canvas page")
	cmd.Flags().StringVar(&driver, "canvas", "", "canvas driver (default from settings)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "canvas DSN (default from settings)")
	cmd.Flags().StringVar(&page, "page", "", "canvas page (default from settings)")
	return cmd
}

func (a *app) draw(ctx context.Context, out io.Writer, nodes textflow.NodeSequence, driver, dsn, page string) error {
	if driver == "" {
		driver = a.settings.Canvas.Driver
	}
	if dsn == "" {
		dsn = a.settings.Canvas.DSN
	}
	if page == "" {
		page = a.settings.Canvas.Page
	}

	surface, err := canvas.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer surface.Close()

	if err := a.emitter().Emit(ctx, nodes, surface.Page(page)); err != nil {
		return err
	}
	fmt.Fprintf(out, "placed %d shapes on %s page %q\n", 2*len(nodes), driver, page)
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.settings.Server.Addr
			}

			surface, err := canvas.Open(a.settings.Canvas.Driver, a.settings.Canvas.DSN)
			if err != nil {
				return err
			}
			defer surface.Close()

			srv := server.New(a.pipeline(), surface,
				server.WithCredential(a.settings.HasCredential()),
				server.WithEmitter(a.emitter()),
				server.WithDefaultPage(a.settings.Canvas.Page),
				server.WithLogger(a.logger),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, addr, a.settings.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings)")
	return cmd
}

// readInput joins args, or reads all of r when there are none.
func readInput(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
