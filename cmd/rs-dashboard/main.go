package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/risksense-community/RSClientGo/internal/cliutil"
	"github.com/risksense-community/RSClientGo/internal/config"
	"github.com/risksense-community/RSClientGo/internal/dashboard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "rs-dashboard",
		Short: "RiskSense dashboard widgets on the terminal or as Prometheus metrics",
	}
	opts := cliutil.AddFlags(cmd.PersistentFlags())
	var widgetNames []string
	cmd.PersistentFlags().StringSliceVar(&widgetNames, "widgets", nil, "widgets to evaluate (default: [dashboard] widgets from the configuration, or all)")

	cmd.AddCommand(newShowCommand(opts, &widgetNames), newServeCommand(opts, &widgetNames), newListCommand())
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(opts *cliutil.Options, names []string) (*config.Config, *logrus.Logger, *dashboard.Runner, []dashboard.Widget) {
	cfg, logger, err := opts.Setup()
	if err != nil {
		logrus.Fatalf("Unable to load configuration: %s", err)
	}
	client, err := cliutil.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Error creating client: %s", err)
	}

	if len(names) == 0 {
		names = cfg.Dashboard.Widgets
	}
	widgets, err := dashboard.Select(dashboard.DefaultWidgets(), names)
	if err != nil {
		logger.Fatalf("Invalid widget selection: %s", err)
	}
	return cfg, logger, dashboard.NewRunner(client, cliutil.Subject(cfg), logger), widgets
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List the available widgets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, w := range dashboard.DefaultWidgets() {
				cmd.Printf("%-24s %s\n", w.Name, w.Title)
			}
		},
	}
}

func newShowCommand(opts *cliutil.Options, names *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Evaluate the widgets once and print them as a table",
		Run: func(cmd *cobra.Command, args []string) {
			_, logger, runner, widgets := setup(opts, *names)
			results := runner.RunAll(widgets)
			dashboard.Render(os.Stdout, results)

			for _, r := range results {
				if r.Err != nil {
					logger.Fatalf("Some widgets could not be evaluated")
				}
			}
		},
	}
}

func newServeCommand(opts *cliutil.Options, names *[]string) *cobra.Command {
	var listen string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Export the widgets as Prometheus gauges on /metrics",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger, runner, widgets := setup(opts, *names)
			if !cmd.Flags().Changed("listen") {
				listen = cfg.Dashboard.Listen
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.Dashboard.Interval.Duration
			}
			if interval < time.Minute {
				logger.Fatalf("Refresh interval %v is below the one minute minimum", interval)
			}

			exporter, err := dashboard.NewExporter(runner, widgets, logger, prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatalf("Unable to create exporter: %s", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go exporter.Run(ctx, interval)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdown)
			}()

			logger.Infof("Exporting %d widgets on %v/metrics every %v", len(widgets), listen, interval)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("Exporter stopped: %s", err)
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":9100", "address to serve /metrics on")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Minute, "time between widget refreshes")
	return cmd
}
