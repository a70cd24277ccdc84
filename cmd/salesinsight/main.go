package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	salesforecaster "github.com/aouyang1/go-salesforecaster"
	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/config"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/sales"
	"github.com/aouyang1/go-salesforecaster/server"
	"github.com/aouyang1/go-salesforecaster/summarizer"
)

const shutdownTimeout = 10 * time.Second

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "salesinsight",
		Short:        "Weekly retail sales forecasting and reporting",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(forecastCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serveCmd runs the HTTP server until interrupted
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the predict and report endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(os.Stderr)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opt := &salesforecaster.Options{
				Forecast: cfg.ForecastOptions(),
				Charts:   chart.NewRenderer(filepath.Join(cfg.StaticDir, "graphs"), cfg.BaseURL, logger),
				Logger:   logger,
			}
			gemini, err := summarizer.NewGemini(ctx, cfg.GeminiOptions(), logger)
			switch {
			case errors.Is(err, summarizer.ErrNoAPIKey):
				logger.Warn("GEMINI_API_KEY not set, /report is disabled")
			case err != nil:
				return err
			default:
				defer gemini.Close()
				opt.Summarizer = gemini
			}

			svc, err := salesforecaster.New(opt)
			if err != nil {
				return err
			}

			srv := server.New(&server.Options{
				Addr:         cfg.Server.Addr,
				BodyLimit:    cfg.BodyLimit(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				StaticDir:    cfg.StaticDir,
			}, svc, logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// forecastCmd runs the forecaster over a local file and prints the result
func forecastCmd() *cobra.Command {
	var (
		file      string
		periods   int
		group     string
		regressor string
		asTable   bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast a local sales file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(os.Stderr)

			fopt := cfg.ForecastOptions()
			if cmd.Flags().Changed("periods") {
				fopt.Periods = periods
			}
			if cmd.Flags().Changed("regressor") {
				r, err := forecast.ParseRegressor(regressor)
				if err != nil {
					return err
				}
				fopt.Regressor = r
			}
			key, err := sales.ParseKey(group)
			if err != nil {
				return err
			}

			table, err := readFile(file)
			if err != nil {
				return err
			}

			svc, err := salesforecaster.New(&salesforecaster.Options{Forecast: fopt, Logger: logger})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if key != sales.KeyAll {
				res, err := svc.Forecast(ctx, table, key)
				if err != nil {
					return err
				}
				if asTable {
					return res.TablePrint(out)
				}
				return writeJSON(out, res)
			}

			p, err := svc.Predict(ctx, table)
			if err != nil {
				return err
			}
			if !asTable {
				return writeJSON(out, p)
			}
			sections := []struct {
				title string
				res   *forecast.Result
			}{
				{"product_forecast", p.Product},
				{"category_forecast", p.Category},
				{"date_forecast", p.Date},
			}
			for _, s := range sections {
				fmt.Fprintf(out, "== %s ==\n", s.title)
				if err := s.res.TablePrint(out); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Sales file (.csv or .xlsx)")
	cmd.Flags().IntVarP(&periods, "periods", "p", forecast.DefaultPeriods, "Number of days to forecast")
	cmd.Flags().StringVarP(&group, "group", "g", "all", "Grouping: product, category, date, or all for every grouping")
	cmd.Flags().StringVarP(&regressor, "regressor", "r", string(forecast.RegressorGBT), "Regressor: gbt, ols, or lasso")
	cmd.Flags().BoolVar(&asTable, "table", false, "Print a table instead of JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readFile(path string) (*sales.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	table, err := sales.Read(path, f, sales.DefaultSchema())
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return table, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
