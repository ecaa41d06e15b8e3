// Command stationselect runs the shared-mobility station-selection
// optimization core, either as an HTTP server or as a one-shot batch
// solve against Postgres-backed input data.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antigravity/stationselect/internal/config"
	"github.com/antigravity/stationselect/internal/dto"
	"github.com/antigravity/stationselect/internal/httpapi"
	"github.com/antigravity/stationselect/internal/logging"
	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/runner"
	"github.com/antigravity/stationselect/internal/solverx"
	"github.com/antigravity/stationselect/internal/store"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

func main() {
	root := &cobra.Command{
		Use:   "stationselect",
		Short: "Station-selection MIP optimization core",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSolveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pgCfg.MaxConns = cfg.Postgres.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func loadProblemData(ctx context.Context, pool *pgxpool.Pool) (*problemdata.ProblemData, error) {
	loader := store.NewLoader(pool)
	bundle, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load input data: %w", err)
	}

	requests, err := dto.ToRequests(bundle.Requests)
	if err != nil {
		return nil, err
	}

	return problemdata.Build(
		dto.ToStations(bundle.Stations),
		requests,
		dto.ToScenarioWindows(bundle.Windows),
		dto.ToCostMatrix(bundle.Walking),
		dto.ToCostMatrix(bundle.Routing),
	)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			pool, err := connectPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			logger.Info("connected to database")

			pd, err := loadProblemData(ctx, pool)
			if err != nil {
				return err
			}
			logger.Info("problem data loaded",
				zap.Int("stations", pd.StationCount()),
				zap.Int("scenarios", pd.ScenarioCount()),
			)

			handler := httpapi.NewRouter(pool, pd, logger)
			addr := cfg.Server.Addr()
			logger.Info("server starting", zap.String("addr", addr))
			srv := &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			return srv.ListenAndServe()
		},
	}
}

func newSolveCmd() *cobra.Command {
	var variant string
	var k, l int
	var buildExact bool
	var timeLimit time.Duration

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run one batch build+solve against the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			pool, err := connectPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			pd, err := loadProblemData(ctx, pool)
			if err != nil {
				return err
			}

			v, ok := parseVariantFlag(variant)
			if !ok {
				return fmt.Errorf("unknown variant %q", variant)
			}

			req := runner.Request{
				Variant: v,
				Params: mapping.Params{
					K: k, L: l, BuildExact: buildExact,
					TimeWindowSec: 900,
					RoutingDelay:  300,
				},
				ClusterParams: zonecluster.Params{
					Count:        intPtr(l),
					SolveOptions: solverx.DefaultOptions(),
				},
				Weights: model.Weights{Alpha: 1, Gamma: 1, CorridorWeight: 1, InVehicleTimeWeight: 1, ActivationCost: 0},
				SolveOptions: solverx.Options{
					Provider:       cfg.Solver.Provider,
					TimeLimit:      timeLimit,
					MIPGapRelative: cfg.Solver.MIPGapRelative,
					Verbose:        cfg.Solver.Verbose,
				},
			}

			outcome, err := runner.Run(pd, req, logger)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(outcome)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "clustering", "model variant: pooling|clustering|corridor-z|corridor-x|transportation")
	cmd.Flags().IntVar(&k, "k", 1, "per-scenario activation count")
	cmd.Flags().IntVar(&l, "l", 1, "build count")
	cmd.Flags().BoolVar(&buildExact, "build-exact", true, "require exactly l stations built")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 30*time.Second, "solver time limit")

	return cmd
}

func parseVariantFlag(s string) (mapping.Variant, bool) {
	switch s {
	case "pooling":
		return mapping.VariantPooling, true
	case "clustering":
		return mapping.VariantClustering, true
	case "corridor-z":
		return mapping.VariantCorridorZ, true
	case "corridor-x":
		return mapping.VariantCorridorX, true
	case "transportation":
		return mapping.VariantTransportation, true
	default:
		return 0, false
	}
}

func intPtr(v int) *int { return &v }
