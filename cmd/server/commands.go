package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"miirender/internal/config"
	"miirender/internal/engine/soft"
	"miirender/internal/gateway"
	"miirender/internal/nnid"
	"miirender/internal/preset"
	"miirender/internal/render"
	"miirender/internal/server"
	"miirender/internal/view"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the render backend",
	Annotations: map[string]string{"addr": "backend.addr", "body-scale": "backend.body_scale"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runBackend(ctx, cfg.Backend)
	},
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the HTTP gateway in front of a render backend",
	Annotations: map[string]string{
		"addr":     "gateway.addr",
		"upstream": "gateway.upstream",
		"presets":  "presets.path",
		"nnid-db":  "nnid.dsn",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		g, ctx := errgroup.WithContext(ctx)
		if err := startGateway(ctx, g, cfg); err != nil {
			return err
		}
		return g.Wait()
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the render backend and the gateway in one process",
	Annotations: map[string]string{
		"backend-addr": "backend.addr",
		"gateway-addr": "gateway.addr",
		"presets":      "presets.path",
		"nnid-db":      "nnid.dsn",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		c := *cfg
		c.Gateway.Upstream = c.Backend.Addr

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return runBackend(ctx, c.Backend) })
		if err := startGateway(ctx, g, &c); err != nil {
			return err
		}
		return g.Wait()
	},
}

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render QUERY",
	Short: "Render one gateway query to a file without any servers",
	Long: `Render takes the same query string as /miis/image.png, for example

  miirender render 'data=0800...&type=all_body&width=512' -o mii.png

The output type follows the file extension: .png, .tga, .glb or .pdf.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"presets": "presets.path", "body-scale": "backend.body_scale"},
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := url.ParseQuery(args[0])
		if err != nil {
			return fmt.Errorf("parse query: %w", err)
		}
		formula, err := cfg.Backend.ScaleFormula()
		if err != nil {
			return err
		}
		rc := render.NewContext(soft.New(), soft.Exporter{}, view.Resolver{Formula: formula}, log.Logger)
		defer rc.Close()

		gw := &gateway.Server{Conf: cfg.Gateway, Renderer: &gateway.LocalRenderer{Context: rc}}
		if cfg.Presets.Path != "" {
			set, err := preset.Load(cfg.Presets.Path)
			if err != nil {
				return err
			}
			gw.SetPresets(set)
		}

		body, _, err := gw.Render(cmd.Context(), q, filepath.Ext(renderOut))
		if err != nil {
			return err
		}
		if err := os.WriteFile(renderOut, body, 0o644); err != nil { //nolint:gosec // output file is meant to be readable
			return err
		}
		log.Info().Str("file", renderOut).Int("bytes", len(body)).Msg("rendered")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Backend listen address")
	serveCmd.Flags().String("body-scale", "", "Body scale formula (apply or limit)")

	gatewayCmd.Flags().String("addr", "", "Gateway listen address")
	gatewayCmd.Flags().String("upstream", "", "Render backend address")
	gatewayCmd.Flags().String("presets", "", "Presets YAML file")
	gatewayCmd.Flags().String("nnid-db", "", "SQLite database with NNID lookups")

	allCmd.Flags().String("backend-addr", "", "Backend listen address")
	allCmd.Flags().String("gateway-addr", "", "Gateway listen address")
	allCmd.Flags().String("presets", "", "Presets YAML file")
	allCmd.Flags().String("nnid-db", "", "SQLite database with NNID lookups")

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "mii.png", "Output file")
	renderCmd.Flags().String("presets", "", "Presets YAML file")
	renderCmd.Flags().String("body-scale", "", "Body scale formula (apply or limit)")
}

func runBackend(ctx context.Context, conf config.Backend) error {
	formula, err := conf.ScaleFormula()
	if err != nil {
		return err
	}
	rc := render.NewContext(soft.New(), soft.Exporter{}, view.Resolver{Formula: formula}, log.Logger)
	defer rc.Close()

	srv := &server.Server{Handler: rc, Log: log.Logger}
	return srv.ListenAndServe(ctx, conf.Addr)
}

// startGateway wires the gateway and its helpers into g.
func startGateway(ctx context.Context, g *errgroup.Group, c *config.Config) error {
	gw := gateway.NewServer(c.Gateway)

	if c.NNID.DSN != "" {
		store, err := nnid.Open(c.NNID.Driver, c.NNID.DSN)
		if err != nil {
			return err
		}
		if err := store.Migrate(ctx); err != nil {
			return errors.Join(fmt.Errorf("migrate nnid database: %w", err), store.Close())
		}
		gw.NNIDs = store
		g.Go(func() error {
			<-ctx.Done()
			return store.Close()
		})
	}

	if path := c.Presets.Path; path != "" {
		set, err := preset.Load(path)
		if err != nil {
			return err
		}
		gw.SetPresets(set)
		log.Info().Strs("presets", set.Names()).Msg("presets loaded")
		if c.Presets.Watch {
			g.Go(func() error { return preset.Watch(ctx, path, gw.SetPresets) })
		}
	}

	g.Go(func() error { return gw.ListenAndServe(ctx, c.Gateway.Addr) })
	return nil
}
