// litegate: write-gate para clusters de replicación SQLite single-writer.
//
// Subcomandos:
//
//	serve            corre el daemon (status HTTP + elección configurada)
//	config generate  emite el litefs.yml del agente desde los settings
//	check            valida que un path sea un mount de replicación activo
//	classify         clasifica una sentencia SQL (debug)
//	status           consulta el /status de un nodo corriendo
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/litegate/internal/agentconf"
	"github.com/dropDatabas3/litegate/internal/cluster"
	"github.com/dropDatabas3/litegate/internal/config"
	"github.com/dropDatabas3/litegate/internal/detect"
	"github.com/dropDatabas3/litegate/internal/election"
	"github.com/dropDatabas3/litegate/internal/httpapi"
	"github.com/dropDatabas3/litegate/internal/metrics"
	"github.com/dropDatabas3/litegate/internal/mount"
	"github.com/dropDatabas3/litegate/internal/observability/logger"
	rsignal "github.com/dropDatabas3/litegate/internal/signal"
	"github.com/dropDatabas3/litegate/internal/sqlclass"
)

func main() {
	// .env base + overrides locales (dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfgPath string

	root := &cobra.Command{
		Use:           "litegate",
		Short:         "write-gate para replicación SQLite single-writer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("LITEGATE_CONFIG"), "path del config YAML (opcional)")

	root.AddCommand(
		serveCmd(&cfgPath),
		configCmd(&cfgPath),
		checkCmd(&cfgPath),
		classifyCmd(),
		statusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "litegate",
	})
	return cfg, nil
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "corre el daemon de status con la elección configurada",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			log := logger.Named("serve")

			if err := metrics.Register(nil); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &httpapi.Server{
				NodeID:   cfg.Node.ID,
				Election: cfg.Replication.Election,
			}

			g, ctx := errgroup.WithContext(ctx)

			switch cfg.Replication.Election {
			case config.ElectionStatic:
				// Precondición: el mount tiene que ser válido antes de
				// confiar en cualquier detector.
				if err := mount.Validate(cfg.Mount.Path); err != nil {
					return err
				}
				sig := rsignal.New(cfg.Mount.Path)
				cached := detect.NewCached(detect.New(election.NewStatic(sig)), cfg.Cache.RoleTTL)
				srv.MountPath = cfg.Mount.Path
				srv.Detector = cached
				srv.URLs = detect.NewURLResolver(cached, cfg.Proxy.Addr)

			case config.ElectionVoting:
				state := election.NewClusterState(cfg.Replication.LivenessWindow)
				node, err := cluster.NewNode(cluster.NodeOptions{
					NodeID:        cfg.Node.ID,
					RaftAddr:      cfg.Replication.Raft.Addr,
					RaftDir:       cfg.Replication.Raft.Dir,
					FSM:           cluster.NewFSM(state),
					Peers:         cfg.Replication.Raft.Peers,
					TLSEnable:     cfg.Replication.Raft.TLS.Enable,
					TLSCertFile:   cfg.Replication.Raft.TLS.CertFile,
					TLSKeyFile:    cfg.Replication.Raft.TLS.KeyFile,
					TLSCAFile:     cfg.Replication.Raft.TLS.CAFile,
					TLSServerName: cfg.Replication.Raft.TLS.ServerName,
				})
				if err != nil {
					return err
				}
				defer node.Close()

				voting := election.NewVoting(state, cfg.Node.ID, cfg.Replication.Candidates)
				cached := detect.NewCached(detect.New(voting), cfg.Cache.RoleTTL)
				srv.Detector = cached
				srv.URLs = detect.NewURLResolver(cached, cfg.Proxy.Addr)
				srv.Voting = voting

				hb := cluster.NewHeartbeater(node, state, cfg.Replication.HeartbeatInterval)
				g.Go(func() error { return hb.Run(ctx) })
			}

			log.Info("litegate starting",
				logger.NodeID(cfg.Node.ID),
				logger.String("election", cfg.Replication.Election),
				logger.String("addr", cfg.Server.Addr),
			)
			g.Go(func() error { return srv.Run(ctx, cfg.Server.Addr) })

			if err := g.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			log.Info("litegate stopped")
			return nil
		},
	}
}

func configCmd(cfgPath *string) *cobra.Command {
	var out string
	c := &cobra.Command{
		Use:   "config",
		Short: "operaciones sobre la config del agente de replicación",
	}
	gen := &cobra.Command{
		Use:   "generate",
		Short: "genera el litefs.yml del agente desde los settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if out != "" {
				return agentconf.WriteFile(out, cfg)
			}
			b, err := agentconf.Generate(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		},
	}
	gen.Flags().StringVarP(&out, "output", "o", "", "archivo destino (default: stdout)")
	c.AddCommand(gen)
	return c
}

func checkCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check [mount-path]",
		Short: "valida que el path sea un mount de replicación activo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(*cfgPath)
				if err != nil {
					return err
				}
				path = cfg.Mount.Path
			}
			if err := mount.Validate(path); err != nil {
				return err
			}
			fmt.Printf("ok: %s is an active replication mount\n", path)
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <sql>",
		Short: "clasifica una sentencia SQL como read/write (debug)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt := ""
			for i, a := range args {
				if i > 0 {
					stmt += " "
				}
				stmt += a
			}
			class := sqlclass.Classify(stmt)
			fmt.Printf("%s (effective: %s)\n", class, class.Effective())
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var baseURL string
	c := &cobra.Command{
		Use:   "status",
		Short: "consulta el /status de un nodo litegate corriendo",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 10 * time.Second}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/status", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)

			// pretty print si es JSON
			var v any
			if json.Unmarshal(b, &v) == nil {
				p, _ := json.MarshalIndent(v, "", "  ")
				fmt.Println(string(p))
				return nil
			}
			fmt.Println(string(b))
			return nil
		},
	}
	c.Flags().StringVar(&baseURL, "url", envOr("LITEGATE_STATUS_URL", "http://localhost:9090"), "URL base del nodo (env LITEGATE_STATUS_URL)")
	return c
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
