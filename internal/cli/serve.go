package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/config"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/server"
	"github.com/fschmidt/virtualcv/pkg/session"
	"github.com/fschmidt/virtualcv/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr   string // listen address, overrides config
	seed   string // JSON file to preload into an in-memory store
	noAuth bool   // accept edits without a session (local development)
}

// serveCommand creates the serve command running the CV API.
//
// Backends come from the config file: a Mongo URI selects the document
// store, a Redis address selects shared session storage. Without either,
// everything runs in memory, optionally seeded from a JSON file.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the CV API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "JSON file to preload into the in-memory store")
	cmd.Flags().BoolVar(&opts.noAuth, "no-auth", false, "allow edits without login (local development)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, opts serveOpts) error {
	backing, err := c.openStore(ctx, cfg, opts.seed)
	if err != nil {
		return err
	}
	defer backing.Close(context.Background())

	sessions, states, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}

	whitelist := session.NewWhitelist(cfg.Auth.WhitelistEmails)
	if opts.noAuth {
		// Local development shortcut: a pre-seeded session everyone shares.
		mock := session.MockLocal()
		whitelist = session.NewWhitelist([]string{mock.User.Email})
		if err := sessions.Set(ctx, mock); err != nil {
			return fmt.Errorf("seed local session: %w", err)
		}
		c.Logger.Warn("authentication disabled", "token", mock.ID)
	}

	srv := server.New(server.Options{
		Store:          backing,
		Sessions:       sessions,
		Whitelist:      whitelist,
		States:         states,
		SessionTTL:     cfg.SessionTTL(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         c.Logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// openStore selects the persistence backend from config.
func (c *CLI) openStore(ctx context.Context, cfg config.Config, seed string) (store.Store, error) {
	if cfg.Mongo.URI != "" {
		c.Logger.Info("using mongodb store", "database", cfg.Mongo.Database)
		return store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}

	if seed == "" && cfg.Content.Path != "" {
		seed = cfg.Content.Path
	}
	if seed != "" {
		data, err := cv.ReadFile(seed)
		if err != nil {
			return nil, fmt.Errorf("load seed data: %w", err)
		}
		c.Logger.Info("using in-memory store", "seed", seed, "nodes", len(data.Nodes))
		return store.NewMemoryStoreFromData(data), nil
	}

	c.Logger.Warn("using empty in-memory store; data is lost on restart")
	return store.NewMemoryStore(), nil
}

// openSessions selects the session and login-state backends from config.
// Both share one Redis connection when an address is configured.
func openSessions(ctx context.Context, cfg config.Config) (session.Store, session.StateStore, error) {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryStore(), session.NewMemoryStateStore(), nil
	}
	store, err := session.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	return store, store.StateStore(), nil
}
