package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/api"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	httpmiddleware "github.com/kapoorritesh1111-create/timesheet-v2/internal/http"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/logger"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/server"
	memorystore "github.com/kapoorritesh1111-create/timesheet-v2/internal/store/memory"
	postgresstore "github.com/kapoorritesh1111-create/timesheet-v2/internal/store/postgres"
)

type ServerCmd struct {
	Listen string `help:"HTTP server listen address" default:"localhost:8080" env:"TIMESHEET_LISTEN"`

	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"TIMESHEET_CORS_ORIGINS"`

	TokenSecret string `help:"secret key for HMAC signing of bearer tokens" env:"TIMESHEET_TOKEN_SECRET"`

	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TIMESHEET_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TIMESHEET_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("token secret is required (--token-secret or TIMESHEET_TOKEN_SECRET)")
	}
	if len(c.TokenSecret) < 32 {
		return errors.New("token secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	var stores server.Stores
	switch c.StoreType {
	case "postgres":
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
			AutoMigrate:     c.PostgresStore.AutoMigrate,
		}
		pool, err := postgresstore.NewPool(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		stores = server.Stores{
			Organizations: postgresstore.NewOrganizationStore(pool),
			Profiles:      postgresstore.NewProfileStore(pool),
			Projects:      postgresstore.NewProjectStore(pool),
			Entries:       postgresstore.NewTimeEntryStore(pool),
		}
		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		profiles := memorystore.NewProfileStore()
		stores = server.Stores{
			Organizations: memorystore.NewOrganizationStore(),
			Profiles:      profiles,
			Projects:      memorystore.NewProjectStore(),
			Entries:       memorystore.NewTimeEntryStore(profiles),
		}
		log.Warn().Msg("Using in-memory stores, data will not survive a restart")
	}

	svc := server.NewServices(stores)
	handler := api.NewHandler(svc)

	authed := auth.Middleware([]byte(c.TokenSecret))(handler.Routes())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.Healthz)
	mux.Handle("/v1/", authed)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	chain := httpmiddleware.ClientIPMiddleware()(
		logger.Requests(log)(
			corsHandler.Handler(
				gzhttp.GzipHandler(mux))))

	srv := configureHTTPServer(c.Listen, chain)

	log.Info().Str("listen", c.Listen).Str("store", c.StoreType).Msg("Listening for API connections")
	return srv.ListenAndServe()
}
