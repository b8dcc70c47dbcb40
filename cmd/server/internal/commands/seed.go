package commands

import (
	"context"
	"fmt"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/bootstrap"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/logger"
	postgresstore "github.com/kapoorritesh1111-create/timesheet-v2/internal/store/postgres"
)

// SeedCmd applies a declarative seed file to a PostgreSQL store. The
// memory store is process-local, so seeding it from a separate command
// would be pointless.
type SeedCmd struct {
	File string `help:"path to the seed YAML file" arg:""`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	cfg, err := bootstrap.LoadSeedConfig(c.File)
	if err != nil {
		return err
	}

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString:  c.PostgresStore.ConnString,
		AutoMigrate: c.PostgresStore.AutoMigrate,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	result, err := bootstrap.Seed(ctx, cfg, bootstrap.Stores{
		Organizations: postgresstore.NewOrganizationStore(pool),
		Profiles:      postgresstore.NewProfileStore(pool),
		Projects:      postgresstore.NewProjectStore(pool),
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("org_id", result.OrgID.String()).
		Int("profiles", result.CreatedProfiles).
		Int("projects", result.CreatedProjects).
		Msg("Seed complete")

	return nil
}
