package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourglasshq/hourglass/internal/config"
	"github.com/hourglasshq/hourglass/internal/db"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// cliContext bundles the open database with the acting organization and
// member configured via `hourglass org`.
type cliContext struct {
	Config       *config.Config
	DB           *db.DB
	Store        *store.Store
	Organization model.Organization
	Member       model.Member
	User         model.User
}

// openDB opens the configured database without requiring an acting context.
func openDB() (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	database, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, database, nil
}

// openContext opens the database and resolves the acting organization,
// user and membership from the saved config.
func openContext(ctx context.Context) (*cliContext, error) {
	cfg, database, err := openDB()
	if err != nil {
		return nil, err
	}

	st := store.New(database)
	cc := &cliContext{Config: cfg, DB: database, Store: st}

	if cfg.Organization == "" || cfg.Email == "" {
		database.Close()
		return nil, fmt.Errorf("no organization configured; run 'hourglass org' first")
	}

	org, err := st.GetOrganization(ctx, cfg.Organization)
	if errors.Is(err, store.ErrNotFound) {
		database.Close()
		return nil, fmt.Errorf("organization %q not found; run 'hourglass org' again", cfg.Organization)
	}
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	user, err := st.GetUserByEmail(ctx, cfg.Email)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load user %q: %w", cfg.Email, err)
	}

	member, err := st.GetMemberByUser(ctx, org.ID, user.ID)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("%s is not a member of %s: %w", user.Email, org.Name, err)
	}

	cc.Organization = org
	cc.User = user
	cc.Member = member
	return cc, nil
}

// Close closes the underlying database connection.
func (cc *cliContext) Close() {
	_ = cc.DB.Close()
}
