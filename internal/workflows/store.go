package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/tact/internal/bundle"
	"github.com/PolarWolf314/tact/internal/configs"
	"github.com/PolarWolf314/tact/internal/store"
)

// openStore opens the record database in the user's data directory.
func openStore() (*store.Store, error) {
	s, err := store.Open(configs.UserTactSettings.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	return s, nil
}

// loadConfig returns cfg, or config.toml when cfg is nil.
func loadConfig(cfg *configs.Config) (*configs.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	return configs.LoadConfig()
}

// withLocalUser opens the store, resolves the local profile and runs fn.
func withLocalUser(ctx context.Context, fn func(*store.Store, bundle.User) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.LocalUser(ctx)
	if err != nil {
		return fmt.Errorf("loading local profile: %w", err)
	}
	return fn(s, owner)
}
