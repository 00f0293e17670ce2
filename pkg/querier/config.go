package querier

import (
	"fmt"
	"log/slog"

	"github.com/malbeclabs/nlquery/pkg/store"
)

type Config struct {
	Logger *slog.Logger
	DB     store.DB

	// AllowWrites disables the read-only statement guard and the read-only
	// transaction wrapper.
	AllowWrites bool
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if cfg.DB == nil {
		return fmt.Errorf("database is required")
	}
	return nil
}
