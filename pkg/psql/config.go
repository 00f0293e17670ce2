package psql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
)

const AccountsEnvVar = "NLQUERY_PG_ACCOUNTS"

// Runner answers a question. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, question string) pipeline.Outcome
}

type Config struct {
	Logger *slog.Logger
	Runner Runner

	// Accounts maps usernames to cleartext passwords. When empty, any
	// username and password is accepted.
	Accounts map[string]string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Runner == nil {
		return errors.New("runner is required")
	}
	return nil
}

// ParseAccounts parses "user1:pass1,user2:pass2".
func ParseAccounts(s string) (map[string]string, error) {
	accounts := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		username, password, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid account format in %s: %q (expected username:password)", AccountsEnvVar, entry)
		}
		username = strings.TrimSpace(username)
		if username == "" {
			return nil, fmt.Errorf("username cannot be empty in %s: %q", AccountsEnvVar, entry)
		}
		accounts[username] = strings.TrimSpace(password)
	}
	return accounts, nil
}

// AccountsFromEnv reads NLQUERY_PG_ACCOUNTS.
func AccountsFromEnv() (map[string]string, error) {
	return ParseAccounts(os.Getenv(AccountsEnvVar))
}
