package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fotofair/fotofair-go/internal/api"
	"github.com/fotofair/fotofair-go/internal/config"
	"github.com/fotofair/fotofair-go/internal/session"
	"github.com/fotofair/fotofair-go/internal/store"
)

type Globals struct {
	Debug     bool
	Version   string
	ConfigDir string
}

// setup loads the CLI config and wires the session manager with the
// configured storage backend.
func setup(globals *Globals) (*session.Manager, *config.Config, error) {
	cfg, err := config.Load(globals.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	var st store.Store
	switch cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		st = store.NewRedis(client, cfg.RedisPrefix)
	default:
		st, err = store.NewFile(cfg.BaseDir())
		if err != nil {
			return nil, nil, err
		}
	}

	endpoint := api.New(api.Config{
		ServerURL: cfg.ServerURL,
		ClientID:  cfg.InstallationID,
	})

	log.Debug().Str("server", cfg.ServerURL).Str("store", cfg.Store).Msg("session manager configured")

	return session.New(endpoint, st, log.Logger), cfg, nil
}

// describeRole renders the role line shown after login and in whoami.
func describeRole(manager *session.Manager) string {
	role := manager.CurrentRole()
	if role == "" {
		return "no role assigned"
	}
	return fmt.Sprintf("role %s", role)
}
