package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type LoginCmd struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Account password. Read from $FOTOFAIR_PASSWORD when omitted." env:"FOTOFAIR_PASSWORD" required:""`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := setup(globals)
	if err != nil {
		return err
	}

	user, err := manager.Login(ctx, c.Email, c.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	log.Info().Str("email", user.Email).Msg("session established")

	fmt.Printf("Logged in as %s (%s)\n", user.DisplayName, describeRole(manager))

	if expiresAt := manager.RefreshTokenExpiresAt(); expiresAt != "" {
		fmt.Printf("Session valid until %s\n", expiresAt)
	}

	return nil
}
