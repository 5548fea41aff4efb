package commands

import (
	"context"
	"fmt"
	"strings"
)

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := setup(globals)
	if err != nil {
		return err
	}

	// Resume from the persisted refresh token, if any.
	manager.Initialize(ctx)

	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	user := manager.User()

	fmt.Printf("%s <%s>\n", user.DisplayName, user.Email)
	if len(user.Roles) > 0 {
		fmt.Printf("Roles: %s (current: %s)\n", strings.Join(user.Roles, ", "), manager.CurrentRole())
	}
	if user.CPF != "" {
		fmt.Printf("CPF: %s\n", user.CPF)
	}
	if profile := user.PhotographerProfile; profile != nil {
		if profile.City != "" {
			fmt.Printf("City: %s\n", profile.City)
		}
		if profile.PortfolioURL != "" {
			fmt.Printf("Portfolio: %s\n", profile.PortfolioURL)
		}
	}
	if expiresAt := manager.RefreshTokenExpiresAt(); expiresAt != "" {
		fmt.Printf("Session valid until %s\n", expiresAt)
	}

	return nil
}
