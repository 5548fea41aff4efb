package commands

import (
	"context"
	"fmt"
)

type RefreshCmd struct{}

func (c *RefreshCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := setup(globals)
	if err != nil {
		return err
	}

	user, err := manager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed, please log in again: %w", err)
	}
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("Session refreshed for %s\n", user.Email)

	if expiresAt := manager.RefreshTokenExpiresAt(); expiresAt != "" {
		fmt.Printf("Session valid until %s\n", expiresAt)
	}

	return nil
}
