package commands

import (
	"context"
	"fmt"
)

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := setup(globals)
	if err != nil {
		return err
	}

	// Local state is always cleared; only unexpected server errors
	// propagate, for diagnostics.
	if err := manager.Logout(ctx); err != nil {
		fmt.Println("Logged out locally, but the server reported an error")
		return err
	}

	fmt.Println("Logged out")

	return nil
}
