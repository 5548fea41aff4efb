package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/fotofair/fotofair-go/cmd/cli/internal/commands"
	"github.com/fotofair/fotofair-go/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Log in to the marketplace"`
		Register commands.RegisterCmd `cmd:"" help:"Create a marketplace account"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Log out and invalidate the session"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the current session"`
		Refresh  commands.RefreshCmd  `cmd:"" help:"Rotate the session tokens"`

		ConfigDir string `help:"Configuration directory." env:"FOTOFAIR_CONFIG_DIR"`
		Debug     bool   `help:"Enable debug mode."`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	log.Logger = logger.Setup(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, ConfigDir: cli.ConfigDir})
	cmd.FatalIfErrorf(err)
}
