package commands

import (
	"context"
	"fmt"

	"github.com/fotofair/fotofair-go/internal/api"
	"github.com/fotofair/fotofair-go/internal/session"
)

type RegisterCmd struct {
	Email       string `help:"Account email." required:""`
	Password    string `help:"Account password. Read from $FOTOFAIR_PASSWORD when omitted." env:"FOTOFAIR_PASSWORD" required:""`
	Name        string `help:"Display name." required:""`
	Role        string `help:"Initial role." enum:"user,photographer" default:"user"`
	CPF         string `help:"Brazilian CPF, punctuated or bare." optional:""`
	AcceptTerms bool   `help:"Accept the marketplace terms of service." required:""`

	Bio       string `help:"Photographer bio." optional:""`
	Portfolio string `help:"Photographer portfolio URL." optional:""`
	Phone     string `help:"Photographer contact phone." optional:""`
	City      string `help:"Photographer home city." optional:""`
}

func (c *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	manager, _, err := setup(globals)
	if err != nil {
		return err
	}

	req := api.RegisterRequest{
		Email:         c.Email,
		Password:      c.Password,
		DisplayName:   c.Name,
		Role:          c.Role,
		CPF:           c.CPF,
		AcceptedTerms: c.AcceptTerms,
	}

	if c.Role == session.RolePhotographer {
		req.PhotographerProfile = &api.PhotographerProfile{
			Bio:          c.Bio,
			PortfolioURL: c.Portfolio,
			Phone:        c.Phone,
			City:         c.City,
		}
	}

	user, err := manager.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Welcome %s, your account is ready (%s)\n", user.DisplayName, describeRole(manager))

	return nil
}
