package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/client"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errUsage = errors.New("wrong arguments, see help")

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", errUsage
	}
	return v, nil
}

// credentials asks for a password and hands it to fn. The
// password bytes are wiped afterwards.
func (a *App) credentials(fn func(password string) error) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	return fn(string(password))
}

func (a *App) Ping(ctx context.Context, _ []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) AdminLogin(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter super-admin username")
	if err != nil {
		return err
	}
	return a.credentials(func(password string) error {
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()

		session, err := a.client.AdminLogin(ctx, username, password)
		if err != nil {
			return fmt.Errorf("login unsuccessful: %w", err)
		}
		a.loggedIn(username, session)
		return nil
	})
}

func (a *App) Login(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, 0, "Enter email")
	if err != nil {
		return err
	}
	return a.credentials(func(password string) error {
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()

		session, err := a.client.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login unsuccessful: %w", err)
		}
		a.loggedIn(email, session)
		return nil
	})
}

func (a *App) loggedIn(who string, s *client.Session) {
	a.setWho(who)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Login successful, access token valid until %s\n", s.AccessTokenExpiresAt.Local().Format(time.DateTime))
}

func (a *App) Register(ctx context.Context, args []string) error {
	return a.register(ctx, args, a.client.Register)
}

func (a *App) RegisterOrganization(ctx context.Context, args []string) error {
	return a.register(ctx, args, a.client.RegisterOrganization)
}

func (a *App) register(ctx context.Context, args []string, fn func(ctx context.Context, email, password, organizationID string) error) error {
	orgID, err := a.argOrPrompt(args, 0, "Enter organization id")
	if err != nil {
		return err
	}
	email, err := a.argOrPrompt(args, 1, "Enter email")
	if err != nil {
		return err
	}
	return a.credentials(func(password string) error {
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()

		if err := fn(ctx, email, password, orgID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Success! You can log in now.")
		return nil
	})
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tokens rotated, access token valid until %s\n", s.AccessTokenExpiresAt.Local().Format(time.DateTime))
	return nil
}

func (a *App) Logout(_ context.Context, _ []string) error {
	a.client.Logout()
	a.setWho("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
