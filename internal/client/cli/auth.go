package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/policysignoff/internal/client/session"
	"github.com/dmitrijs2005/policysignoff/internal/common"
)

// Prompt seams, replaced in tests.
var (
	readLine      = ReadLine
	readParagraph = ReadParagraph
	readSecret    = ReadSecret
)

func (a *App) promptIfEmpty(v *string, label string) error {
	if *v != "" {
		return nil
	}
	s, err := readLine(a.reader, a.out, label)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.promptIfEmpty(name, "Name"); err != nil {
		return err
	}
	if err := a.promptIfEmpty(email, "Email"); err != nil {
		return err
	}

	password, err := readSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.client.Register(ctx, *name, *email, string(password))
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "Registered %s <%s>. Run 'policyctl login' next.\n", u.Name, u.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.promptIfEmpty(email, "Email"); err != nil {
		return err
	}

	password, err := readSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pair, err := a.client.Login(ctx, *email, string(password))
	if err != nil {
		return describe(err)
	}

	if err := a.store.Save(ctx, session.Session{
		Server:       a.config.ServerURL,
		Email:        *email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// logout revokes the refresh token and forgets the local session even when
// the server is unreachable or the token has already expired.
func (a *App) logout(ctx context.Context, _ []string) error {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if !sess.LoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	if err := a.client.Logout(ctx); err != nil && !errors.Is(err, common.ErrUnauthorized) {
		fmt.Fprintf(a.out, "warning: server logout failed: %v\n", err)
	}

	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u, err := a.client.Me(ctx)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d) on %s\n", u.Name, u.Email, u.ID, a.config.ServerURL)
	return nil
}

// describe turns API errors into messages a terminal user can act on.
func describe(err error) error {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := "invalid input:"
		for _, field := range sortedKeys(ve.Fields) {
			for _, m := range ve.Fields[field] {
				msg += "\n  " + field + ": " + m
			}
		}
		return errors.New(msg)
	case errors.Is(err, common.ErrUnauthorized):
		return fmt.Errorf("not logged in or session expired, run 'policyctl login': %w", err)
	case errors.Is(err, common.ErrForbidden):
		return fmt.Errorf("only the policy creator can do that: %w", err)
	case errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("not found: %w", err)
	}
	return err
}
