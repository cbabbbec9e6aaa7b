package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password and display name and creates an
// account. On success the new session is active.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}

	u, err := a.services.Auth.Register(ctx, email, string(password), name)
	if err != nil {
		return err
	}

	a.setSession(true, u.DisplayName)
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.DisplayName)
	return nil
}

// Login prompts the user for credentials and authenticates online. The
// password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.services.Auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	a.setSession(true, name)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the session. Local state is cleared even when the server is
// unreachable.
func (a *App) Logout(ctx context.Context) error {
	err := a.services.Auth.Logout(ctx)
	a.setSession(false, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
