package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
)

// describeError turns a handler error into one line for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, cooldown.ErrOnCooldown):
		return err.Error()
	case errors.Is(err, client.ErrSessionExpired):
		return "session expired, please log in again"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	}
	if apiErr, ok := client.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// reportError prints err and drops the local session when the server ended it.
func (a *App) reportError(err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		a.setSession(false, "")
	}
	fmt.Fprintln(a.out, "error:", describeError(err))
}
