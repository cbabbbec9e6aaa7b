package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	} else if a.loggedIn {
		s = "logged-in "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a stored session, starts the connectivity watcher and runs
// the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to cookquest CLI (type 'help' for commands)")

	ok, err := a.services.Auth.IsLoggedIn(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot read stored session", "error", err)
	}
	if ok {
		a.setSession(true, "")
		fmt.Fprintln(a.out, "Restored previous session.")
	} else {
		fmt.Fprintln(a.out, "Not logged in. Use 'login' or 'register'.")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
