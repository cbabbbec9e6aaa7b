package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	reportError(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Recipes(ctx context.Context, query string) error
	ShowRecipe(ctx context.Context, id string) error
	NewRecipe(ctx context.Context) error
	DeleteRecipe(ctx context.Context, id string) error
	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
	Favorites(ctx context.Context) error
	UploadPhoto(ctx context.Context, id, path string) error

	Progress(ctx context.Context) error
	AddXP(ctx context.Context, action string, amount int) error
	Streak(ctx context.Context) error
	Milestones(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, milestones, exit"
	helpLoggedIn  = "Available commands: recipes [query], recipe <id>, new, fav <id>, unfav <id>, favs, delete <id>, " +
		"photo <id> <file>, progress, xp <action> <amount>, streak, milestones, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the cookquest CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Handler errors are passed to a.reportError.
// The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cq %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if done := dispatch(ctx, a, cmd, args); done {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) (done bool) {
	var err error

	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}

	case "register":
		err = a.Register(ctx)
	case "login":
		err = a.Login(ctx)
	case "logout":
		err = a.Logout(ctx)

	case "recipes", "l":
		err = a.Recipes(ctx, strings.Join(args, " "))
	case "recipe", "show":
		if len(args) != 1 {
			printlnFn("Usage: recipe <id>")
			return false
		}
		err = a.ShowRecipe(ctx, args[0])
	case "new":
		err = a.NewRecipe(ctx)
	case "delete":
		if len(args) != 1 {
			printlnFn("Usage: delete <id>")
			return false
		}
		err = a.DeleteRecipe(ctx, args[0])
	case "fav":
		if len(args) != 1 {
			printlnFn("Usage: fav <id>")
			return false
		}
		err = a.Favorite(ctx, args[0])
	case "unfav":
		if len(args) != 1 {
			printlnFn("Usage: unfav <id>")
			return false
		}
		err = a.Unfavorite(ctx, args[0])
	case "favs":
		err = a.Favorites(ctx)
	case "photo":
		if len(args) != 2 {
			printlnFn("Usage: photo <id> <file>")
			return false
		}
		err = a.UploadPhoto(ctx, args[0], args[1])

	case "progress":
		err = a.Progress(ctx)
	case "xp":
		amount := 0
		if len(args) == 2 {
			amount, _ = strconv.Atoi(args[1])
		}
		if amount <= 0 {
			printlnFn("Usage: xp <action> <amount>")
			return false
		}
		err = a.AddXP(ctx, args[0], amount)
	case "streak":
		err = a.Streak(ctx)
	case "milestones":
		err = a.Milestones(ctx)

	case "exit", "quit":
		printlnFn("Bye!")
		return true

	default:
		printlnFn("Unknown command:", cmd)
	}

	if err != nil {
		a.reportError(err)
	}
	return false
}
