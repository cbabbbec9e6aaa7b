// Package cli provides the interactive cookquest command-line client.
//
// It wires configuration, local storage, the API executor and services, and
// an interactive REPL. Typical flow: restore the stored session (or log in),
// start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Login / Register / Logout
//   - Browse, create, favorite and delete recipes, upload recipe photos
//   - XP awards (throttled by the cooldown gate), daily streaks, milestones
//   - Optional Prometheus /metrics endpoint
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp, StartOnlineStatusWatcher, and runREPL for details.
package cli
