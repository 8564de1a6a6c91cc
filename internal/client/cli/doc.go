// Package cli provides the interactive wpk console.
//
// It wires configuration, the local registry database, the WordPress REST
// client and the services built on it, then runs a REPL until the user
// exits. A background watcher keeps the connectivity flag of the active
// site current, and backups run on a schedule when one is configured.
//
// The REPL is started via App.Run(ctx). See runREPL for the command loop and
// commandTable for the available commands.
package cli
