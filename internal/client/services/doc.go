// Package services holds the application services behind the CLI: the site
// registry and active-site selector, the resource synchronizer with its LMS
// fallback chains, backups to object storage, and background watchers.
//
// Services are explicit objects created once in the CLI app and shared by the
// REPL and the watchers. They are safe for concurrent use.
package services
