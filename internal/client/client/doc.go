// Package client talks to the WordPress REST API of a connected site and
// bootstraps the local registry database.
//
// # Overview
//
// The package provides:
//  1. RestClient, which issues exactly one authenticated request per call to
//     <site>/wp-json/wp/v2/<endpoint>, decodes JSON responses, and reports
//     every failure through a notify.Notifier before returning it.
//  2. Verifier, which checks candidate credentials against users/me without
//     ever returning an error.
//  3. InitDatabase and RunMigrations, which open SQLite or PostgreSQL
//     depending on the DSN and apply the embedded goose migrations.
//
// # Error Handling
//
// Failed requests return *APIError for non-2xx responses. Callers match the
// broad class with errors.Is: ErrUnauthorized (401/403), ErrNotFound (404),
// ErrUnavailable (5xx and transport failures).
package client
