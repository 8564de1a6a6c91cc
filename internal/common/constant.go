// Package common contains shared constants and sentinel errors used across
// wpkeeper components.
package common

// RESTNamespace is the path, relative to a site's base URL, under which every
// REST endpoint is resolved.
const RESTNamespace = "/wp-json/wp/v2/"

// SitesStorageKey is the metadata key holding the JSON-encoded site registry.
const SitesStorageKey = "wordpressSites"

// VaultSaltStorageKey is the metadata key holding the argon2 salt used to
// seal site secrets when a vault passphrase is configured.
const VaultSaltStorageKey = "vault_salt"

// VaultPassphraseEnv names the environment variable that supplies the vault
// passphrase.
const VaultPassphraseEnv = "WPK_VAULT_PASSPHRASE"

// DefaultPageSize is the per_page value used for collection fetches.
const DefaultPageSize = 100
