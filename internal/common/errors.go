package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Registry errors.
	ErrNoActiveSite = errors.New("no WordPress site selected")
	ErrSiteNotFound = errors.New("site not found")

	// Validation errors.
	ErrInvalidCredentials = errors.New("invalid connection credentials")
	ErrTokenExpired       = errors.New("token expired")

	// Backup errors.
	ErrBackupsDisabled   = errors.New("backups are not configured")
	ErrUnknownBackupKind = errors.New("unknown backup kind")
)
