package models

import "time"

// BackupKind selects which mirrors go into a snapshot.
type BackupKind string

const (
	BackupFull    BackupKind = "full"
	BackupContent BackupKind = "content"
	BackupUsers   BackupKind = "users"
)

func (k BackupKind) Valid() bool {
	switch k {
	case BackupFull, BackupContent, BackupUsers:
		return true
	}
	return false
}

type BackupStatus string

const (
	BackupCompleted BackupStatus = "completed"
	BackupFailed    BackupStatus = "failed"
)

// Backup records one snapshot uploaded to object storage.
type Backup struct {
	ID        string
	SiteID    string
	SiteName  string
	Kind      BackupKind
	ObjectKey string
	SizeBytes int64
	Status    BackupStatus
	CreatedAt time.Time
}

// Snapshot is the archive body written for a backup.
type Snapshot struct {
	Site      string     `json:"site"`
	URL       string     `json:"url"`
	Kind      BackupKind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	Posts     []Post     `json:"posts,omitempty"`
	Pages     []Page     `json:"pages,omitempty"`
	Users     []User     `json:"users,omitempty"`
	Plugins   []Plugin   `json:"plugins,omitempty"`
	Themes    []Theme    `json:"themes,omitempty"`
	Courses   []Course   `json:"courses,omitempty"`
	Students  []Student  `json:"students,omitempty"`
}
