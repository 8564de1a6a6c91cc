// Package store persists the site registry under a single metadata key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
)

const saltSize = 16

var (
	errNoPassphrase = errors.New("sealed secret found but no vault passphrase is configured")

	// ErrRegistryLocked is returned by Save after Load could not read the
	// stored registry, so the stored copy is never replaced blindly.
	ErrRegistryLocked = errors.New("stored site registry could not be opened")
)

// CredentialStore loads and saves the full list of sites. When a passphrase
// is set, application passwords and tokens are sealed at rest.
type CredentialStore struct {
	repo       metadata.Repository
	log        logging.Logger
	passphrase []byte

	mu     sync.Mutex
	key    []byte
	locked error

	warnPlain sync.Once
}

func NewCredentialStore(repo metadata.Repository, log logging.Logger, passphrase string) *CredentialStore {
	if log == nil {
		log = logging.Discard()
	}
	s := &CredentialStore{repo: repo, log: log}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s
}

// Load returns the stored registry. Missing or unreadable data yields an
// empty list and a warning, never an error. When the registry cannot be read
// or its secrets cannot be opened, later saves are refused.
func (s *CredentialStore) Load(ctx context.Context) []models.Site {
	blob, err := s.repo.Get(ctx, common.SitesStorageKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read site registry", "error", err)
		s.setLocked(err)
		return []models.Site{}
	}
	s.setLocked(nil)
	if len(blob) == 0 {
		return []models.Site{}
	}

	var sites []models.Site
	if err := json.Unmarshal(blob, &sites); err != nil {
		s.log.Warn(ctx, "stored site registry is malformed, starting empty", "error", err)
		return []models.Site{}
	}
	if sites == nil {
		return []models.Site{}
	}

	for i := range sites {
		if err := s.open(ctx, &sites[i]); err != nil {
			s.log.Warn(ctx, "failed to open site secrets, starting empty and read-only", "site", sites[i].Name, "error", err)
			s.setLocked(err)
			return []models.Site{}
		}
	}
	return sites
}

// Save replaces the stored registry with sites.
// It fails with ErrRegistryLocked when the last Load could not read or open
// the stored registry.
func (s *CredentialStore) Save(ctx context.Context, sites []models.Site) error {
	s.mu.Lock()
	locked := s.locked
	s.mu.Unlock()
	if locked != nil {
		return fmt.Errorf("%w: %v", ErrRegistryLocked, locked)
	}

	out := make([]models.Site, len(sites))
	copy(out, sites)

	for i := range out {
		if err := s.seal(ctx, &out[i]); err != nil {
			return fmt.Errorf("seal secrets of %s: %w", out[i].Name, err)
		}
	}

	blob, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode site registry: %w", err)
	}
	if err := s.repo.Set(ctx, common.SitesStorageKey, blob); err != nil {
		return fmt.Errorf("save site registry: %w", err)
	}
	return nil
}

func (s *CredentialStore) setLocked(err error) {
	s.mu.Lock()
	s.locked = err
	s.mu.Unlock()
}

func (s *CredentialStore) seal(ctx context.Context, site *models.Site) error {
	if s.passphrase == nil {
		if site.ApplicationPassword != "" || site.Token != "" {
			s.warnPlain.Do(func() {
				s.log.Warn(ctx, "site secrets are stored unencrypted; set "+common.VaultPassphraseEnv+" to seal them")
			})
		}
		return nil
	}

	key, err := s.vaultKey(ctx)
	if err != nil {
		return err
	}
	if site.ApplicationPassword, err = cryptox.Seal(site.ApplicationPassword, key); err != nil {
		return err
	}
	if site.Token, err = cryptox.Seal(site.Token, key); err != nil {
		return err
	}
	return nil
}

func (s *CredentialStore) open(ctx context.Context, site *models.Site) error {
	sealed := cryptox.IsSealed(site.ApplicationPassword) || cryptox.IsSealed(site.Token)
	if !sealed {
		return nil
	}
	if s.passphrase == nil {
		return errNoPassphrase
	}

	key, err := s.vaultKey(ctx)
	if err != nil {
		return err
	}
	if site.ApplicationPassword, err = cryptox.Open(site.ApplicationPassword, key); err != nil {
		return err
	}
	if site.Token, err = cryptox.Open(site.Token, key); err != nil {
		return err
	}
	return nil
}

// vaultKey derives the sealing key once, creating the salt on first use.
func (s *CredentialStore) vaultKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	salt, err := s.repo.Get(ctx, common.VaultSaltStorageKey)
	if err != nil {
		return nil, fmt.Errorf("read vault salt: %w", err)
	}
	if len(salt) == 0 {
		salt = common.GenerateRandByteArray(saltSize)
		if err := s.repo.Set(ctx, common.VaultSaltStorageKey, salt); err != nil {
			return nil, fmt.Errorf("store vault salt: %w", err)
		}
	}

	s.key = cryptox.DeriveKey(s.passphrase, salt)
	return s.key, nil
}
