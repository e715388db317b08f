package store

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

// UserStore maps caller identity to profile.
type UserStore struct {
	mu    sync.Mutex
	users map[model.Identity]model.UserProfile
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[model.Identity]model.UserProfile)}
}

func (u *UserStore) getOrCreate(id model.Identity) model.UserProfile {
	p, ok := u.users[id]
	if !ok {
		p = model.NewUserProfile(id)
	}
	return p
}

// Get returns a copy of the caller's profile, creating a fresh one if
// absent (read-only lookups never materialize one into the store).
func (u *UserStore) Get(id model.Identity) model.UserProfile {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.getOrCreate(id)
}

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

const minEncryptedKeyHexLen = 56

// SetLegacyPlaintextKey implements set_my_anthropic_key: requires the
// string begin with "sk-"; stores it and leaves the encrypted envelope
// untouched (legacy path).
func (u *UserStore) SetLegacyPlaintextKey(id model.Identity, plaintext string) error {
	if !strings.HasPrefix(plaintext, "sk-") {
		return apierr.Validation("key must begin with sk-")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	key := plaintext
	p.LegacyPlaintextKey = &key
	p.LastActive = time.Now().UTC()
	u.users[id] = p
	return nil
}

// SetEncryptedKey implements set_my_encrypted_key: requires >=56 hex
// digits, all ASCII hex; clears any legacy plaintext key.
func (u *UserStore) SetEncryptedKey(id model.Identity, hex string) error {
	if len(hex) < minEncryptedKeyHexLen || !hexPattern.MatchString(hex) {
		return apierr.Validation("encrypted key must be at least 56 hex digits")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	envelope := hex
	p.EncryptedKeyEnvelope = &envelope
	p.LegacyPlaintextKey = nil
	p.LastActive = time.Now().UTC()
	u.users[id] = p
	return nil
}

// RemoveLegacyPlaintextKey clears the legacy plaintext key only; the
// encrypted envelope, if any, is unaffected.
func (u *UserStore) RemoveLegacyPlaintextKey(id model.Identity) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	p.LegacyPlaintextKey = nil
	p.LastActive = time.Now().UTC()
	u.users[id] = p
}

// HasAnthropicKey reports whether either key form is present.
func (u *UserStore) HasAnthropicKey(id model.Identity) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	return p.HasAnthropicKey()
}

// EncryptedEnvelope returns the caller's stored encrypted envelope, or
// ("", false) if none is set.
func (u *UserStore) EncryptedEnvelope(id model.Identity) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	if p.EncryptedKeyEnvelope == nil {
		return "", false
	}
	return *p.EncryptedKeyEnvelope, true
}

// RecordAnalysisPerformed increments the caller's analyses_performed
// counter and bumps last_active.
func (u *UserStore) RecordAnalysisPerformed(id model.Identity) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.getOrCreate(id)
	p.AnalysesPerformed++
	p.LastActive = time.Now().UTC()
	u.users[id] = p
}

// All returns a copy of every profile, used only by the snapshot/migration
// path.
func (u *UserStore) All() map[model.Identity]model.UserProfile {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[model.Identity]model.UserProfile, len(u.users))
	for k, v := range u.users {
		out[k] = v
	}
	return out
}

// LoadAll replaces the entire user map, used only by snapshot restore.
func (u *UserStore) LoadAll(users map[model.Identity]model.UserProfile) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = users
}
