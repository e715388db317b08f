package registry

import (
	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

// SetLegacyKey implements set_my_anthropic_key.
func (s *Service) SetLegacyKey(caller model.Caller, plaintext string) error {
	if !caller.Authenticated() {
		return apierr.Unauthorized(apierr.MustAuthenticated)
	}
	return s.Users.SetLegacyPlaintextKey(caller.Identity, plaintext)
}

// SetEncryptedKey implements set_my_encrypted_key.
func (s *Service) SetEncryptedKey(caller model.Caller, hex string) error {
	if !caller.Authenticated() {
		return apierr.Unauthorized(apierr.MustAuthenticated)
	}
	return s.Users.SetEncryptedKey(caller.Identity, hex)
}

// RemoveLegacyKey implements remove_my_anthropic_key.
func (s *Service) RemoveLegacyKey(caller model.Caller) error {
	if !caller.Authenticated() {
		return apierr.Unauthorized(apierr.MustAuthenticated)
	}
	s.Users.RemoveLegacyPlaintextKey(caller.Identity)
	return nil
}

// HasKey implements has_anthropic_key.
func (s *Service) HasKey(caller model.Caller) (bool, error) {
	if !caller.Authenticated() {
		return false, apierr.Unauthorized(apierr.MustAuthenticated)
	}
	return s.Users.HasAnthropicKey(caller.Identity), nil
}

// GetProfile implements get_my_profile.
func (s *Service) GetProfile(caller model.Caller) (model.UserProfile, error) {
	if !caller.Authenticated() {
		return model.UserProfile{}, apierr.Unauthorized(apierr.MustAuthenticated)
	}
	return s.Users.Get(caller.Identity), nil
}
