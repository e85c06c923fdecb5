package session

import (
	"context"
	"log/slog"

	"sobesednik/internal/credstore"
	"sobesednik/internal/models"
	"sobesednik/internal/rest"
)

func (s *Session) accessToken() (string, bool) {
	s.credMu.RLock()
	defer s.credMu.RUnlock()
	if !s.hasCred {
		return "", false
	}
	return s.cred.AccessToken, true
}

// CurrentUser returns the authenticated profile, if a credential is
// stored.
func (s *Session) CurrentUser() (models.User, bool) {
	s.credMu.RLock()
	defer s.credMu.RUnlock()
	return s.cred.User, s.hasCred
}

// Login exchanges an OAuth callback code for a credential and persists
// it.
func (s *Session) Login(ctx context.Context, code string) error {
	resp, err := s.rest.GoogleCallback(ctx, code)
	if err != nil {
		return err
	}
	return s.storeCredential(resp)
}

// RefreshCredential trades the refresh token for a new pair. The old
// credential stays in place when the exchange fails.
func (s *Session) RefreshCredential(ctx context.Context) error {
	s.credMu.RLock()
	refreshToken := s.cred.RefreshToken
	hasCred := s.hasCred
	s.credMu.RUnlock()
	if !hasCred {
		return models.ErrNotFound
	}

	resp, err := s.rest.RefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.storeCredential(resp)
}

// Logout tells the server, then clears the credential and tears down
// the stream regardless of the server's answer.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.rest.Logout(ctx); err != nil {
		slog.Warn("server logout failed, clearing local credential anyway", "error", err)
	}
	s.conn.SetIntent(false)
	return s.clearCredential()
}

func (s *Session) storeCredential(resp rest.AuthResponse) error {
	cred := credstore.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if err := s.vault.Save(cred); err != nil {
		return err
	}

	s.credMu.Lock()
	s.cred, s.hasCred = cred, true
	s.credMu.Unlock()
	return nil
}

func (s *Session) clearCredential() error {
	s.credMu.Lock()
	s.cred, s.hasCred = credstore.Credential{}, false
	s.credMu.Unlock()
	return s.vault.Clear()
}

// handleUnauthorized fires when any REST call gets a 401: the session
// is over, whatever triggered it. The stream comes down, the credential
// is wiped, and the caller is told to return to the login flow.
func (s *Session) handleUnauthorized() {
	slog.Warn("credential rejected, tearing down session")
	s.conn.SetIntent(false)
	if err := s.clearCredential(); err != nil {
		slog.Error("failed to clear credential vault", "error", err)
	}
	if s.onLoggedOut != nil {
		s.onLoggedOut()
	}
}
