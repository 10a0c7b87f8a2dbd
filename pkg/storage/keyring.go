package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the identifier used for all stored tokens in the
	// system keyring.
	keyringService = "jsongraph"

	// hostIndexKey is the keyring entry that holds the list of hosts with
	// stored tokens, since keyrings cannot enumerate their own entries.
	hostIndexKey = "__jsongraph_hosts__"
)

// ErrTokenNotFound is returned when no token is stored for a host.
var ErrTokenNotFound = errors.New("no token stored for host")

// TokenStore keeps bearer tokens for remote document hosts in the system
// keyring: Keychain on macOS, Credential Manager on Windows, Secret Service
// on Linux.
type TokenStore struct {
	service string
}

// NewTokenStore creates a keyring-backed token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{service: keyringService}
}

// SetToken stores the token for a host, replacing any previous one.
func (s *TokenStore) SetToken(host, token string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if err := keyring.Set(s.service, host, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := s.addToIndex(host); err != nil {
		// The token itself is stored; a stale index only affects listing.
		_ = err
	}
	return nil
}

// Token retrieves the stored token for a host.
func (s *TokenStore) Token(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("host cannot be empty")
	}
	value, err := keyring.Get(s.service, host)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTokenNotFound, host)
		}
		return "", fmt.Errorf("failed to retrieve token: %w", err)
	}
	return value, nil
}

// DeleteToken removes the stored token for a host.
func (s *TokenStore) DeleteToken(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if err := keyring.Delete(s.service, host); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTokenNotFound, host)
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if err := s.removeFromIndex(host); err != nil {
		_ = err
	}
	return nil
}

// Hosts returns the hosts that have stored tokens.
func (s *TokenStore) Hosts() ([]string, error) {
	indexJSON, err := keyring.Get(s.service, hostIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to retrieve host index: %w", err)
	}

	var hosts []string
	if err := json.Unmarshal([]byte(indexJSON), &hosts); err != nil {
		return nil, fmt.Errorf("failed to parse host index: %w", err)
	}
	return hosts, nil
}

func (s *TokenStore) addToIndex(host string) error {
	hosts, err := s.Hosts()
	if err != nil {
		return err
	}
	for _, h := range hosts {
		if h == host {
			return nil
		}
	}
	return s.saveIndex(append(hosts, host))
}

func (s *TokenStore) removeFromIndex(host string) error {
	hosts, err := s.Hosts()
	if err != nil {
		return err
	}
	next := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h != host {
			next = append(next, h)
		}
	}
	return s.saveIndex(next)
}

func (s *TokenStore) saveIndex(hosts []string) error {
	indexJSON, err := json.Marshal(hosts)
	if err != nil {
		return fmt.Errorf("failed to marshal host index: %w", err)
	}
	if err := keyring.Set(s.service, hostIndexKey, string(indexJSON)); err != nil {
		return fmt.Errorf("failed to save host index: %w", err)
	}
	return nil
}
