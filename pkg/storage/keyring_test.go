package storage

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestTokenStore(t *testing.T) {
	keyring.MockInit()
	s := NewTokenStore()

	t.Run("set and get", func(t *testing.T) {
		if err := s.SetToken("api.example.com", "tok-123"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		got, err := s.Token("api.example.com")
		if err != nil || got != "tok-123" {
			t.Errorf("Token() = %q, %v", got, err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.SetToken("api.example.com", "tok-456"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		got, _ := s.Token("api.example.com")
		if got != "tok-456" {
			t.Errorf("Token() = %q, want tok-456", got)
		}
	})

	t.Run("hosts listing", func(t *testing.T) {
		if err := s.SetToken("other.example.com", "tok-789"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		hosts, err := s.Hosts()
		if err != nil {
			t.Fatalf("Hosts() error = %v", err)
		}
		if len(hosts) != 2 {
			t.Errorf("Hosts() = %v, want 2 entries", hosts)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.DeleteToken("other.example.com"); err != nil {
			t.Fatalf("DeleteToken() error = %v", err)
		}
		if _, err := s.Token("other.example.com"); !errors.Is(err, ErrTokenNotFound) {
			t.Errorf("Token() error = %v, want ErrTokenNotFound", err)
		}
		hosts, _ := s.Hosts()
		if len(hosts) != 1 {
			t.Errorf("Hosts() after delete = %v, want 1 entry", hosts)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		if _, err := s.Token("never.example.com"); !errors.Is(err, ErrTokenNotFound) {
			t.Errorf("Token() error = %v, want ErrTokenNotFound", err)
		}
		if err := s.DeleteToken("never.example.com"); !errors.Is(err, ErrTokenNotFound) {
			t.Errorf("DeleteToken() error = %v, want ErrTokenNotFound", err)
		}
	})

	t.Run("empty host rejected", func(t *testing.T) {
		if err := s.SetToken("", "x"); err == nil {
			t.Error("SetToken with empty host must error")
		}
		if _, err := s.Token(""); err == nil {
			t.Error("Token with empty host must error")
		}
	})
}
