package user

import "testing"

func TestRegisterAndAuthenticate(t *testing.T) {
	s := NewService(NewInMemoryRepository(nil))

	created, err := s.Register(User{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Password == "secret123" {
		t.Fatal("password must be stored hashed")
	}
	if created.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, created.Role)
	}

	if _, err := s.Register(User{Username: "alice2", Email: "alice@example.com", Password: "other"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists for duplicate email, got %v", err)
	}

	if _, err := s.Authenticate("alice@example.com", "secret123"); err != nil {
		t.Fatalf("expected authentication to succeed, got %v", err)
	}
	if _, err := s.Authenticate("alice@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := s.Authenticate("nobody@example.com", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
