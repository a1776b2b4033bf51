package commands

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/seedline-dev/seedline/internal/session"
)

func registerBackend(t *testing.T, activeRole string) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/register/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string   `json:"username"`
			Email    string   `json:"email"`
			Password string   `json:"password"`
			Roles    []string `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode register request: %v", err)
		}
		if req.Username == "taken" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string][]string{"username": {"A user with that username already exists."}})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"user_id":  "u-1",
				"username": req.Username,
				"email":    req.Email,
				"roles":    req.Roles,
			},
			"access":  "access-1",
			"refresh": "refresh-1",
		})
	})
	mux.HandleFunc("/api/v1/user/update/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"username":    "ada",
			"email":       "ada@example.com",
			"active_role": activeRole,
		})
	})

	return mux
}

func TestRegisterCommand(t *testing.T) {
	srv := newBackend(t, registerBackend(t, "startup"))
	opts, store := testOptions(t, srv)

	err := execute(NewRegisterCmd(opts...),
		"--email", "ada@example.com",
		"--username", "ada",
		"--password", "correcthorse",
		"--role", "startup",
	)
	if err != nil {
		t.Fatalf("register command failed: %v", err)
	}

	// Registration issues tokens, so the account is signed in right away
	if !store.IsAuthenticated() {
		t.Fatal("expected authenticated session after registration")
	}
	if store.AccessToken() != "access-1" {
		t.Error("issued tokens not stored")
	}
	if store.Role() != session.RoleStartup {
		t.Errorf("role = %q, want %q", store.Role(), session.RoleStartup)
	}
}

func TestRegisterCommand_UsernameTaken(t *testing.T) {
	srv := newBackend(t, registerBackend(t, ""))
	opts, store := testOptions(t, srv)

	err := execute(NewRegisterCmd(opts...),
		"--email", "ada@example.com",
		"--username", "taken",
		"--password", "correcthorse",
	)
	if err == nil {
		t.Fatal("expected error for taken username")
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("error = %q, want field-level detail", err)
	}
	if store.IsAuthenticated() {
		t.Error("expected no session after failed registration")
	}
}

func TestRegisterCommand_ShortPassword(t *testing.T) {
	opts, _ := testOptions(t, guardBackend(t))

	err := execute(NewRegisterCmd(opts...),
		"--email", "ada@example.com",
		"--username", "ada",
		"--password", "short",
	)
	if err == nil {
		t.Fatal("expected error for short password")
	}
	if !strings.Contains(err.Error(), "at least 8 characters") {
		t.Errorf("error = %q", err)
	}
}

func TestRegisterCommand_MissingFields(t *testing.T) {
	opts, _ := testOptions(t, guardBackend(t))

	err := execute(NewRegisterCmd(opts...), "--username", "ada")
	if err == nil || err.Error() != "email is required (use --email)" {
		t.Errorf("error = %v", err)
	}

	err = execute(NewRegisterCmd(opts...), "--email", "ada@example.com")
	if err == nil || err.Error() != "username is required (use --username)" {
		t.Errorf("error = %v", err)
	}
}

func TestRegisterCommand_BadRole(t *testing.T) {
	opts, _ := testOptions(t, guardBackend(t))

	err := execute(NewRegisterCmd(opts...),
		"--email", "ada@example.com",
		"--username", "ada",
		"--password", "correcthorse",
		"--role", "admin",
	)
	if err == nil {
		t.Fatal("expected error for unknown role")
	}

	err = execute(NewRegisterCmd(opts...),
		"--email", "ada@example.com",
		"--username", "ada",
		"--password", "correcthorse",
		"--role", "unassigned",
	)
	if err == nil || err.Error() != "choose startup or investor" {
		t.Errorf("error = %v", err)
	}
}
