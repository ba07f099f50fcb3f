package espnauth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRefresher_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewRefresher(RefresherConfig{Email: "a@b.c", Password: "x"}, nil); err == nil {
		t.Fatal("expected error for missing league id")
	}
	if _, err := NewRefresher(RefresherConfig{LeagueID: "123"}, nil); err == nil {
		t.Fatal("expected error for missing credentials")
	}

	r, err := NewRefresher(RefresherConfig{Email: "a@b.c", Password: "x", LeagueID: "123"}, nil)
	if err != nil {
		t.Fatalf("NewRefresher error: %v", err)
	}
	if r.cfg.Timeout <= 0 || r.cfg.EnvFile != ".env" {
		t.Fatalf("defaults not applied: %+v", r.cfg)
	}
}

func TestWriteEnvFile_ReplacesExistingLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	seed := "LEAGUE_ID=123\nESPN_SWID={OLD}\nESPN_S2=old-value\nOTHER=keep\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := NewRefresher(RefresherConfig{Email: "a@b.c", Password: "x", LeagueID: "123", EnvFile: path}, nil)
	if err != nil {
		t.Fatalf("NewRefresher error: %v", err)
	}

	creds := Credentials{SWID: "{NEW}", S2: "new-value", FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := r.WriteEnvFile(creds); err != nil {
		t.Fatalf("WriteEnvFile error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	content := string(got)

	if !strings.Contains(content, "ESPN_SWID={NEW}") {
		t.Fatalf("SWID not replaced: %s", content)
	}
	if !strings.Contains(content, "ESPN_S2=new-value") {
		t.Fatalf("S2 not replaced: %s", content)
	}
	if strings.Contains(content, "old-value") || strings.Contains(content, "{OLD}") {
		t.Fatalf("old credentials survived: %s", content)
	}
	if !strings.Contains(content, "OTHER=keep") || !strings.Contains(content, "LEAGUE_ID=123") {
		t.Fatalf("unrelated lines were lost: %s", content)
	}
	if !strings.Contains(content, "ESPN_CREDENTIALS_UPDATED=2026-01-02T03:04:05Z") {
		t.Fatalf("timestamp line missing: %s", content)
	}
}

func TestWriteEnvFile_AppendsMissingLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LEAGUE_ID=123"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := NewRefresher(RefresherConfig{Email: "a@b.c", Password: "x", LeagueID: "123", EnvFile: path}, nil)
	if err != nil {
		t.Fatalf("NewRefresher error: %v", err)
	}

	creds := Credentials{SWID: "{NEW}", S2: "new-value", FetchedAt: time.Now().UTC()}
	if err := r.WriteEnvFile(creds); err != nil {
		t.Fatalf("WriteEnvFile error: %v", err)
	}

	got, _ := os.ReadFile(path)
	if !strings.Contains(string(got), "ESPN_SWID={NEW}\nESPN_S2=new-value\n") {
		t.Fatalf("credential lines not appended: %s", got)
	}
}
