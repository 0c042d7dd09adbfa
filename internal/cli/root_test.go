package cli

import (
	"io"
	"testing"

	"github.com/spookydecs/circuitry/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	orig := [3]string{buildinfo.Version, buildinfo.Commit, buildinfo.Date}
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = orig[0], orig[1], orig[2] })

	SetVersion("1.0.0", "abc123", "2025-10-31")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2025-10-31" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2025-10-31")
	}
}

func TestSetVersionEmptyKeepsValues(t *testing.T) {
	orig := [3]string{buildinfo.Version, buildinfo.Commit, buildinfo.Date}
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = orig[0], orig[1], orig[2] })

	SetVersion("v2", "", "")

	if buildinfo.Version != "v2" {
		t.Errorf("Version = %q, want v2", buildinfo.Version)
	}
	if buildinfo.Commit != orig[1] {
		t.Errorf("Commit changed to %q", buildinfo.Commit)
	}
	if buildinfo.Date != orig[2] {
		t.Errorf("Date changed to %q", buildinfo.Date)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"graph", "ports", "open", "connect", "disconnect", "check", "import", "registry", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "metrics-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}
