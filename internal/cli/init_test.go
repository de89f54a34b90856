package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveInitDir(t *testing.T) {
	t.Run("project flag takes precedence", func(t *testing.T) {
		dir, err := resolveInitDir("/custom/path", []string{"ignored"})
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/custom/path" {
			t.Fatalf("got %s, want /custom/path", dir)
		}
	})

	t.Run("dot uses cwd", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"."})
		if err != nil {
			t.Fatal(err)
		}
		if dir != cwd {
			t.Fatalf("got %s, want %s", dir, cwd)
		}
	})

	t.Run("named arg creates subdirectory", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"my-project"})
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(cwd, "my-project")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestNextAvailableDir(t *testing.T) {
	base := t.TempDir()

	t.Run("returns reelkit-1 when empty", func(t *testing.T) {
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "reelkit-1")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})

	t.Run("skips existing directories", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(base, "reelkit-1"), 0o755); err != nil {
			t.Fatal(err)
		}
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "reelkit-2")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})

	t.Run("skips multiple existing", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(base, "reelkit-2"), 0o755); err != nil {
			t.Fatal(err)
		}
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "reelkit-3")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestInitScaffold(t *testing.T) {
	dir := initProject(t)

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"REELKIT_RENDER_ENDPOINT", "REELKIT_GCS_BUCKET", "REELKIT_SERVER_ADDR"} {
		if !strings.Contains(string(env), key) {
			t.Errorf(".env template missing %s", key)
		}
	}

	script, err := os.ReadFile(filepath.Join(dir, "script.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(script) != sampleScript {
		t.Fatalf("script.txt = %q, want sample script", script)
	}

	var info struct {
		ID     string `json:"id"`
		FPS    int    `json:"fps"`
		Tracks []struct {
			ID string `json:"id"`
		} `json:"tracks"`
	}
	decode(t, mustExecute(t, "project", "inspect", "--project", dir, "--json"), &info)
	if info.ID != DefaultProjectID || info.FPS <= 0 || len(info.Tracks) == 0 {
		t.Fatalf("stored project = %+v", info)
	}
}

func TestInitKeepsEditedFiles(t *testing.T) {
	dir := initProject(t)
	edited := "一句新的台词\n"
	path := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	mustExecute(t, "init", "--project", dir)
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != edited {
		t.Fatalf("init overwrote script.txt: %q", got)
	}
}
