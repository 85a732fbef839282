package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/internal/bridge/store"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/config"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

func TestExecLines(t *testing.T) {
	cfg := config.Default()
	executor, closeFn, err := newExecutor(cfg, "", true, service.TransportCLI, logging.New("test"))
	if err != nil {
		t.Fatalf("newExecutor() error = %v", err)
	}
	defer closeFn()

	input := strings.Join([]string{
		"# setup",
		"AddActor /Game/Meshes/Cube Cube1",
		"",
		"GetFreeName Cube1",
		"Bogus",
	}, "\n")

	var out bytes.Buffer
	if err := execLines(context.Background(), executor, strings.NewReader(input), &out); err != nil {
		t.Fatalf("execLines() error = %v", err)
	}

	want := "Cube1\nCube2\nUnknownCommand\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestOpenJournal(t *testing.T) {
	tests := []struct {
		mode    string
		wantNil bool
		check   func(store.Journal) bool
	}{
		{config.JournalOff, true, nil},
		{config.JournalMemory, false, func(j store.Journal) bool { _, ok := j.(*store.MemoryJournal); return ok }},
		{config.JournalSQLite, false, func(j store.Journal) bool { _, ok := j.(*store.SQLiteJournal); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := config.Default()
			cfg.Journal.Mode = tt.mode
			cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

			journal, err := openJournal(cfg)
			if err != nil {
				t.Fatalf("openJournal() error = %v", err)
			}
			if tt.wantNil {
				if journal != nil {
					t.Errorf("openJournal(%s) = %T, want nil", tt.mode, journal)
				}
				return
			}
			defer journal.Close()
			if !tt.check(journal) {
				t.Errorf("openJournal(%s) = %T", tt.mode, journal)
			}
		})
	}
}

func TestLoadScene_Catalog(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := loadScene(cfg); err == nil {
		t.Error("loadScene() should fail for a missing catalog")
	}

	cfg.Scene.CatalogPath = ""
	host, err := loadScene(cfg)
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	if _, ok := host.Asset("/Game/Meshes/Cube"); !ok {
		t.Error("built-in catalog should resolve /Game/Meshes/Cube")
	}
}

func TestPrintSceneTree(t *testing.T) {
	host := scene.New(nil)
	asset, _ := host.Asset("/Game/Meshes/Cube")
	objects := make(map[string]*scene.Object)
	for _, id := range []string{"Table", "Cup", "Spoon", "Lamp"} {
		obj, err := host.Spawn(asset, id)
		if err != nil {
			t.Fatalf("Spawn(%q) error = %v", id, err)
		}
		objects[id] = obj
	}
	if err := host.Attach(objects["Cup"], objects["Table"]); err != nil {
		t.Fatal(err)
	}
	if err := host.Attach(objects["Spoon"], objects["Cup"]); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	printSceneTree(&out, host, nil, 0)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	want := []struct {
		id     string
		indent int
	}{
		{"Lamp", 0},
		{"Table", 0},
		{"Cup", 2},
		{"Spoon", 4},
	}
	if len(lines) != len(want) {
		t.Fatalf("tree has %d lines, want %d:\n%s", len(lines), len(want), out.String())
	}
	for i, w := range want {
		trimmed := strings.TrimLeft(lines[i], " ")
		if indent := len(lines[i]) - len(trimmed); indent != w.indent {
			t.Errorf("line %d indent = %d, want %d", i, indent, w.indent)
		}
		if id := strings.Fields(trimmed)[0]; id != w.id {
			t.Errorf("line %d = %q, want %s", i, id, w.id)
		}
	}
}
