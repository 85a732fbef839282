package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
)

func spawn(t *testing.T, s *Scene, id string) *Object {
	t.Helper()
	asset, ok := s.Asset("/Game/Meshes/Cube")
	if !ok {
		t.Fatal("default catalog should resolve /Game/Meshes/Cube")
	}
	obj, err := s.Spawn(asset, id)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	return obj
}

func TestSpawn_HonorsFreeValidName(t *testing.T) {
	s := New(nil)

	obj := spawn(t, s, "Cube1")
	if obj.ID() != "Cube1" || obj.Label() != "Cube1" {
		t.Errorf("spawned %s/%s, want Cube1/Cube1", obj.ID(), obj.Label())
	}
	if obj.Class() != "StaticMeshActor" {
		t.Errorf("Class() = %v, want StaticMeshActor", obj.Class())
	}
	if sel := s.Selection(); len(sel) != 1 || sel[0] != obj {
		t.Error("spawned object should be the only selection")
	}
}

func TestSpawn_FallsBackToClassName(t *testing.T) {
	s := New(nil)
	spawn(t, s, "Cube1")

	tests := []string{"Cube1", "", "None", "bad name"}
	for _, id := range tests {
		obj := spawn(t, s, id)
		if obj.ID() == id {
			t.Errorf("Spawn(%q) kept an unusable name", id)
		}
		if !ValidID(obj.ID()) {
			t.Errorf("Spawn(%q) produced invalid ID %q", id, obj.ID())
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestRename(t *testing.T) {
	s := New(nil)
	a := spawn(t, s, "A")
	spawn(t, s, "B")

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"taken", "B", false},
		{"invalid", "with space", false},
		{"reserved", "none", false},
		{"empty", "", false},
		{"own name", "A", true},
		{"free", "C", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Rename(a, tt.id, true); got != tt.want {
				t.Errorf("Rename(%q, test) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}

	if !s.Rename(a, "C", false) {
		t.Fatal("Rename(C) should succeed")
	}
	if _, ok := s.Find("A"); ok {
		t.Error("old ID should be released")
	}
	if obj, ok := s.Find("C"); !ok || obj != a {
		t.Error("object should be found under its new ID")
	}
	if a.Label() != "A" {
		t.Errorf("Rename must not touch the label, got %q", a.Label())
	}
}

func TestDuplicateSelected(t *testing.T) {
	s := New(nil)
	cube := spawn(t, s, "Cube1")
	s.SetLabel(cube, "My Cube")

	s.SelectNone()
	s.Select(cube)
	clones := s.DuplicateSelected()

	if len(clones) != 1 {
		t.Fatalf("DuplicateSelected() returned %d clones, want 1", len(clones))
	}
	clone := clones[0]
	if clone.ID() != "Cube2" {
		t.Errorf("clone ID = %v, want Cube2", clone.ID())
	}
	if clone.Label() != "My Cube" {
		t.Errorf("clone label = %v, want the source label", clone.Label())
	}
	if sel := s.Selection(); len(sel) != 1 || sel[0] != clone {
		t.Error("clone should become the selection")
	}
}

func TestDeleteSelected_DetachesChildren(t *testing.T) {
	s := New(nil)
	parent := spawn(t, s, "Parent")
	child := spawn(t, s, "Child")

	if err := s.Attach(child, parent); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	s.SelectNone()
	s.Select(parent)
	if n := s.DeleteSelected(); n != 1 {
		t.Errorf("DeleteSelected() = %d, want 1", n)
	}
	if s.Exists("Parent") {
		t.Error("Parent should be gone")
	}
	if child.Parent() != nil {
		t.Error("child of a deleted object should be detached")
	}
	if len(s.Selection()) != 0 {
		t.Error("selection should be empty after delete")
	}
}

func TestAttach_RefusesCycle(t *testing.T) {
	s := New(nil)
	a := spawn(t, s, "A")
	b := spawn(t, s, "B")

	if err := s.Attach(b, a); err != nil {
		t.Fatalf("Attach(B, A) error = %v", err)
	}
	err := s.Attach(a, b)
	if err == nil {
		t.Fatal("Attach(A, B) should refuse a cycle")
	}
	if !mdwerror.HasCode(err, mdwerror.CodeHostRefused) {
		t.Errorf("error code = %v, want %v", mdwerror.GetCode(err), mdwerror.CodeHostRefused)
	}
	if a.Parent() != nil {
		t.Error("refused attach must not change the parent")
	}

	if got := s.Children(a); len(got) != 1 || got[0] != b {
		t.Errorf("Children(A) = %v, want [B]", got)
	}
	if !s.Detach(b) {
		t.Error("Detach(B) should report an existing link")
	}
	if s.Detach(b) {
		t.Error("second Detach(B) should be a no-op")
	}
}

func TestIncrementSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cube", "Cube1"},
		{"Cube1", "Cube2"},
		{"Cube007", "Cube008"},
		{"Cube099", "Cube100"},
		{"Cube999", "Cube1000"},
		{"Chair_9", "Chair_10"},
		{"X9223372036854775807", "X9223372036854775808"},
		{"99999999999999999999", "100000000000000000000"},
		{"", "1"},
	}
	for _, tt := range tests {
		if got := IncrementSuffix(tt.in); got != tt.want {
			t.Errorf("IncrementSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDuplicateSelected_KeepsZeroPadding(t *testing.T) {
	s := New(nil)
	src := spawn(t, s, "Crate007")
	s.Select(src)

	clones := s.DuplicateSelected()
	if len(clones) != 1 || clones[0].ID() != "Crate008" {
		t.Errorf("DuplicateSelected() = %v, want [Crate008]", clones)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"Cube_1", true},
		{"", false},
		{"None", false},
		{"NONE", false},
		{"a.b", false},
		{"tab\there", false},
		{"quote\"", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := NewCatalog(CatalogFile{
		Assets:   []Asset{{Path: "/Game/Meshes/Special", Class: "SpecialActor"}},
		Prefixes: []PrefixRule{{Prefix: "/Game/", Class: "GenericActor"}, {Prefix: "/Game/Meshes/", Class: "StaticMeshActor"}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tests := []struct {
		path  string
		class string
		found bool
	}{
		{"/Game/Meshes/Special", "SpecialActor", true},
		{"/Game/Meshes/Cube", "StaticMeshActor", true},
		{"/Game/Other/Thing", "GenericActor", true},
		{"/Game/Meshes/", "", false},
		{"/Engine/Thing", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		asset, ok := c.Lookup(tt.path)
		if ok != tt.found || asset.Class != tt.class {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.path, asset.Class, ok, tt.class, tt.found)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `assets:
  - path: /Game/Props/Chair
    class: ChairActor
prefixes:
  - prefix: /Game/Props/
    class: StaticMeshActor
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if asset, ok := c.Lookup("/Game/Props/Chair"); !ok || asset.Class != "ChairActor" {
		t.Errorf("Lookup(chair) = %v, %v", asset, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	dir := t.TempDir()

	missingClass := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(missingClass, []byte("assets:\n  - path: /Game/X\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(missingClass); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("missing class error = %v, want INVALID_CONFIG", err)
	}

	if _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestCatalogWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("prefixes: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Catalog, 16)
	watcher := NewCatalogWatcher(path, func(c *Catalog) {
		select {
		case reloaded <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	content := "prefixes:\n  - prefix: /Game/Props/\n    class: PropActor\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// A save can surface as several events; wait for the complete file
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-reloaded:
			if _, ok := c.Lookup("/Game/Props/Lamp"); ok {
				return
			}
		case <-timeout:
			t.Fatal("catalog was not reloaded")
		}
	}
}
