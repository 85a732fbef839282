package naming

import (
	"fmt"
	"testing"

	"github.com/msto63/scenebridge/internal/scene"
)

func newScene(t *testing.T, ids ...string) *scene.Scene {
	t.Helper()
	s := scene.New(nil)
	asset, _ := s.Asset("/Game/Meshes/Cube")
	for _, id := range ids {
		obj, err := s.Spawn(asset, id)
		if err != nil {
			t.Fatalf("Spawn(%q) error = %v", id, err)
		}
		if obj.ID() != id {
			t.Fatalf("Spawn(%q) got ID %q", id, obj.ID())
		}
	}
	return s
}

func TestFreeName(t *testing.T) {
	r := NewResolver(newScene(t, "Cube", "Cube1", "Chair_5", "Lamp9", "Crate007", "X9223372036854775807", "Box99", "Box100"))

	tests := []struct {
		desired string
		want    string
	}{
		{"Table", "Table"},
		{"Cube", "Cube2"},
		{"Cube1", "Cube2"},
		{"Chair_5", "Chair_6"},
		{"Lamp9", "Lamp10"},
		{"Crate007", "Crate008"},
		{"X9223372036854775807", "X9223372036854775808"},
		{"Box99", "Box101"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.desired, func(t *testing.T) {
			if got := r.FreeName(tt.desired); got != tt.want {
				t.Errorf("FreeName(%q) = %q, want %q", tt.desired, got, tt.want)
			}
		})
	}
}

func TestFreeName_DoesNotReserve(t *testing.T) {
	s := newScene(t, "Cube")
	r := NewResolver(s)

	first := r.FreeName("Cube")
	second := r.FreeName("Cube")
	if first != second {
		t.Errorf("FreeName is not deterministic: %q then %q", first, second)
	}
	if s.Exists(first) {
		t.Error("FreeName must not create anything")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Cube", "Cube"},
		{"my cube", "mycube"},
		{"a.b:c/d", "abcd"},
		{"(weird)[name]{x}", "weirdnamex"},
		{"tab\tnew\nline", "tabnewline"},
		{"...", ""},
		{"   ", ""},
		{"Grüße", "Grüße"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.raw); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(newScene(t, "Cube"))

	if obj, ok := r.Resolve("Cube"); !ok || obj.ID() != "Cube" {
		t.Error("Resolve(Cube) should find the object")
	}
	for _, name := range []string{"cube", "Ghost", ""} {
		if _, ok := r.Resolve(name); ok {
			t.Errorf("Resolve(%q) should not find anything", name)
		}
	}
}

func TestRename(t *testing.T) {
	tests := []struct {
		name    string
		desired string
		want    string
	}{
		{"free name", "Chair", "Chair"},
		{"sanitized", "my chair!", "mychair"},
		{"reserved token", "None", DefaultGeneratedName},
		{"reserved after sanitizing", "N.o.n.e", DefaultGeneratedName},
		{"taken name", "Other", "Cube"},
		{"same name", "Cube", "Cube"},
		{"strips to empty", "...", "Cube"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, "Cube", "Other")
			obj, _ := s.Find("Cube")
			s.SetLabel(obj, "Label before")
			syncer := NewSynchronizer(s, "", nil)

			got := syncer.Rename(obj, tt.desired)
			if got != tt.want {
				t.Errorf("Rename(%q) = %q, want %q", tt.desired, got, tt.want)
			}
			if obj.ID() != got {
				t.Errorf("object ID = %q, returned %q", obj.ID(), got)
			}

			renamed := got != "Cube"
			if renamed && obj.Label() != got {
				t.Errorf("label = %q, want %q after rename", obj.Label(), got)
			}
			if !renamed && obj.Label() != "Label before" {
				t.Errorf("no-op rename touched the label: %q", obj.Label())
			}
		})
	}
}

func TestRename_CustomGeneratedName(t *testing.T) {
	s := newScene(t, "Cube")
	obj, _ := s.Find("Cube")

	syncer := NewSynchronizer(s, "Unnamed", nil)
	if got := syncer.Rename(obj, "none"); got != "Unnamed" {
		t.Errorf("Rename(none) = %q, want Unnamed", got)
	}
	if syncer.GeneratedName() != "Unnamed" {
		t.Errorf("GeneratedName() = %q, want Unnamed", syncer.GeneratedName())
	}
}

// refusingContext validates names but refuses to commit them
type refusingContext struct {
	*scene.Scene
}

func (r refusingContext) Rename(obj *scene.Object, id string, test bool) bool {
	if test {
		return r.Scene.Rename(obj, id, true)
	}
	return false
}

func TestRename_CommitFailure(t *testing.T) {
	s := newScene(t, "Cube")
	obj, _ := s.Find("Cube")
	s.SetLabel(obj, "keep")

	syncer := NewSynchronizer(refusingContext{s}, "", nil)
	if got := syncer.Rename(obj, "Chair"); got != "Cube" {
		t.Errorf("Rename() = %q, want Cube", got)
	}
	if obj.Label() != "keep" {
		t.Errorf("label = %q, want keep", obj.Label())
	}
}

func TestRename_UniquenessAcrossSequence(t *testing.T) {
	s := newScene(t)
	syncer := NewSynchronizer(s, "", nil)
	asset, _ := s.Asset("/Game/Meshes/Cube")

	for i := 0; i < 20; i++ {
		obj, err := s.Spawn(asset, "")
		if err != nil {
			t.Fatal(err)
		}
		syncer.Rename(obj, fmt.Sprintf("Item%d", i%4))
	}

	seen := make(map[string]bool)
	for _, obj := range s.Objects() {
		if seen[obj.ID()] {
			t.Fatalf("duplicate ID %q", obj.ID())
		}
		seen[obj.ID()] = true
	}
	if len(seen) != 20 {
		t.Errorf("live objects = %d, want 20", len(seen))
	}
}

func TestSync_FixesLabelWhenRenameRefused(t *testing.T) {
	s := newScene(t, "Cube1")
	src, _ := s.Find("Cube1")
	s.SetLabel(src, "Fancy label")

	s.SelectNone()
	s.Select(src)
	clone := s.DuplicateSelected()[0]

	syncer := NewSynchronizer(s, "", nil)
	got := syncer.Sync(clone, "Cube1")
	if got != clone.ID() || got == "Cube1" {
		t.Errorf("Sync() = %q, want the host-generated ID", got)
	}
	if clone.Label() != got {
		t.Errorf("clone label = %q, want %q", clone.Label(), got)
	}
}
