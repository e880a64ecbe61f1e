package store

import (
	"errors"
	"testing"

	"github.com/ayusman/cmykstudio/internal/archive"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

func sampleItems() []archive.Item {
	return []archive.Item{
		{ID: "a", Title: "Alpha", URL: "/archive/a.jpg"},
		{ID: "b", Title: "Bravo", URL: "/archive/b.jpg"},
		{ID: "c", Title: "Charlie", URL: "/archive/c.jpg"},
	}
}

func itemIDs(items []archive.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestArchiveRepository_Seed(t *testing.T) {
	s := newTestStore(t)
	repo := s.Archive()

	seeded, err := repo.Seed(sampleItems())
	if err != nil || !seeded {
		t.Fatalf("Seed() = %v, %v", seeded, err)
	}

	// A second seed leaves the existing archive alone.
	seeded, err = repo.Seed([]archive.Item{{ID: "z", Title: "Z", URL: "/z"}})
	if err != nil || seeded {
		t.Errorf("second Seed() = %v, %v", seeded, err)
	}

	items, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := itemIDs(items); !equalIDs(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v", got)
	}
	if items[1] != sampleItems()[1] {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestArchiveRepository_SaveOrder(t *testing.T) {
	s := newTestStore(t)
	repo := s.Archive()
	if _, err := repo.Seed(sampleItems()); err != nil {
		t.Fatal(err)
	}

	if err := repo.SaveOrder([]string{"c", "a", "b"}); err != nil {
		t.Fatalf("SaveOrder() error = %v", err)
	}

	items, _ := repo.List()
	if got := itemIDs(items); !equalIDs(got, []string{"c", "a", "b"}) {
		t.Errorf("order = %v", got)
	}

	err := repo.SaveOrder([]string{"b", "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveOrder(missing) error = %v, want ErrNotFound", err)
	}

	// The failed save is rolled back.
	items, _ = repo.List()
	if got := itemIDs(items); !equalIDs(got, []string{"c", "a", "b"}) {
		t.Errorf("order after failed save = %v", got)
	}
}

func TestArchiveRepository_CreateDelete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Archive()

	for _, it := range sampleItems() {
		if err := repo.Create(it); err != nil {
			t.Fatalf("Create(%s) error = %v", it.ID, err)
		}
	}
	if n, _ := repo.Count(); n != 3 {
		t.Errorf("Count() = %d", n)
	}

	if err := repo.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	items, _ := repo.List()
	if got := itemIDs(items); !equalIDs(got, []string{"a", "c"}) {
		t.Errorf("order = %v", got)
	}

	if err := repo.Delete("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if err := repo.Create(sampleItems()[0]); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestLayerRepository_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	repo := s.Layers()

	sc := scene.New(nil)
	eyes := sc.AddLayer(parts.RoleEyes, parts.Cyan, "/parts/eyes_c.png", parts.Transform{Y: -60})
	sc.AddLayer(parts.RoleArmLeft, parts.Black, "/parts/arm_left_k.png", parts.Transform{X: -180, Y: 160, Rotation: 12.5})
	if err := sc.MoveToTail(eyes); err != nil {
		t.Fatal(err)
	}
	want := sc.Ordered()

	if err := repo.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d layers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("layer %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Saving again replaces the previous snapshot.
	if err := repo.Save(want[:1]); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Load(); len(got) != 1 {
		t.Errorf("loaded %d layers after resave", len(got))
	}
}

func TestLayerRepository_LoadRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	_, err := s.DB().Exec(
		`INSERT INTO scene_layers (id, role, channel, asset, seq, position) VALUES ('x', 'tail', 'c', '', 1, 0)`,
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Layers().Load(); !errors.Is(err, parts.ErrUnknownRole) {
		t.Errorf("Load() error = %v, want ErrUnknownRole", err)
	}
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if !repo.Bool(SettingTrackingEnabled, true) {
		t.Error("Bool() should fall back to the default")
	}

	if err := repo.SetBool(SettingTrackingEnabled, false); err != nil {
		t.Fatal(err)
	}
	if repo.Bool(SettingTrackingEnabled, true) {
		t.Error("Bool() = true after SetBool(false)")
	}

	if err := repo.SetFloat(SettingCanvasWidth, 812.5); err != nil {
		t.Fatal(err)
	}
	if got := repo.Float(SettingCanvasWidth, 0); got != 812.5 {
		t.Errorf("Float() = %v", got)
	}

	if err := repo.Set(SettingCanvasHeight, "tall"); err != nil {
		t.Fatal(err)
	}
	if got := repo.Float(SettingCanvasHeight, 600); got != 600 {
		t.Errorf("Float(unparsable) = %v, want default", got)
	}
}
