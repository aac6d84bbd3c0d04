package images

import (
	"os"
	"path/filepath"
	"testing"
)

func writePublicDir(t *testing.T, mapJSON string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if mapJSON != "" {
		if err := os.WriteFile(filepath.Join(imagesDir, "map.json"), []byte(mapJSON), 0o644); err != nil {
			t.Fatalf("write map.json: %v", err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(imagesDir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return dir
}

func TestURLFor_MapEntryWithExplicitFile(t *testing.T) {
	dir := writePublicDir(t, `[{"match": ["teja espanola"], "image": "/images/teja-espanola.webp"}]`,
		"teja-espanola.webp")
	r := New(dir)

	got := r.URLFor("Teja Española Fondo Terracota 6.14 m.")
	if got != "/images/teja-espanola.webp" {
		t.Fatalf("URLFor = %q", got)
	}
}

func TestURLFor_StemEntryResolvesAgainstIndex(t *testing.T) {
	dir := writePublicDir(t, `[{"match": "capuchon", "image": "/images/capuchon"}]`,
		"capuchon-rojo.webp")
	r := New(dir)

	got := r.URLFor("CAPUCHON PARA TEJA")
	if got != "/images/capuchon-rojo.webp" {
		t.Fatalf("URLFor = %q", got)
	}
}

func TestURLFor_FilenameFallbackNeedsTwoHits(t *testing.T) {
	dir := writePublicDir(t, "", "tubo-cuadrado.webp", "plancha-galvanizada.webp")
	r := New(dir)

	if got := r.URLFor("tubo cuadrado 20x20"); got != "/images/tubo-cuadrado.webp" {
		t.Fatalf("URLFor = %q", got)
	}
	// One weak token hit is below the fallback threshold.
	if got := r.URLFor("tubo redondo"); got != "" {
		t.Fatalf("URLFor = %q, want no match", got)
	}
}

func TestURLFor_MissingDirectoryResolvesNothing(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope"))
	if got := r.URLFor("teja espanola"); got != "" {
		t.Fatalf("URLFor = %q, want empty", got)
	}
}

func TestURLFor_EmptyNameResolvesNothing(t *testing.T) {
	r := New(t.TempDir())
	if got := r.URLFor(""); got != "" {
		t.Fatalf("URLFor = %q, want empty", got)
	}
}
