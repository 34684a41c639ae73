package okato

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	os.WriteFile(a, []byte("11;22;333;000;1;п Тестовое\n"), 0o644)
	os.WriteFile(b, []byte("11;22;333;000;1;п Другое\n"), 0o644)

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(da) != 64 {
		t.Fatalf("digest length = %d, want 64", len(da))
	}
	again, _ := Digest(a)
	if again != da {
		t.Fatalf("digest not stable: %s vs %s", da, again)
	}
	db, _ := Digest(b)
	if db == da {
		t.Fatal("different files share a digest")
	}
}

func TestDigest_Missing(t *testing.T) {
	_, err := Digest(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrInputAccess) {
		t.Fatalf("expected ErrInputAccess, got %v", err)
	}
}
