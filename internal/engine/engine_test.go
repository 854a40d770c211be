package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oxhq/qmldiff/internal/hashtab"
)

func hashOf(s string) uint64 {
	return hashtab.Hash(s)
}

func TestApplyFileRunsLoadedPatchesInOrder(t *testing.T) {
	dir := t.TempDir()
	patchA := filepath.Join(dir, "a.diff")
	patchB := filepath.Join(dir, "b.diff")

	writePatch(t, patchA, `VERSION 1
AFFECT "main.qml"
    TRAVERSE Item
        LOCATE AFTER ALL
        INSERT {
            footer: Rectangle {
                color: "red"
            }
        }
    END TRAVERSE
END AFFECT
`)
	writePatch(t, patchB, `VERSION 1
AFFECT "main.qml"
    TRAVERSE Item
        RENAME Rectangle:footer TO header
    END TRAVERSE
END AFFECT
`)

	e := New()
	if err := e.LoadPatches([]string{patchA, patchB}); err != nil {
		t.Fatalf("LoadPatches: %v", err)
	}

	out, err := e.ApplyFile("main.qml", []byte("Item {\n}\n"))
	if err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if !strings.Contains(out, "header: Rectangle {") || strings.Contains(out, "footer") {
		t.Fatalf("expected patch b to rename patch a's insertion:\n%s", out)
	}
}

func TestApplyFileSkippedInCreatingMode(t *testing.T) {
	dir := t.TempDir()
	patch := filepath.Join(dir, "a.diff")
	writePatch(t, patch, `VERSION 1
AFFECT "main.qml"
    TRAVERSE Item
        LOCATE AFTER ALL
        INSERT {
            Rectangle {}
        }
    END TRAVERSE
END AFFECT
`)

	e := New()
	if err := e.LoadPatches([]string{patch}); err != nil {
		t.Fatalf("LoadPatches: %v", err)
	}
	e.SetCreating(true)

	out, err := e.ApplyFile("main.qml", []byte("Item {\n}\n"))
	if err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if strings.Contains(out, "Rectangle") {
		t.Fatalf("expected no patches applied in creating mode:\n%s", out)
	}
}

func TestHashIdentifiersPopulatesTable(t *testing.T) {
	e := New()
	if err := e.HashIdentifiers("main.qml", []byte(`Item {
    Text {
        text: "hi"
    }
}
`)); err != nil {
		t.Fatalf("HashIdentifiers: %v", err)
	}
	if e.Table().Len() == 0 {
		t.Fatal("expected hashtab to gain entries")
	}
	if !e.Table().Has(hashOf("Item")) || !e.Table().Has(hashOf("Text")) {
		t.Fatal("expected Item and Text identifiers recorded")
	}
}

func TestLoadHashtabMergesExistingEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qml.hashtab")
	content := "123 = \"Item\"\n456 = \"Text\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed hashtab: %v", err)
	}

	e := New()
	if err := e.LoadHashtab(path); err != nil {
		t.Fatalf("LoadHashtab: %v", err)
	}
	if got, ok := e.Table().Lookup(123); !ok || got != "Item" {
		t.Fatalf("unexpected lookup: %q %v", got, ok)
	}
}

func writePatch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write patch %s: %v", path, err)
	}
}
