package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scenelint/internal/diag"
	"scenelint/internal/observ"
	"scenelint/internal/source"
	"scenelint/internal/testkit"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateFileReportsTypo(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "scene.py",
		"import maya.cmds as cmds\ncmds.setAttrs('pSphere1.tx', 5)\n")

	res, err := ValidateFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if res.LoadErr != nil {
		t.Fatalf("unexpected load error: %v", res.LoadErr)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != diag.KindKnownTypo {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	if err := testkit.CheckDiagnosticInvariants(res.Snapshot, res.Diagnostics); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestValidateFileTimingsCoverLoadAndRules(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "scene.py",
		"import maya.cmds as cmds\ncmds.polySphere(radius=2)\n")

	res, err := ValidateFile(context.Background(), path, Options{Timings: true})
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if res.Timing == nil {
		t.Fatalf("expected a timing report")
	}
	got := make([]string, len(res.Timing.Phases))
	for i, p := range res.Timing.Phases {
		got[i] = p.Name
	}
	want := []string{observ.PhaseSnapshot, observ.PhaseRules}
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phases = %v, want %v", got, want)
		}
	}
}

func TestValidateFileMissingFile(t *testing.T) {
	res, err := ValidateFile(context.Background(), filepath.Join(t.TempDir(), "nope.py"), Options{})
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if res.LoadErr == nil {
		t.Fatalf("expected load error")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != diag.KindAnalysisIncomplete {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestValidateDirSortedResults(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.py", "import maya.cmds as cmds\ncmds.polySphere()\n")
	writeScript(t, dir, "a.py", "import maya.cmds as cmds\ncmds.polySphre()\n")
	writeScript(t, dir, "notes.txt", "not a script")

	results, err := ValidateDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if filepath.Base(results[0].Path) != "a.py" || filepath.Base(results[1].Path) != "b.py" {
		t.Fatalf("results out of order: %s, %s", results[0].Path, results[1].Path)
	}
	if !results[0].HasErrors() {
		t.Fatalf("a.py should carry the typo diagnostic")
	}
	if results[1].HasErrors() {
		t.Fatalf("b.py should be clean, got %+v", results[1].Diagnostics)
	}
}

func TestValidateDirEmpty(t *testing.T) {
	results, err := ValidateDir(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
	if results != nil {
		t.Fatalf("results = %v, want nil", results)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("scenelint-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	snap := source.FromLines([]string{"cmds.polySphere()"}, 1)
	var fp [32]byte
	fp[0] = 0xAB
	key := CacheKey(snap, fp, "primary-api", 100)

	ds := []diag.Diagnostic{diag.NewError(
		diag.KindUnknownCommand,
		source.LineCol{Line: 1, Col: 6},
		`unknown command "polySphre"`,
	)}
	if err := cache.Put(key, snap, fp, ds); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := cache.Get(key, fp)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if len(got) != 1 || got[0] != ds[0] {
		t.Fatalf("got = %+v, want %+v", got, ds)
	}

	// Другой отпечаток реестра — промах.
	var other [32]byte
	other[0] = 0xCD
	if _, hit, _ := cache.Get(key, other); hit {
		t.Fatalf("expected miss for foreign registry fingerprint")
	}
}

func TestDiskCacheMissOnUnknownKey(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("scenelint-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	var key Digest
	key[5] = 1
	var fp [32]byte
	if _, hit, err := cache.Get(key, fp); hit || err != nil {
		t.Fatalf("hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestValidateFileUsesCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("scenelint-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	dir := t.TempDir()
	path := writeScript(t, dir, "scene.py",
		"import maya.cmds as cmds\ncmds.setAttrs('pSphere1.tx', 5)\n")

	opts := Options{Cache: cache}
	first, err := ValidateFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first run must not hit the cache")
	}

	second, err := ValidateFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second run should hit the cache")
	}
	if len(second.Diagnostics) != len(first.Diagnostics) {
		t.Fatalf("cached diagnostics differ: %d vs %d", len(second.Diagnostics), len(first.Diagnostics))
	}
}
