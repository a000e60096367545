package testsupport

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

var updateGolden = flag.Bool("update", false, "rewrite golden files with the actual output")

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// CompareJSONWithGolden compares actual JSON with the golden file at path
// after indenting both, so formatting differences do not matter. A missing
// golden file, or running with -update, writes actual as the new golden.
func CompareJSONWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	got := indentJSON(t, actual)

	expected, err := os.ReadFile(path)
	if *updateGolden || os.IsNotExist(err) {
		t.Logf("writing golden file %s", path)
		writeFile(t, path, got)
		return
	}
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	want := indentJSON(t, expected)
	if !bytes.Equal(got, want) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, want, got)
	}
}

// TempFile writes content to name inside a per-test directory that is
// removed when the test ends, and returns its path.
func TempFile(t testing.TB, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}
	return path
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

func indentJSON(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
