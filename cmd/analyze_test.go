package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/crxaudit/crxaudit-cli/internal/analyzer"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "already safe", label: "my-extension_1", want: "my-extension_1"},
		{name: "path characters replaced", label: "a/b\\c d", want: "a_b_c_d"},
		{name: "dots replaced", label: "ext.1.2", want: "ext_1_2"},
		{name: "empty falls back", label: "", want: "package"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLabel(tt.label); got != tt.want {
				t.Fatalf("sanitizeLabel(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestSaveAnalysisWritesResultAndSidecar(t *testing.T) {
	dir := t.TempDir()
	result := &analyzer.Result{Name: "Saved Extension", Version: "1.0", ManifestVersion: 3}

	path, digest, err := saveAnalysis(dir, "saved extension", result)
	if err != nil {
		t.Fatalf("saveAnalysis returned error: %v", err)
	}
	if !strings.HasSuffix(path, "saved_extension_analysis.json") {
		t.Fatalf("unexpected results path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("results file not written: %v", err)
	}
	if !strings.Contains(string(data), `"Saved Extension"`) {
		t.Errorf("results file missing extension name: %s", data)
	}

	sum := sha256.Sum256(data)
	if digest != hex.EncodeToString(sum[:]) {
		t.Errorf("returned digest does not match file contents")
	}

	sidecar, err := os.ReadFile(path + ".sha256")
	if err != nil {
		t.Fatalf("sha256 sidecar not written: %v", err)
	}
	if !strings.HasPrefix(string(sidecar), digest) {
		t.Errorf("sidecar does not begin with the digest: %s", sidecar)
	}
}

func TestLoadPackageRejectsConflictingSources(t *testing.T) {
	_, _, _, err := loadPackage(context.Background(), []string{"ext.crx"}, "someid", "chrome", false)
	if err == nil {
		t.Fatal("expected error when both a file and --id are provided")
	}
}

func TestLoadPackageRequiresASource(t *testing.T) {
	_, _, _, err := loadPackage(context.Background(), nil, "", "chrome", false)
	if err == nil {
		t.Fatal("expected error when neither a file nor --id is provided")
	}
}

func TestLoadPackageWarnsWhenReputationHasNoID(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/local.zip"
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	origStderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = origStderr })

	_, _, rep, err := loadPackage(context.Background(), []string{path}, "", "chrome", true)
	w.Close()
	os.Stderr = origStderr
	if err != nil {
		t.Fatalf("loadPackage returned error: %v", err)
	}
	if rep != nil {
		t.Error("local files cannot carry store reputation")
	}

	captured, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(captured), "--reputation requires --id") {
		t.Errorf("expected a warning about --reputation without --id, got %q", captured)
	}
}

func TestLoadPackageReadsLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sample.crx"
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	pkg, label, rep, err := loadPackage(context.Background(), []string{path}, "", "chrome", false)
	if err != nil {
		t.Fatalf("loadPackage returned error: %v", err)
	}
	if string(pkg) != "payload" {
		t.Errorf("unexpected package bytes: %q", pkg)
	}
	if label != "sample" {
		t.Errorf("label = %q, want %q", label, "sample")
	}
	if rep != nil {
		t.Errorf("expected nil reputation for local files")
	}
}
