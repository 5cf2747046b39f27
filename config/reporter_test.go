package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s in report: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("unable to read %s in report: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_StoreAndClose(t *testing.T) {
	dir := t.TempDir()

	r, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r.Name() != filepath.Join(dir, "report.zip") {
		t.Errorf("Name() = %q", r.Name())
	}

	for _, n := range []string{"s_gen.m", "s_a_2.m", "s_b_10.m"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("% "+n+"\n"), 0644); err != nil {
			t.Fatalf("failed to write fragment: %v", err)
		}
	}
	r.Store("fragments/s_b_10.m", filepath.Join(dir, "s_b_10.m"))
	r.Store("fragments/s_a_2.m", filepath.Join(dir, "s_a_2.m"))
	r.Store("fragments/s_gen.m", filepath.Join(dir, "s_gen.m"))
	r.Store("fragments/gone.m", filepath.Join(dir, "gone.m"))
	r.StoreData("config/config.yaml", []byte("version: 1\n"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, filepath.Join(dir, "report.zip"))
	if files["config/config.yaml"] != "version: 1\n" {
		t.Errorf("config entry = %q", files["config/config.yaml"])
	}
	if files["fragments/s_a_2.m"] != "% s_a_2.m\n" {
		t.Errorf("fragment entry = %q", files["fragments/s_a_2.m"])
	}
	if _, ok := files["fragments/gone.m"]; ok {
		t.Error("absent file should be skipped")
	}

	manifest := files["MANIFEST"]
	i2, i10 := strings.Index(manifest, "s_a_2.m"), strings.Index(manifest, "s_b_10.m")
	if i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("manifest is not in natural order:\n%s", manifest)
	}
}

func TestReport_StoreTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("a", []byte("x"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate entry")
		}
	}()
	r.StoreData("a", []byte("y"))
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	// must be safe as well
	r.Store("a", "b")
	r.StoreData("c", nil)
	if r.Name() != "" {
		t.Error("Name() of nil report should be empty")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
