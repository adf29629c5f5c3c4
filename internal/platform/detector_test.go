package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetectLinuxPaths(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     SitePaths
		wantErr  bool
	}{
		{
			name:     "debian layout",
			existing: []string{"/etc/nginx", "/etc/nginx/sites-available", "/etc/nginx/conf.d"},
			want:     DebianPaths,
		},
		{
			name:     "rhel layout",
			existing: []string{"/etc/nginx", "/etc/nginx/conf.d"},
			want:     RHELPaths,
		},
		{
			name:     "bare nginx dir",
			existing: []string{"/etc/nginx"},
			want:     DebianPaths,
		},
		{
			name:    "no nginx",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := make(map[string]bool)
			for _, p := range tt.existing {
				set[p] = true
			}
			got, err := detectLinuxPaths(func(p string) bool { return set[p] })
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectLinuxPaths() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectLinuxPaths() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSitePathsSplit(t *testing.T) {
	if !DebianPaths.Split() {
		t.Error("debian layout should need an activation symlink")
	}
	if RHELPaths.Split() {
		t.Error("conf.d layout should not need an activation symlink")
	}
}

func TestDetectPaths(t *testing.T) {
	paths, err := DetectPaths()
	if runtime.GOOS != "linux" {
		if err == nil {
			t.Error("expected error on non-linux platform")
		}
		return
	}
	if err != nil {
		// CI hosts usually have no nginx installed.
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if paths.Available == "" || paths.Enabled == "" {
		t.Errorf("expected non-empty paths, got %+v", paths)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !pathExists(dir) {
		t.Error("temp dir should exist")
	}
	if pathExists(filepath.Join(dir, "missing")) {
		t.Error("missing path should not exist")
	}
	f := filepath.Join(dir, "file")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !pathExists(f) {
		t.Error("file should exist")
	}
}

func TestPlatform(t *testing.T) {
	want := runtime.GOOS + "/" + runtime.GOARCH
	if got := Platform(); got != want {
		t.Errorf("Platform() = %q, want %q", got, want)
	}
}
