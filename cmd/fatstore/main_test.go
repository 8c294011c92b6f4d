package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnishMulay/fatstore/internal/config"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
)

// writeTestConfig writes a config under a temp dir that logs to files there
// instead of stderr.
func writeTestConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Log.Backend = config.BackendLocal
	cfg.Log.Dir = filepath.Join(dir, "logs")
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, "fatstore.yaml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("config.Write() error = %v", err)
	}
	return path
}

func runApp(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"fatstore"}, args...))
	return out.String(), errOut.String(), err
}

func TestApp_Commands(t *testing.T) {
	tinyLegacy := func(c *config.Config) {
		c.Volume.BlockCount = 2
		c.Volume.BlockSize = 16
		c.Allocation.Policy = string(fs.PolicyLegacy)
	}
	tinyStrict := func(c *config.Config) {
		c.Volume.BlockCount = 2
		c.Volume.BlockSize = 16
	}

	tests := []struct {
		name       string
		mutate     func(*config.Config)
		args       []string
		wantOut    []string
		wantErrOut string
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "demo",
			args: []string{"demo"},
			wantOut: []string{
				"file doc.txt inode=1 uid=1001 gid=1001 perm=11010010000000 size=1000 blocks=1\n  chain: 0 -> eoc\n",
				"file vacio.txt inode=2 uid=1001 gid=1001 perm=11010010000000 size=0 blocks=0\n  chain: empty\n",
				"  blocks: 1 used",
				"  inodes: 3 used",
			},
		},
		{
			name:    "stat",
			args:    []string{"stat"},
			wantOut: []string{"volume vol0", "  inodes: 1 used"},
		},
		{
			name:       "legacy keeps short chain",
			mutate:     tinyLegacy,
			args:       []string{"create", "--file", "/home/usuario/a=100"},
			wantOut:    []string{"blocks=2\n  chain: 0 -> 1 -> eoc\n"},
			wantErrOut: "warning: create /home/usuario/a: only 2 of 7 blocks allocated\n",
		},
		{
			name:    "strict disk full",
			mutate:  tinyStrict,
			args:    []string{"create", "--file", "/home/usuario/a=100"},
			wantErr: fs.ErrDiskFull,
		},
		{
			name:    "largest ids",
			args:    []string{"create", "--uid", "4294967295", "--gid", "0", "--file", "/home/usuario/a=1"},
			wantOut: []string{"uid=4294967295 gid=0 "},
		},
		{
			name:       "uid past 32 bits",
			args:       []string{"create", "--uid", "4294967296", "--file", "/home/usuario/a=1"},
			wantErrMsg: "--uid 4294967296 exceeds 4294967295",
		},
		{
			name:       "gid past 32 bits",
			args:       []string{"create", "--gid", "18446744073709551615", "--file", "/home/usuario/a=1"},
			wantErrMsg: "--gid 18446744073709551615 exceeds",
		},
		{
			name:       "bad file spec",
			args:       []string{"create", "--file", "/home/usuario/a"},
			wantErrMsg: "want PATH=SIZE",
		},
		{
			name:    "name too long",
			args:    []string{"create", "--file", "/home/usuario/abcdefghijk=1"},
			wantErr: fs.ErrNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.mutate)

			out, errOut, err := runApp(append([]string{"--config", path}, tt.args...)...)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantErrMsg != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrMsg) {
					t.Fatalf("Run() error = %v, want one containing %q", err, tt.wantErrMsg)
				}
				if out != "" {
					t.Errorf("Run() wrote %q after a rejected flag", out)
				}
				return
			case err != nil:
				t.Fatalf("Run() error = %v", err)
			}

			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if errOut != tt.wantErrOut {
				t.Errorf("error output = %q, want %q", errOut, tt.wantErrOut)
			}
		})
	}
}

func TestApp_ConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "fatstore.yaml")

	tests := []struct {
		name       string
		args       []string
		wantErrMsg string
	}{
		{name: "writes defaults", args: []string{"config", "init"}},
		{name: "refuses to overwrite", args: []string{"config", "init"}, wantErrMsg: "already exists, use --force"},
		{name: "overwrites with force", args: []string{"config", "init", "--force"}},
	}

	// each step runs against the file the previous one left behind
	for _, tt := range tests {
		out, _, err := runApp(append([]string{"--config", path}, tt.args...)...)
		if tt.wantErrMsg != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErrMsg) {
				t.Fatalf("%s: Run() error = %v, want one containing %q", tt.name, err, tt.wantErrMsg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: Run() error = %v", tt.name, err)
		}
		if want := "wrote " + path + "\n"; out != want {
			t.Errorf("%s: output = %q, want %q", tt.name, out, want)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Volume.Name != config.Default().Volume.Name {
		t.Errorf("loaded volume name = %q, want the default", cfg.Volume.Name)
	}
}
