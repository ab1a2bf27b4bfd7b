//go:build darwin || freebsd || linux || windows

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/database64128/fdio-go"
)

// executeCommand runs a fresh command tree on fs with args and returns captured stdout and stderr.
func executeCommand(t *testing.T, fs fdio.FileSystem, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	root := NewRootCommand(fs)
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// unavailableFS reports every lock as held elsewhere.
type unavailableFS struct {
	fdio.OS
	unlocked bool
}

func (*unavailableFS) Lock(fd uintptr, start, length int64, shared, wait bool) (bool, error) {
	return false, nil
}

func (f *unavailableFS) Unlock(fd uintptr, start, length int64) error {
	f.unlocked = true
	return nil
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand(fdio.Default)
	if root.Use != "fdio" {
		t.Errorf("root.Use = %q, want %q", root.Use, "fdio")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range root.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range []string{"granularity", "stat", "lock", "truncate", "copy", "cat"} {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestGranularityCommand(t *testing.T) {
	out, _, err := executeCommand(t, fdio.Default, "granularity")
	if err != nil {
		t.Fatal(err)
	}
	if want := strconv.Itoa(fdio.Default.AllocationGranularity()) + "\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestStatCommand(t *testing.T) {
	path := writeTempFile(t, "stat", []byte("hello"))

	out, _, err := executeCommand(t, fdio.Default, "stat", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "length: 5\n") {
		t.Fatalf("output = %q, want length 5", out)
	}
}

func TestStatCommandMissingFile(t *testing.T) {
	_, _, err := executeCommand(t, fdio.Default, "stat", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTruncateCommand(t *testing.T) {
	path := writeTempFile(t, "truncate", []byte("helloworld"))

	if _, _, err := executeCommand(t, fdio.Default, "truncate", path, "3"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hel" {
		t.Fatalf("file = %q, want %q", b, "hel")
	}

	if _, _, err = executeCommand(t, fdio.Default, "truncate", path, "x"); err == nil {
		t.Fatal("expected error for invalid size")
	}
}

func TestCopyCommand(t *testing.T) {
	src := writeTempFile(t, "src", []byte("helloworld"))

	for _, c := range []struct {
		name string
		args []string
		want string
	}{
		{"Whole", nil, "helloworld"},
		{"Offset", []string{"--offset", "5"}, "world"},
		{"Count", []string{"--offset", "2", "--count", "3"}, "llo"},
	} {
		t.Run(c.name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "dst")
			args := append([]string{"copy", src, dst}, c.args...)
			out, _, err := executeCommand(t, fdio.Default, args...)
			if err != nil {
				t.Fatal(err)
			}
			if want := "copied " + strconv.Itoa(len(c.want)) + " bytes\n"; out != want {
				t.Fatalf("output = %q, want %q", out, want)
			}
			b, err := os.ReadFile(dst)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != c.want {
				t.Fatalf("dst = %q, want %q", b, c.want)
			}
		})
	}
}

func TestCopyCommandSameFile(t *testing.T) {
	src := writeTempFile(t, "src", []byte("helloworld"))
	alias := filepath.Dir(src) + string(filepath.Separator) + "." + string(filepath.Separator) + "src"

	for _, dst := range []string{src, alias} {
		if _, _, err := executeCommand(t, fdio.Default, "copy", src, dst); err == nil {
			t.Fatalf("copy %s %s: expected an error", src, dst)
		}
		b, err := os.ReadFile(src)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "helloworld" {
			t.Fatalf("src = %q after copying onto itself, want %q", b, "helloworld")
		}
	}
}

func TestCatCommand(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 100)
	path := writeTempFile(t, "cat", content)

	for _, args := range [][]string{
		{"cat", path},
		{"cat", path, "--segments", "3", "--segment-size", "7"},
		{"cat", path, "--segments", "1", "--segment-size", "1"},
	} {
		out, _, err := executeCommand(t, fdio.Default, args...)
		if err != nil {
			t.Fatal(err)
		}
		if out != string(content) {
			t.Fatalf("%v: output length %d, want %d", args, len(out), len(content))
		}
	}

	if _, _, err := executeCommand(t, fdio.Default, "cat", path, "--segments", "0"); err == nil {
		t.Fatal("expected error for zero segments")
	}
}

func TestLockCommand(t *testing.T) {
	path := writeTempFile(t, "lock", []byte("helloworld"))

	out, _, err := executeCommand(t, fdio.Default, "lock", path, "--start", "2", "--length", "4")
	if err != nil {
		t.Fatal(err)
	}
	if out != "acquired\n" {
		t.Fatalf("output = %q, want %q", out, "acquired\n")
	}

	out, _, err = executeCommand(t, fdio.Default, "lock", path, "--shared", "--wait")
	if err != nil {
		t.Fatal(err)
	}
	if out != "acquired\n" {
		t.Fatalf("output = %q, want %q", out, "acquired\n")
	}
}

func TestLockCommandUnavailable(t *testing.T) {
	path := writeTempFile(t, "lock", nil)
	fs := &unavailableFS{}

	out, _, err := executeCommand(t, fs, "lock", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "unavailable\n" {
		t.Fatalf("output = %q, want %q", out, "unavailable\n")
	}
	if fs.unlocked {
		t.Fatal("Unlock called for a lock that was never acquired")
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	path := writeTempFile(t, "env", []byte("x"))

	t.Setenv("FDIO_LOG_LEVEL", "debug")
	_, stderr, err := executeCommand(t, fdio.Default, "stat", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "Opened file") {
		t.Fatalf("stderr = %q, want debug log line", stderr)
	}

	t.Setenv("FDIO_LOG_LEVEL", "bogus")
	if _, _, err = executeCommand(t, fdio.Default, "stat", path); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestConfigFile(t *testing.T) {
	path := writeTempFile(t, "data", []byte("x"))
	cfg := writeTempFile(t, "config.yaml", []byte("log_level: debug\nlog_format: json\n"))

	_, stderr, err := executeCommand(t, fdio.Default, "--config", cfg, "stat", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, `"msg":"Opened file"`) {
		t.Fatalf("stderr = %q, want JSON debug log line", stderr)
	}

	// Flags take precedence over the config file.
	_, stderr, err = executeCommand(t, fdio.Default, "--config", cfg, "--log-level", "error", "stat", path)
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Fatalf("stderr = %q, want no log output", stderr)
	}
}

func TestNewLogger(t *testing.T) {
	for _, c := range []struct {
		level, format string
		ok            bool
	}{
		{"info", "text", true},
		{"DEBUG", "json", true},
		{"warn", "JSON", true},
		{"loud", "text", false},
		{"info", "xml", false},
	} {
		_, err := NewLogger(&bytes.Buffer{}, c.level, c.format)
		if (err == nil) != c.ok {
			t.Errorf("NewLogger(%q, %q) error = %v, want ok = %v", c.level, c.format, err, c.ok)
		}
	}
}
