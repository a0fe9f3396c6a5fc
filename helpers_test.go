package arcade

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/splashkit/arcade-packager/internal"
)

// fakeRunner records commands instead of running them.
type fakeRunner struct {
	calls []internal.Command
	onRun func(c internal.Command) error
}

func (f *fakeRunner) Run(_ context.Context, c internal.Command) error {
	f.calls = append(f.calls, c)
	if f.onRun != nil {
		return f.onRun(c)
	}
	return nil
}

func (f *fakeRunner) named(name string) []internal.Command {
	var out []internal.Command
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// cloneWith makes `git clone` create the target dir with the given files,
// keyed by path relative to the clone. A relative target is taken from the
// command's Dir, as git does.
func cloneWith(files map[string]string) func(internal.Command) error {
	return func(c internal.Command) error {
		if c.Name != "git" {
			return nil
		}
		dir := c.Args[len(c.Args)-1]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(c.Dir, dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for name, body := range files {
			p := filepath.Join(dir, name)
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

// exitError produces a real *exec.ExitError with the given status.
func exitError(t *testing.T, code int) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+strconv.Itoa(code)).Run()
	require.Error(t, err)
	return err
}

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, r *fakeRunner) Config {
	t.Helper()
	root := t.TempDir()
	work := filepath.Join(root, "stage")
	manifests := filepath.Join(root, "manifests")
	require.NoError(t, os.MkdirAll(work, 0o755))
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	cfg := DefaultConfig(manifests, work)
	cfg.Runner = r
	cfg.Now = func() time.Time { return fixedNow }
	return cfg
}

// chdir moves the process into dir until the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func pong() *GameManifest {
	return &GameManifest{
		Name:     "pong",
		Language: CPP,
		Repo:     "https://x/pong.git",
		Frontend: map[string]string{},
	}
}
