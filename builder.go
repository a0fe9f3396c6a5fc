package arcade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/splashkit/arcade-packager/internal"
)

// BuildResult describes one game's build.
type BuildResult struct {
	Game     string
	Language Language
	Binary   string
	// Cloned is true when this run performed the clone.
	Cloned   bool
	Duration time.Duration
	Err      error
}

func (r BuildResult) OK() bool { return r.Err == nil }

type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg: cfg,
	}
}

func (b *Builder) log(m *GameManifest) *slog.Logger {
	return b.cfg.logger().With("game", m.Name)
}

// EnsureCloned makes sure a working copy of the game exists and returns its
// path. An existing directory is trusted as-is and never re-cloned.
func (b *Builder) EnsureCloned(ctx context.Context, m *GameManifest) (string, bool, error) {
	dir, err := filepath.Abs(b.cfg.CloneDir(m))
	if err != nil {
		return "", false, &FetchError{Game: m.Name, Repo: m.Repo, Err: err}
	}
	log := b.log(m)
	if _, err := os.Stat(dir); err == nil {
		log.Info("already cloned, skipping", "dir", dir)
		return dir, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, &FetchError{Game: m.Name, Repo: m.Repo, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", false, &FetchError{Game: m.Name, Repo: m.Repo, Err: err}
	}

	args := []string{"clone", "--depth=1"}
	if m.Branch != "" {
		args = append(args, "--branch", m.Branch)
	}
	args = append(args, m.Repo, dir)

	log.Info("cloning", "repo", m.Repo, "branch", m.Branch)
	if err := b.cfg.runner().Run(ctx, internal.Command{Dir: b.cfg.WorkDir, Name: "git", Args: args}); err != nil {
		return "", false, &FetchError{Game: m.Name, Repo: m.Repo, Err: err}
	}
	return dir, true, nil
}

// Build fetches the game if needed and runs its toolchain. The returned
// result carries the same error as the second return value.
func (b *Builder) Build(ctx context.Context, m *GameManifest) (BuildResult, error) {
	start := b.cfg.now()
	res := BuildResult{Game: m.Name, Language: m.Language}
	finish := func(err error) (BuildResult, error) {
		res.Duration = b.cfg.now().Sub(start)
		res.Err = err
		return res, err
	}

	if !m.Language.Supported() {
		return finish(&UnsupportedLanguageError{Game: m.Name, Language: m.Language})
	}

	_, cloned, err := b.EnsureCloned(ctx, m)
	res.Cloned = cloned
	if err != nil {
		return finish(err)
	}

	buildDir := b.cfg.BuildDir(m)
	if err := os.MkdirAll(filepath.Join(buildDir, "bin"), 0o755); err != nil {
		return finish(&BuildError{Game: m.Name, Err: err})
	}

	var c internal.Command
	switch m.Language {
	case CSharp:
		c = b.csharpCommand(buildDir)
	case CPP:
		c, err = b.cppCommand(m, buildDir)
		if err != nil {
			return finish(&BuildError{Game: m.Name, Err: err})
		}
	}

	b.log(m).Info("building", "language", string(m.Language), "dir", buildDir)
	if err := b.cfg.runner().Run(ctx, c); err != nil {
		return finish(&BuildError{Game: m.Name, Err: err})
	}

	if m.Language == CSharp {
		if err := b.linkPublishedBinary(m, buildDir); err != nil {
			return finish(&BuildError{Game: m.Name, Err: err})
		}
	}
	res.Binary = b.cfg.BinaryPath(m)
	return finish(nil)
}

func (b *Builder) csharpCommand(buildDir string) internal.Command {
	args := []string{"publish", "--configuration", "release"}
	if b.cfg.CSRuntime != "" {
		args = append(args, "--runtime", b.cfg.CSRuntime)
	}
	args = append(args, "-o", "bin")
	return internal.Command{Dir: buildDir, Name: "dotnet", Args: args}
}

func (b *Builder) cppCommand(m *GameManifest, buildDir string) (internal.Command, error) {
	sources, err := doublestar.Glob(os.DirFS(buildDir), "*.cpp", doublestar.WithFilesOnly())
	if err != nil {
		return internal.Command{}, err
	}
	if len(sources) == 0 {
		return internal.Command{}, fmt.Errorf("no .cpp sources in %s", buildDir)
	}
	sort.Strings(sources)

	compiler := b.cfg.CPPCompiler
	if compiler == "" {
		compiler = DefaultCPPCompiler
	}
	args := append([]string{}, sources...)
	args = append(args, b.cfg.CPPLinkFlags...)
	args = append(args, "-o", filepath.Join("bin", m.Name))
	return internal.Command{Dir: buildDir, Name: b.cfg.CPPPrefix + compiler, Args: args}, nil
}

// linkPublishedBinary points bin/<name> at the host executable dotnet named
// after the project file, when the two differ.
func (b *Builder) linkPublishedBinary(m *GameManifest, buildDir string) error {
	target := filepath.Join(buildDir, "bin", m.Name)
	if _, err := os.Lstat(target); err == nil {
		return nil
	}
	projects, err := doublestar.Glob(os.DirFS(buildDir), "*.csproj", doublestar.WithFilesOnly())
	if err != nil {
		return err
	}
	if len(projects) != 1 {
		b.log(m).Warn("cannot tell which project produced the binary", "projects", len(projects))
		return nil
	}
	host := strings.TrimSuffix(projects[0], filepath.Ext(projects[0]))
	if _, err := os.Stat(filepath.Join(buildDir, "bin", host)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.log(m).Warn("published binary not found", "expected", host)
			return nil
		}
		return err
	}
	b.log(m).Debug("linking published binary", "from", host, "to", m.Name)
	return os.Symlink(host, target)
}

// Clean removes the build output of a game, leaving the clone in place.
func (b *Builder) Clean(m *GameManifest) error {
	binDir := filepath.Join(b.cfg.BuildDir(m), "bin")
	if _, err := os.Stat(binDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(binDir); err != nil {
		return fmt.Errorf("remove bin path: %w", err)
	}
	return nil
}
