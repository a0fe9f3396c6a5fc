package arcade

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/splashkit/arcade-packager/internal"
)

const (
	DefaultGamesDir      = "Games"
	DefaultInstallHome   = "~"
	DefaultCSRuntime     = "linux-x64"
	DefaultCPPCompiler   = "cpp"
	DefaultCPPLinkFlag   = "-lSplashKit"
	DefaultArchivePrefix = "splashkit-games"
	CatalogFileName      = "gamelist.xml"
	ReportFileName       = "build-report.json"
	// ConfigFileName is the default config file. It lives next to the
	// manifests, so manifest discovery skips it.
	ConfigFileName = "arcade.toml"
)

// DefaultScriptsDir is where launch scripts and the catalog live, relative to
// both the work dir and the install home.
var DefaultScriptsDir = filepath.Join(DefaultGamesDir, "LaunchScripts")

// Config is the run configuration handed to every pipeline step.
type Config struct {
	// ManifestDir holds one .toml manifest per game.
	ManifestDir string
	// ConfigFile is the config file in use, if any. It is never loaded as a
	// manifest.
	ConfigFile string
	// WorkDir is the staged tree that gets archived.
	WorkDir string
	// GamesDir is where clones go, relative to WorkDir. The same relative
	// path is used under InstallHome on the cabinet.
	GamesDir string
	// ScriptsDir holds launch scripts and the catalog, relative to WorkDir
	// and InstallHome.
	ScriptsDir string
	// InstallHome prefixes every path written into scripts and the catalog.
	InstallHome string

	// CSRuntime is passed as --runtime to dotnet publish; empty omits it.
	CSRuntime    string
	CPPPrefix    string
	CPPCompiler  string
	CPPLinkFlags []string

	ArchivePrefix  string
	ArchiveExclude []string
	SkipArchive    bool

	// KeepGoing records per-game failures and carries on with the other
	// games instead of aborting the run.
	KeepGoing bool
	// Clean removes previous build output before building.
	Clean   bool
	Verbose bool

	Logger *slog.Logger
	Runner internal.Runner
	Now    func() time.Time
}

// DefaultConfig returns a config rooted at workDir reading manifests from
// manifestDir.
func DefaultConfig(manifestDir, workDir string) Config {
	return Config{
		ManifestDir:   manifestDir,
		WorkDir:       workDir,
		GamesDir:      DefaultGamesDir,
		ScriptsDir:    DefaultScriptsDir,
		InstallHome:   DefaultInstallHome,
		CSRuntime:     DefaultCSRuntime,
		CPPCompiler:   DefaultCPPCompiler,
		CPPLinkFlags:  []string{DefaultCPPLinkFlag},
		ArchivePrefix: DefaultArchivePrefix,
	}
}

// Resolve returns a copy of c with ManifestDir, WorkDir and ConfigFile made
// absolute. Paths handed to commands must not depend on the process working
// directory.
func (c Config) Resolve() (Config, error) {
	for _, p := range []*string{&c.ManifestDir, &c.WorkDir, &c.ConfigFile} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return c, fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return c, nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return internal.Discard()
	}
	return c.Logger
}

func (c Config) runner() internal.Runner {
	if c.Runner == nil {
		return internal.NewExecRunner()
	}
	return c.Runner
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// CloneDir is the local working copy of a game.
func (c Config) CloneDir(m *GameManifest) string {
	return filepath.Join(c.WorkDir, c.GamesDir, m.Name)
}

// BuildDir is the directory the toolchain runs in.
func (c Config) BuildDir(m *GameManifest) string {
	return filepath.Join(c.CloneDir(m), m.Directory)
}

// BinaryPath is where the build leaves the game executable.
func (c Config) BinaryPath(m *GameManifest) string {
	return filepath.Join(c.BuildDir(m), "bin", m.Name)
}

// InstalledBinary is the binary path on the cabinet.
func (c Config) InstalledBinary(m *GameManifest) string {
	return filepath.Join(c.InstallHome, c.GamesDir, m.Name, m.Directory, "bin", m.Name)
}

func (c Config) ScriptPath(m *GameManifest) string {
	return filepath.Join(c.WorkDir, c.ScriptsDir, m.Name+".sh")
}

// InstalledScript is the launch script path on the cabinet.
func (c Config) InstalledScript(m *GameManifest) string {
	return filepath.Join(c.InstallHome, c.ScriptsDir, m.Name+".sh")
}

func (c Config) CatalogPath() string {
	return filepath.Join(c.WorkDir, c.ScriptsDir, CatalogFileName)
}

func (c Config) ReportPath() string {
	return filepath.Join(c.WorkDir, c.GamesDir, ReportFileName)
}
