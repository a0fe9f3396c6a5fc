package arcade

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

const ManifestPattern = "*.toml"

// Language picks the build strategy for a game.
type Language string

const (
	CPP    Language = "cpp"
	CSharp Language = "csharp"
)

// ParseLanguage normalizes a declared language. Unrecognized values are kept
// as-is so the build step can reject them.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpp", "c++":
		return CPP
	case "csharp", "cs", "c#":
		return CSharp
	}
	return Language(s)
}

func (l Language) Supported() bool {
	return l == CPP || l == CSharp
}

type MetaConfig struct {
	Name        string  `toml:"name"`
	Language    string  `toml:"language"`
	Description *string `toml:"description,omitempty"`
}

type GitConfig struct {
	Repo      string `toml:"repo"`
	Branch    string `toml:"branch,omitempty"`
	Directory string `toml:"directory,omitempty"`
}

// ManifestV1 is the on-disk layout of a game manifest.
type ManifestV1 struct {
	Meta     MetaConfig     `toml:"meta"`
	Git      GitConfig      `toml:"git"`
	Frontend map[string]any `toml:"emulationstation,omitempty"`
}

// GameManifest is a loaded, validated manifest. It is not modified after
// LoadManifests returns it.
type GameManifest struct {
	Name        string
	Language    Language
	Description string
	HasDesc     bool
	Repo        string
	Branch      string
	// Directory is the build root inside the clone; empty is the repo root.
	Directory string
	// Frontend holds passthrough catalog fields, image included.
	Frontend map[string]string
	// FrontendOrder lists the Frontend keys in the order the manifest
	// declares them.
	FrontendOrder []string
	// Source is the manifest file this came from.
	Source string
}

// LoadManifests reads every manifest directly inside dir, sorted by file
// name. Files named ConfigFileName and the paths in skip are not manifests.
// The first invalid manifest fails the whole load.
func LoadManifests(dir string, skip ...string) ([]*GameManifest, error) {
	if fi, err := os.Stat(dir); err != nil {
		return nil, &ManifestError{Path: dir, Err: err}
	} else if !fi.IsDir() {
		return nil, &ManifestError{Path: dir, Err: errors.New("not a directory")}
	}
	files, err := doublestar.Glob(os.DirFS(dir), ManifestPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list manifests in %s: %w", dir, err)
	}
	sort.Strings(files)
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skipped[abs] = true
		}
	}
	manifests := make([]*GameManifest, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f)
		if filepath.Base(f) == ConfigFileName {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil && skipped[abs] {
			continue
		}
		m, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[m.Name]; ok {
			return nil, &ManifestError{Path: m.Source, Field: "meta.name", Err: fmt.Errorf("%q already declared by %s", m.Name, prev)}
		}
		seen[m.Name] = m.Source
		manifests = append(manifests, m)
	}
	return manifests, nil
}

func LoadManifest(path string) (*GameManifest, error) {
	doc, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	raw := &ManifestV1{}
	if err := toml.Unmarshal(doc, raw); err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	m, err := raw.validate(path)
	if err != nil {
		return nil, err
	}
	m.FrontendOrder = orderKeys(m.Frontend, frontendKeyOrder(doc))
	return m, nil
}

const frontendTable = "emulationstation"

// frontendKeyOrder returns the keys of the frontend table in document order.
// Only keys written under a [emulationstation] header are seen.
func frontendKeyOrder(doc []byte) []string {
	var keys []string
	inTable := false
	p := unstable.Parser{}
	p.Reset(doc)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			inTable = keyName(e.Key()) == frontendTable
		case unstable.KeyValue:
			if inTable {
				keys = append(keys, keyName(e.Key()))
			}
		}
	}
	return keys
}

func keyName(it unstable.Iterator) string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return strings.Join(parts, ".")
}

// orderKeys lists the keys of fields following order, then any keys order
// missed, sorted.
func orderKeys(fields map[string]string, order []string) []string {
	out := make([]string, 0, len(fields))
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := fields[k]; ok && !listed[k] {
			listed[k] = true
			out = append(out, k)
		}
	}
	var rest []string
	for k := range fields {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (raw *ManifestV1) validate(path string) (*GameManifest, error) {
	switch {
	case strings.TrimSpace(raw.Meta.Name) == "":
		return nil, &ManifestError{Path: path, Field: "meta.name"}
	case strings.TrimSpace(raw.Meta.Language) == "":
		return nil, &ManifestError{Path: path, Field: "meta.language"}
	case strings.TrimSpace(raw.Git.Repo) == "":
		return nil, &ManifestError{Path: path, Field: "git.repo"}
	}
	if err := validPathSegment(raw.Meta.Name); err != nil {
		return nil, &ManifestError{Path: path, Field: "meta.name", Err: err}
	}
	if dir := filepath.Clean(raw.Git.Directory); filepath.IsAbs(dir) || dir == ".." || strings.HasPrefix(dir, "../") {
		return nil, &ManifestError{Path: path, Field: "git.directory", Err: errors.New("must stay inside the clone")}
	}

	m := &GameManifest{
		Name:      raw.Meta.Name,
		Language:  ParseLanguage(raw.Meta.Language),
		Repo:      raw.Git.Repo,
		Branch:    raw.Git.Branch,
		Directory: raw.Git.Directory,
		Frontend:  make(map[string]string, len(raw.Frontend)),
		Source:    path,
	}
	if raw.Meta.Description != nil {
		m.Description = *raw.Meta.Description
		m.HasDesc = true
	}
	for k, v := range raw.Frontend {
		if !validElementName(k) {
			return nil, &ManifestError{Path: path, Field: "emulationstation." + k, Err: errors.New("not a valid element name")}
		}
		s, err := frontendValue(v)
		if err != nil {
			return nil, &ManifestError{Path: path, Field: "emulationstation." + k, Err: err}
		}
		m.Frontend[k] = s
	}
	return m, nil
}

func validPathSegment(name string) error {
	if name == "." || name == ".." {
		return fmt.Errorf("%q is not a usable directory name", name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%q must be a single path segment", name)
	}
	return nil
}

// esTimeLayout is the date format EmulationStation reads in game lists.
const esTimeLayout = "20060102T150405"

func frontendValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case time.Time:
		return t.Format(esTimeLayout), nil
	case toml.LocalDate:
		return t.AsTime(time.UTC).Format(esTimeLayout), nil
	case toml.LocalDateTime:
		return t.AsTime(time.UTC).Format(esTimeLayout), nil
	case map[string]any, []any:
		return "", errors.New("must be a plain value")
	}
	return fmt.Sprint(v), nil
}

// validElementName accepts the subset of XML names that are safe as
// EmulationStation tags.
func validElementName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
