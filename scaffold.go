package arcade

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/stoewer/go-strcase"
)

// Slug derives a manifest name from a display title, e.g.
// "Space Invaders" becomes "space-invaders".
func Slug(title string) string {
	return strcase.KebabCase(strings.TrimSpace(title))
}

// NewManifestV1 fills in a manifest for the scaffold command. Empty
// optional values are left out of the encoded file.
func NewManifestV1(name string, lang Language, description, repo, branch, directory string) *ManifestV1 {
	raw := &ManifestV1{
		Meta: MetaConfig{Name: name, Language: string(lang)},
		Git:  GitConfig{Repo: repo, Branch: branch, Directory: directory},
	}
	if description != "" {
		raw.Meta.Description = &description
	}
	return raw
}

func EncodeManifest(raw *ManifestV1) ([]byte, error) {
	return toml.Marshal(raw)
}

// WriteManifest validates raw and writes it as <dir>/<name>.toml. An existing
// manifest is never overwritten.
func WriteManifest(dir string, raw *ManifestV1) (string, error) {
	path := filepath.Join(dir, raw.Meta.Name+".toml")
	if _, err := raw.validate(path); err != nil {
		return "", err
	}
	b, err := EncodeManifest(raw)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("manifest %s already exists", path)
		}
		return "", err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
