package arcade

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/exp/maps"
)

const imageField = "image"

var reservedFields = map[string]bool{"path": true, "name": true, "desc": true}

// Field is one extra catalog element copied from the manifest.
type Field struct {
	Name  string
	Value string
}

// CatalogEntry is the frontend's view of one game.
type CatalogEntry struct {
	Path        string
	Name        string
	Description string
	HasDesc     bool
	Image       string
	Fields      []Field
}

// Catalog accumulates entries in the order they are added. Entries are
// copied in and out; nothing outside can alter what gets written.
type Catalog struct {
	entries []CatalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Entry builds the catalog entry for a game without adding it.
func Entry(cfg Config, m *GameManifest) CatalogEntry {
	log := cfg.logger().With("game", m.Name)
	e := CatalogEntry{
		Path:        cfg.InstalledScript(m),
		Name:        m.Name,
		Description: m.Description,
		HasDesc:     m.HasDesc,
	}
	if !m.HasDesc {
		log.Info("no description")
	}
	if img, ok := m.Frontend[imageField]; ok && img != "" {
		e.Image = resolveImage(cfg, m, img)
	} else {
		log.Info("no image")
	}

	// Fields follow manifest order. Manifests not read from a file have none.
	keys := m.FrontendOrder
	if len(keys) != len(m.Frontend) {
		keys = maps.Keys(m.Frontend)
		slices.Sort(keys)
	}
	for _, k := range keys {
		if k == imageField {
			continue
		}
		if reservedFields[k] {
			log.Warn("frontend field shadows a catalog element, skipping", "field", k)
			continue
		}
		e.Fields = append(e.Fields, Field{Name: k, Value: m.Frontend[k]})
	}
	return e
}

// resolveImage places a relative image path inside the installed build dir.
func resolveImage(cfg Config, m *GameManifest, img string) string {
	if filepath.IsAbs(img) || img[0] == '~' {
		return img
	}
	return filepath.Join(cfg.InstallHome, cfg.GamesDir, m.Name, m.Directory, img)
}

// Append adds the entry for m and returns it.
func (c *Catalog) Append(cfg Config, m *GameManifest) CatalogEntry {
	e := Entry(cfg, m)
	c.entries = append(c.entries, e)
	return e
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	for i, e := range c.entries {
		e.Fields = slices.Clone(e.Fields)
		out[i] = e
	}
	return out
}

func (e CatalogEntry) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "game"}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	elems := []Field{{"path", e.Path}, {"name", e.Name}}
	if e.HasDesc {
		elems = append(elems, Field{"desc", e.Description})
	}
	if e.Image != "" {
		elems = append(elems, Field{imageField, e.Image})
	}
	elems = append(elems, e.Fields...)
	for _, f := range elems {
		if err := enc.EncodeElement(f.Value, xml.StartElement{Name: xml.Name{Local: f.Name}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type gameList struct {
	XMLName xml.Name       `xml:"gameList"`
	Games   []CatalogEntry `xml:"game"`
}

// Encode renders the catalog as an indented game list document.
func (c *Catalog) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(gameList{Games: c.entries}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile replaces the file at path with the encoded catalog.
func (c *Catalog) WriteFile(path string) error {
	b, err := c.Encode()
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
