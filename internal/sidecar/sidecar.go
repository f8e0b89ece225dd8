// Package sidecar writes the metadata text file stored beside each downloaded image.
package sidecar

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

// DirName is the subdirectory of a feed directory that holds sidecars.
const DirName = "metadata"

// Well-known keys. CoreKeys are always written first, in this order.
const (
	KeyDate      = "date"
	KeyTitle     = "title"
	KeyCopyright = "copyright"
	KeyURL       = "url"
)

// CoreKeys lead every sidecar.
var CoreKeys = []string{KeyDate, KeyTitle, KeyCopyright, KeyURL}

const (
	ruleWidth  = 20
	labelWidth = 16
)

type field struct {
	key   string
	value string
}

// Metadata is an ordered set of descriptive fields for one image.
type Metadata struct {
	Source string
	fields []field
}

// New returns empty metadata for the named feed.
func New(source string) *Metadata {
	return &Metadata{Source: source}
}

// Set adds or replaces key. Values are reduced to plain text.
func (m *Metadata) Set(key, value string) *Metadata {
	value = plainText(value)
	for i := range m.fields {
		if m.fields[i].key == key {
			m.fields[i].value = value
			return m
		}
	}
	m.fields = append(m.fields, field{key: key, value: value})
	return m
}

// Get returns the value stored for key.
func (m *Metadata) Get(key string) (string, bool) {
	for _, f := range m.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return "", false
}

// Render formats the sidecar: a "<SOURCE> METADATA" header, a rule, the core
// keys that were set, then every other non-empty key in insertion order.
func (m *Metadata) Render() []byte {
	var buf bytes.Buffer

	source := m.Source
	if source == "" {
		source = "Unknown Source"
	}
	fmt.Fprintf(&buf, "%s METADATA\n", strings.ToUpper(source))
	buf.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	for _, key := range CoreKeys {
		if value, ok := m.Get(key); ok {
			fmt.Fprintf(&buf, "%-*s: %s\n", labelWidth, Label(key), value)
		}
	}
	for _, f := range m.fields {
		if slices.Contains(CoreKeys, f.key) || f.value == "" {
			continue
		}
		fmt.Fprintf(&buf, "%-*s: %s\n", labelWidth, Label(f.key), f.value)
	}
	return buf.Bytes()
}

// Label renders a key as space-separated title case: "location_subject" -> "Location Subject".
func Label(key string) string {
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// Path returns the sidecar path for an image: <dir>/metadata/<stem>.txt.
func Path(imagePath string) string {
	dir, file := filepath.Split(imagePath)
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, DirName, stem+".txt")
}

// Write renders m next to imagePath. The file appears complete or not at all.
func Write(m *Metadata, imagePath string) (string, error) {
	target := Path(imagePath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", sidecarError(err, target, "create_dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".sidecar-*.tmp")
	if err != nil {
		return "", sidecarError(err, target, "create_temp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(m.Render()); err != nil {
		tmp.Close()
		return "", sidecarError(err, target, "write")
	}
	if err := tmp.Close(); err != nil {
		return "", sidecarError(err, target, "close")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", sidecarError(err, target, "chmod")
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", sidecarError(err, target, "rename")
	}
	return target, nil
}

func sidecarError(err error, path, op string) error {
	return errors.New(err).
		Component("sidecar").
		Category(errors.CategorySidecar).
		FileContext(path).
		Context("operation", op).
		Build()
}

// plainText strips markup and entities that feeds embed in descriptive fields.
// URLs are left alone.
func plainText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if !strings.ContainsAny(value, "<&") {
		return value
	}
	return strings.TrimSpace(html2text.HTML2Text(value))
}
