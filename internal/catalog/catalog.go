// Package catalog decodes and validates the departure catalog. One canonical
// schema is supported natively; the two older schemas are converted explicitly.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"bus-schedule/internal/schedule"
)

//go:embed data/schedules.json
var bundled []byte

var (
	ErrUnknownSchema  = errors.New("unknown catalog schema")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// CanonicalVersion is the value of "version" in canonical documents.
const CanonicalVersion = 2

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type Schema string

const (
	SchemaCanonical   Schema = "canonical-v2"
	SchemaFlat        Schema = "flat-v1"
	SchemaSharedStops Schema = "shared-stop-v0"
)

// document is the union of every schema's top-level fields.
type document struct {
	Version    int                  `json:"version" yaml:"version"`
	Departures []schedule.Departure `json:"departures" yaml:"departures"`
	Buses      []legacyBus          `json:"buses" yaml:"buses"`
}

func parse(data []byte, format Format) (*document, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &doc, nil
}

func detect(doc *document) (Schema, error) {
	switch {
	case doc.Version == CanonicalVersion || (doc.Version == 0 && len(doc.Departures) > 0):
		return SchemaCanonical, nil
	case doc.Version != 0:
		return "", fmt.Errorf("%w: version %d", ErrUnknownSchema, doc.Version)
	case len(doc.Buses) == 0:
		return "", fmt.Errorf("%w: no departures or buses", ErrUnknownSchema)
	}
	for _, b := range doc.Buses {
		if len(b.Stops) > 0 || len(b.StartTimes) > 0 {
			return SchemaSharedStops, nil
		}
	}
	return SchemaFlat, nil
}

// Detect reports which schema a document uses.
func Detect(data []byte, format Format) (Schema, error) {
	doc, err := parse(data, format)
	if err != nil {
		return "", err
	}
	return detect(doc)
}

// Decode reads a catalog in any supported schema and returns it in canonical
// form. The result is not validated.
func Decode(r io.Reader, format Format) (*schedule.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	doc, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	schema, err := detect(doc)
	if err != nil {
		return nil, err
	}

	var cat *schedule.Catalog
	switch schema {
	case SchemaCanonical:
		cat = &schedule.Catalog{Departures: doc.Departures}
	case SchemaFlat:
		cat = convertFlat(doc.Buses)
	case SchemaSharedStops:
		cat = convertSharedStops(doc.Buses)
	}
	if schema != SchemaCanonical {
		log.Info().Str("schema", string(schema)).Int("departures", len(cat.Departures)).Msg("Converted legacy catalog")
	}
	return cat, nil
}

// Load decodes and validates.
func Load(r io.Reader, format Format) (*schedule.Catalog, error) {
	cat, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadFile loads a .json, .yaml or .yml catalog from disk.
func LoadFile(path string) (*schedule.Catalog, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("catalog %s: unsupported extension", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Bundled returns the catalog shipped inside the binary.
func Bundled() (*schedule.Catalog, error) {
	return Load(bytes.NewReader(bundled), FormatJSON)
}
