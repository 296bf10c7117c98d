package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

// EmbeddedSource is the Source of the built-in catalog.
const EmbeddedSource = "embedded"

//go:embed default.yaml
var defaultCatalog []byte

//go:embed schema.json
var entrySchema string

var entryValidator = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(entrySchema))
})

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, EmbeddedSource)
}

// Load reads the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile reads a YAML or JSON catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a catalog document. The document is either a list of offers
// or a mapping with a "scholarships" list. Only entries without an identity
// are recorded in Rejected; an identified entry that fails the structural
// check is kept with invalid requirements so it is still reported.
func Parse(data []byte, source string) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}

	var entries []any
	switch typed := doc.(type) {
	case nil:
	case []any:
		entries = typed
	case map[string]any:
		list, ok := typed["scholarships"].([]any)
		if !ok && typed["scholarships"] != nil {
			return nil, fmt.Errorf("parse catalog %s: scholarships must be a list", source)
		}
		entries = list
	default:
		return nil, fmt.Errorf("parse catalog %s: unexpected document type %T", source, doc)
	}

	c := &Catalog{Source: source, Items: make([]eligibility.Scholarship, 0, len(entries))}
	for i, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			c.Rejected = append(c.Rejected, Rejection{Index: i, Errors: []string{fmt.Sprintf("entry is %T, not a mapping", entry)}})
			continue
		}
		if missing := missingIdentity(raw); len(missing) > 0 {
			c.Rejected = append(c.Rejected, Rejection{Index: i, ID: textField(raw, "id"), Errors: missing})
			continue
		}

		errs, err := validateEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("validate catalog entry %d: %w", i, err)
		}

		var s eligibility.Scholarship
		if len(errs) == 0 {
			if s, err = decodeEntry(raw); err != nil {
				errs = []string{err.Error()}
			}
		}
		if len(errs) > 0 {
			s = identityOf(raw)
			s.Requirements = eligibility.InvalidRequirements(strings.Join(errs, "; "))
		}
		c.Items = append(c.Items, s)
	}

	return c, nil
}

func missingIdentity(raw map[string]any) []string {
	var missing []string
	for _, key := range []string{"id", "name"} {
		if strings.TrimSpace(textField(raw, key)) == "" {
			missing = append(missing, key+" must be a non-empty string")
		}
	}
	return missing
}

// identityOf keeps the descriptive fields of an entry that failed decoding.
func identityOf(raw map[string]any) eligibility.Scholarship {
	s := eligibility.Scholarship{
		ID:           textField(raw, "id"),
		Name:         textField(raw, "name"),
		Organization: textField(raw, "organization"),
		Deadline:     textField(raw, "deadline"),
		Description:  textField(raw, "description"),
	}
	if amount, ok := raw["amount"].(int); ok && amount >= 0 {
		s.Amount = int64(amount)
	}
	return s
}

func validateEntry(raw map[string]any) ([]string, error) {
	schema, err := entryValidator()
	if err != nil {
		return nil, fmt.Errorf("compile entry schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

func decodeEntry(raw map[string]any) (eligibility.Scholarship, error) {
	var s eligibility.Scholarship
	cfg := &mapstructure.DecoderConfig{
		Result:     &s,
		TagName:    "json",
		DecodeHook: mapstructure.TextUnmarshallerHookFunc(),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return s, err
	}
	if err := decoder.Decode(raw); err != nil {
		return s, err
	}
	return s, nil
}

func textField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
