// Package templates loads dashboard templates from YAML or JSON documents
// and rejects malformed ones before they reach the engine.
package templates

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
)

const schemaResource = "template.schema.json"

//go:embed data/template.schema.json data/sales_overview.yaml
var files embed.FS

var (
	compileOnce    sync.Once
	templateSchema *jsonschema.Schema
	compileErr     error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := files.ReadFile("data/" + schemaResource)
		if err != nil {
			compileErr = fmt.Errorf("read template schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResource, strings.NewReader(string(raw))); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		templateSchema, compileErr = compiler.Compile(schemaResource)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile template schema: %w", compileErr)
		}
	})
	return templateSchema, compileErr
}

// Parse decodes a YAML or JSON template document, checks it against the
// document schema and then against the semantic rules in Validate.
func Parse(data []byte) (*models.DashboardTemplate, error) {
	canonical, err := toJSON(data)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(canonical, &generic); err != nil {
		return nil, errs.NewValidationError("template cannot be represented as JSON: " + err.Error())
	}

	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(generic); err != nil {
		return nil, errs.NewTemplateError(documentID(generic), schemaProblems(err))
	}

	var t models.DashboardTemplate
	if err := json.Unmarshal(canonical, &t); err != nil {
		return nil, errs.NewValidationError("failed to decode template: " + err.Error())
	}
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Default returns the built-in Sales Overview template.
func Default() (*models.DashboardTemplate, error) {
	raw, err := files.ReadFile("data/sales_overview.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// LoadDir parses every .yaml, .yml and .json file in dir, in name order.
// Template ids must be unique across files.
func LoadDir(dir string) ([]*models.DashboardTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*models.DashboardTemplate
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, errs.NewAlreadyExistsError(fmt.Sprintf("template %q is defined in both %s and %s", t.ID, prev, e.Name()))
		}
		seen[t.ID] = e.Name()
		out = append(out, t)
	}
	return out, nil
}

// toJSON returns data as JSON. YAML documents are round-tripped so numbers
// become float64 and maps have string keys, which is what both the schema
// validator and models.Value expect.
func toJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.NewValidationError("template is not valid YAML or JSON: " + err.Error())
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errs.NewValidationError("template cannot be represented as JSON: " + err.Error())
	}
	return out, nil
}

func documentID(doc any) string {
	if m, ok := doc.(map[string]any); ok {
		if id, ok := m["id"].(string); ok {
			return id
		}
	}
	return ""
}

// schemaProblems flattens a schema validation error into its leaf causes.
func schemaProblems(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var problems []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			problems = append(problems, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return problems
}
