package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the catalog file format major version this build reads.
const SupportedMajor = "v1"

const schemaURL = "schema://catalog-file.json"

// File is the on-disk catalog import format.
type File struct {
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// ValidationError reports a catalog file that failed schema or version checks.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog file %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// LoadFile reads and validates a catalog file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return Load(path, f)
}

// Load parses a catalog file, validates it against the file schema and
// checks that its format version is readable by this build.
func Load(source string, r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := fileSchemaCompiled()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("decode: %w", err)}
	}

	if !semver.IsValid(file.Version) {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("version %q is not a semantic version", file.Version)}
	}
	if major := semver.Major(file.Version); major != SupportedMajor {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("unsupported format %s (want %s.x)", major, SupportedMajor)}
	}

	seen := make(map[string]bool, len(file.Questions))
	for _, q := range file.Questions {
		if seen[q.ID] {
			return nil, &ValidationError{Source: source, Err: fmt.Errorf("duplicate question id %q", q.ID)}
		}
		seen[q.ID] = true
	}

	return &file, nil
}

// fileSchemaCompiled compiles the catalog file schema once.
func fileSchemaCompiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go maps with typed slices.
		defBytes, err := json.Marshal(fileSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
