package generation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/phrazzld/studyrooms-api/internal/schema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled caches compiled JSON schemas by schema name.
var compiled sync.Map // map[string]*jsonschema.Schema

// Validate checks that raw is JSON satisfying s. Failures wrap ErrInvalidResponse.
func Validate(s schema.Schema, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: not JSON: %v", ErrInvalidResponse, err)
	}

	if s.Definition == nil {
		return nil
	}

	c, err := compile(s)
	if err != nil {
		return fmt.Errorf("%w: compile schema %q: %v", ErrInvalidConfig, s.Name, err)
	}

	if err := c.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func compile(s schema.Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants generic JSON values, so round-trip the Go map.
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiled.Store(s.Name, sch)
	return sch, nil
}
