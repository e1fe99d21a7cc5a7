package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// bringupSchema closes the recognised options and carries the defaults.
// Keep the defaults in step with Default.
const bringupSchema = `
#Bringup: {
	upper_bound: int & >=2 & <=4294967295 | *1000
	cycles:      int & >=0 & <=4294967295 | *1
	timing:      bool | *false
	console:     bool | *false
	file:        string | *""

	log: {
		level:  "trace" | "debug" | *"info" | "warn" | "error" | "disabled"
		format: *"console" | "json"
	}

	metrics: {
		file:   string | *""
		listen: string | *""
	}

	tracing: {
		exporter: *"none" | "stdout" | "otlp"
		endpoint: string | *""
	}

	history: {
		path: string | *""
	}
}
`

// Schema evaluates CUE configuration against the #Bringup definition.
type Schema struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewSchema compiles the built-in schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()

	val := ctx.CompileString(bringupSchema, cue.Filename("bringup_schema.cue"))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		ctx:    ctx,
		schema: val.LookupPath(cue.ParsePath("#Bringup")),
	}, nil
}

// Decode unifies CUE source with the schema and decodes the result.
func (s *Schema) Decode(filename string, src []byte) (*Config, error) {
	val := s.ctx.CompileBytes(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, cueError(err)
	}

	unified := s.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(err)
	}

	cfg := &Config{}
	if err := unified.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

// cueError flattens a CUE error list into one error with positions.
func cueError(err error) error {
	var msgs []string
	for _, e := range errors.Errors(err) {
		msg := errors.Details(e, nil)
		if pos := errors.Positions(e); len(pos) > 0 {
			msg = fmt.Sprintf("%s:%d:%d: %s", pos[0].Filename(), pos[0].Line(), pos[0].Column(), msg)
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("invalid configuration: %s", joinLines(msgs))
}
