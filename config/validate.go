package config

import (
	_ "embed"
	"encoding/json"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Validate checks a decoded options table against the embedded CUE schema:
// unknown keys, mistyped values, and out of range limits are all rejected here
// so that the option struct never sees them.
func Validate(raw map[string]interface{}) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return errors.Wrap(schema.Err(), "compiling options schema")
	}

	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "marshaling options")
	}

	dataValue := ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return errors.Wrap(dataValue.Err(), "compiling options as CUE")
	}

	optionsDef := schema.LookupPath(cue.ParsePath("#Options"))
	if optionsDef.Err() != nil {
		return errors.Wrap(optionsDef.Err(), "looking up #Options definition")
	}

	unified := optionsDef.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return errors.Wrap(err, "invalid options")
	}

	return nil
}
