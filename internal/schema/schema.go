// Package schema validates stored documents against CUE definitions.
//
// Decoding with encoding/json alone accepts structurally wrong documents
// (a journal entry without an id, a position given as a string); those
// would surface later as broken scenes. Validate rejects them at read time
// so the caller sees one read error instead.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed documents.cue
var documentsCUE string

// Document names a top-level definition in documents.cue.
type Document string

const (
	Wardrobe  Document = "#Wardrobe"
	Journal   Document = "#Journal"
	Occasions Document = "#Occasions"
)

// Validator checks JSON documents against the embedded definitions.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so all
// evaluation is serialized by an internal mutex.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded definitions.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(documentsCUE, cue.Filename("documents.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns a process-wide Validator, compiling it on first use.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = NewValidator()
	})
	return defaultValidator, defaultErr
}

// Validate checks that data is a concrete instance of doc.
func (v *Validator) Validate(doc Document, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	def := v.schema.LookupPath(cue.ParsePath(string(doc)))
	if !def.Exists() {
		return fmt.Errorf("unknown document %s", doc)
	}

	value := v.ctx.CompileBytes(data, cue.Filename(string(doc)+".json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("parse %s: %w", doc, err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate %s: %w", doc, err)
	}
	return nil
}

// Validate checks data against doc using the Default validator.
func Validate(doc Document, data []byte) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.Validate(doc, data)
}
