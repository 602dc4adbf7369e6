package engine

import (
	"errors"
	"fmt"

	"github.com/atom122158003/pandyle/internal/expr"
	"github.com/atom122158003/pandyle/internal/store"
)

// Directive names reported in RenderError.
const (
	DirectiveBind      = "p-bind"
	DirectiveIf        = "p-if"
	DirectiveContext   = "p-context"
	DirectiveEach      = "p-each"
	DirectiveText      = "text"
	DirectiveComponent = "component"
)

// RenderError reports a failure while processing one directive of one node.
//
// Render errors are not recovered locally: the first failure stops the pass
// and propagates out of Run, Render or Set.
type RenderError struct {
	// Tag is the element name of the failing node.
	Tag string

	// Directive is the directive being applied.
	Directive string

	// Path is the data path of the node's parent scope, if any.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render <%s> %s (path=%s): %v", e.Tag, e.Directive, e.Path, e.Err)
	}
	return fmt.Sprintf("render <%s> %s: %v", e.Tag, e.Directive, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// wrapRender attaches node information unless err already carries it.
func wrapRender(tag, directive, path string, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Tag: tag, Directive: directive, Path: path, Err: err}
}

// IsSyntaxError reports whether err comes from a malformed literal or
// condition expression.
func IsSyntaxError(err error) bool {
	return errors.Is(err, expr.ErrSyntax)
}

// IsPathError reports whether err comes from a malformed property path.
func IsPathError(err error) bool {
	return errors.Is(err, expr.ErrMalformedPath)
}

// IsNotCallableError reports whether err comes from calling something that
// is not a function.
func IsNotCallableError(err error) bool {
	return errors.Is(err, expr.ErrNotCallable)
}

// IsUnknownAliasError reports whether err comes from an undefined @alias.
func IsUnknownAliasError(err error) bool {
	return errors.Is(err, expr.ErrUnknownAlias)
}

// IsWriteError reports whether err comes from a store write that could not
// be applied.
func IsWriteError(err error) bool {
	return errors.Is(err, store.ErrNotAssignable) || errors.Is(err, store.ErrPathNotFound)
}
