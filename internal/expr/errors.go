package expr

import (
	"errors"

	"github.com/atom122158003/pandyle/internal/store"
	"github.com/atom122158003/pandyle/internal/value"
)

// Sentinel errors. ErrMalformedPath and ErrNotCallable are shared with the
// packages that own those concepts so errors.Is works across layers.
var (
	ErrMalformedPath = store.ErrMalformedPath
	ErrNotCallable   = value.ErrNotCallable
	ErrUnknownAlias  = errors.New("unknown alias")
	ErrSyntax        = errors.New("expression syntax error")
)
