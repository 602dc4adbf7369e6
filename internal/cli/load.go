package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atom122158003/pandyle/internal/component"
	"github.com/atom122158003/pandyle/internal/document"
	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/engine"
	"github.com/atom122158003/pandyle/internal/extension"
)

// BindOptions holds the flags shared by commands that bind a template.
type BindOptions struct {
	Data         string // data file (json, yaml, cue, msgpack)
	Components   string // directory of .html and .md component sources
	ComponentTag string // placeholder element name

	// PassGenerator allows overriding the pass token generator (for testing).
	// If nil, defaults to engine.UUIDv7Generator.
	PassGenerator engine.PassTokenGenerator
}

func (o *BindOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Data, "data", "d", "", "data file (.json, .yaml, .yml, .cue, .msgpack)")
	cmd.Flags().StringVarP(&o.Components, "components", "c", "", "directory of component sources (.html, .md)")
	cmd.Flags().StringVar(&o.ComponentTag, "tag", engine.DefaultComponentTag, "component placeholder element name")
}

// loadData reads the data file, or returns an empty object when none is set.
func (o *BindOptions) loadData() (any, error) {
	if o.Data == "" {
		return map[string]any{}, nil
	}
	if _, err := os.Stat(o.Data); os.IsNotExist(err) {
		return nil, WrapExitError(ExitCommandError, "data file not found", err)
	}
	data, err := document.Load(o.Data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load data", err)
	}
	return data, nil
}

// engineOptions builds the engine configuration: builtins as process-wide
// methods and, when a components directory is set, a component loader.
func (o *BindOptions) engineOptions() ([]engine.Option, error) {
	ext := extension.NewRegistry()
	if err := extension.RegisterBuiltins(ext); err != nil {
		return nil, err
	}
	opts := []engine.Option{engine.WithGlobalExtensions(ext)}
	if o.ComponentTag != "" {
		opts = append(opts, engine.WithComponentTag(o.ComponentTag))
	}
	if o.PassGenerator != nil {
		opts = append(opts, engine.WithPassTokenGenerator(o.PassGenerator))
	}
	if o.Components != "" {
		info, err := os.Stat(o.Components)
		if err != nil || !info.IsDir() {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("components directory not found: %s", o.Components))
		}
		reg := component.NewRegistry()
		if err := reg.AddFS(os.DirFS(o.Components)); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load components", err)
		}
		slog.Info("components loaded", "dir", o.Components, "count", len(reg.Names()))
		opts = append(opts, engine.WithLoader(reg))
	}
	return opts, nil
}

// bindTemplate parses the template file, binds data to it and runs the
// first render pass.
func bindTemplate(ctx context.Context, templatePath string, o *BindOptions, data any) (*engine.Engine, error) {
	f, err := os.Open(templatePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open template", err)
	}
	defer f.Close()

	root, err := dom.ParseFragment(f)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse template", err)
	}
	opts, err := o.engineOptions()
	if err != nil {
		return nil, err
	}
	eng, err := engine.Bind(ctx, root, data, opts...)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "render failed", err)
	}
	return eng, nil
}

// outputError reports err through the formatter and returns it unchanged,
// so the caller still exits with its code.
func outputError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var exitErr *ExitError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeNotFound
	case errors.As(err, &exitErr) && exitErr.Code == ExitFailure:
		code = ErrCodeRender
	case errors.As(err, &exitErr) && exitErr.Err != nil:
		code = ErrCodeDecode
	}
	_ = f.Error(code, err.Error(), nil)
	return err
}
