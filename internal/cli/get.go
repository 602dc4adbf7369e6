package cli

import (
	"github.com/spf13/cobra"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/engine"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	BindOptions
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <path>...",
		Short: "Read values from a data file by property path",
		Long: `Resolve property paths against a data file the same way template
tokens do, including builtin methods and the @root alias.

With one path the value is printed; with several, an object keyed by path.

Examples:
  pandyle get --data data.yaml user.name
  pandyle get -d data.json 'items[0].title' 'upper(user.name)' --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "data file (.json, .yaml, .yml, .cue, .msgpack)")

	return cmd
}

func runGet(opts *GetOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := opts.loadData()
	if err != nil {
		return outputError(formatter, err)
	}
	engineOpts, err := opts.engineOptions()
	if err != nil {
		return outputError(formatter, err)
	}
	eng := engine.New(dom.NewContainer(), data, engineOpts...)

	var spec any = paths[0]
	if len(paths) > 1 {
		byPath := make(map[string]string, len(paths))
		for _, p := range paths {
			byPath[p] = p
		}
		spec = byPath
	}
	v, err := eng.Get(spec)
	if err != nil {
		return outputError(formatter, WrapExitError(ExitFailure, "failed to resolve path", err))
	}
	return formatter.Success(v)
}
