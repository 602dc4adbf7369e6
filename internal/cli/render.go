package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	BindOptions
	Output string // write markup here instead of stdout
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template against a data file",
		Long: `Bind a data file to an HTML template and print the rendered markup.

Component placeholders (<c name="...">) are filled from the components
directory, where card.html and docs/intro.md register "card" and
"docs/intro".

Examples:
  pandyle render page.html --data data.yaml
  pandyle render page.html -d data.json -c ./components -o out.html
  pandyle render page.html -d data.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write markup to file instead of stdout")

	return cmd
}

func runRender(opts *RenderOptions, templatePath string, cmd *cobra.Command) error {
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
	eng, err := bindTemplate(cmd.Context(), templatePath, &opts.BindOptions, data)
	if err != nil {
		return outputError(formatter, err)
	}
	markup, err := eng.HTML()
	if err != nil {
		return outputError(formatter, WrapExitError(ExitFailure, "failed to serialize markup", err))
	}
	formatter.VerboseLog("Rendered %d node(s), %d relation(s)", eng.Renders(), eng.Relations().Len())

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(markup), 0o644); err != nil {
			return outputError(formatter, WrapExitError(ExitCommandError, "failed to write output", err))
		}
		if opts.Format == "json" {
			return formatter.Success(map[string]any{"output": opts.Output, "renders": eng.Renders()})
		}
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", opts.Output)
		return nil
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"html":      markup,
			"renders":   eng.Renders(),
			"relations": eng.Relations().Paths(),
		})
	}
	return formatter.Success(markup)
}
