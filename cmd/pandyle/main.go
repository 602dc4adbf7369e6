// Command pandyle renders HTML templates bound to data files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atom122158003/pandyle/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
