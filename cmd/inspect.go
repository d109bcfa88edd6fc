package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/protosy/internal/native"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <library>",
		Short: "Check that a library satisfies the plugin ABI",
		Long: `Open a library, resolve the four plugin exports and print the reported
name. The plugin is not activated; initialize runs once as part of opening.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			return runInspect(cmd, native.OpenLibrary, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, open native.Opener, path string) (err error) {
	a, err := native.OpenWith(open, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "path: %s\nname: %s\nexports: %s, %s, %s, %s\n",
		a.Path(), a.Name(),
		native.SymbolName, native.SymbolInitialize, native.SymbolOnLoad, native.SymbolOnUnload)
	return nil
}
