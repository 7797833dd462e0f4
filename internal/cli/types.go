package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	var withBuiltins bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the loaded message and enum types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range a.codec.ListMessages() {
				if withBuiltins || !strings.HasPrefix(name, "google.protobuf.") {
					fmt.Fprintf(w, "message %s\n", name)
				}
			}
			for _, name := range a.codec.ListEnums() {
				if withBuiltins || !strings.HasPrefix(name, "google.protobuf.") {
					fmt.Fprintf(w, "enum    %s\n", name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withBuiltins, "builtins", false, "include the google.protobuf well-known types")
	return cmd
}
