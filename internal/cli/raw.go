package cli

import (
	"github.com/spf13/cobra"
)

func newRawCmd(a *app) *cobra.Command {
	var hexInput bool
	cmd := &cobra.Command{
		Use:   "raw [file]",
		Short: "Dump the fields of a binary message without a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if hexInput {
				if data, err = decodeHex(data); err != nil {
					return err
				}
			}
			fields, err := a.codec.ParseRaw(data)
			if err != nil {
				return err
			}
			return a.print(cmd, fields)
		},
	}
	cmd.Flags().BoolVar(&hexInput, "hex", false, "input is hex text instead of raw bytes")
	return cmd
}
