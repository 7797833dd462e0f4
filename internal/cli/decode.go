package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		messageType string
		hexInput    bool
	)
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a binary message to JSON or YAML",
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
			result, err := a.codec.Parse(data, messageType)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", messageType, err)
			}
			a.log.Debug().Str("type", messageType).Int("bytes", len(data)).Msg("decoded message")
			return a.print(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&messageType, "type", "t", "", "message type to decode as")
	cmd.Flags().BoolVar(&hexInput, "hex", false, "input is hex text instead of raw bytes")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
