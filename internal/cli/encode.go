package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		messageType string
		inputFormat string
		hexOutput   bool
	)
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a JSON or YAML document as a binary message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc := make(map[string]interface{})
			switch inputFormat {
			case "json":
				dec := json.NewDecoder(bytes.NewReader(data))
				dec.UseNumber()
				err = dec.Decode(&doc)
			case "yaml":
				err = yaml.Unmarshal(data, &doc)
			default:
				return fmt.Errorf("unknown input format %q", inputFormat)
			}
			if err != nil {
				return fmt.Errorf("failed to read %s input: %w", inputFormat, err)
			}

			out, err := a.codec.MarshalMap(doc, messageType)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", messageType, err)
			}
			a.log.Debug().Str("type", messageType).Int("bytes", len(out)).Msg("encoded message")
			if hexOutput {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&messageType, "type", "t", "", "message type to encode as")
	cmd.Flags().StringVarP(&inputFormat, "input", "i", "json", "input format: json, yaml")
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "write hex text instead of raw bytes")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
