package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readInput reads the file named by args, or stdin when there is none or
// it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}

func decodeHex(data []byte) ([]byte, error) {
	text := strings.Join(strings.Fields(string(data)), "")
	out, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return out, nil
}

func (a *app) print(cmd *cobra.Command, v interface{}) error {
	w := cmd.OutOrStdout()
	switch a.outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", a.outputFormat)
	}
}
