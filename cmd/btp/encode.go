package main

import (
	"encoding/hex"
	"fmt"

	"github.com/blazor-tools/btp/internal/errors"
	"github.com/spf13/cobra"
)

func encodeCmd(opts *globalOptions) *cobra.Command {
	var hexOutput bool

	cmd := &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Encode JSON messages into a BlazorPack batch",
		Long: `Encode a JSON array of messages into a raw BlazorPack batch.

Every message is validated first; if any is invalid nothing is written.

Examples:
  btp encode edited.json > capture.bin
  echo '[{"MessageType":6}]' | btp encode --hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(opts)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			raw, err := newCodec(cfg).Encode(text)
			if err != nil {
				return errors.New("E061").WithInput(inputName(args), -1).Wrap(err)
			}

			out := cmd.OutOrStdout()
			if hexOutput {
				fmt.Fprintln(out, hex.EncodeToString(raw))
				return nil
			}
			_, err = out.Write(raw)
			return err
		},
	}

	cmd.Flags().BoolVar(&hexOutput, "hex", false, "Print the batch as hex")

	return cmd
}
