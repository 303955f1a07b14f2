package main

import (
	"github.com/blazor-tools/btp/internal/errors"
	"github.com/spf13/cobra"
)

func decodeCmd(opts *globalOptions) *cobra.Command {
	var (
		hexInput bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode a BlazorPack batch into JSON",
		Long: `Decode a raw BlazorPack batch into the JSON form used for editing.

An undecodable batch prints the placeholder message unless --strict
is given, in which case the command fails.

Examples:
  btp decode capture.bin
  xxd -p capture.bin | btp decode --hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(opts)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if hexInput {
				if raw, err = decodeHex(inputName(args), raw); err != nil {
					return err
				}
			}

			codec := newCodec(cfg)
			if strict {
				if _, err := codec.Unpack(raw); err != nil {
					return errors.New("E060").WithInput(inputName(args), -1).Wrap(err)
				}
			}
			out := cmd.OutOrStdout()
			out.Write(codec.Decode(raw))
			out.Write([]byte("\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&hexInput, "hex", false, "Input is hex encoded")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of printing the placeholder")

	return cmd
}
