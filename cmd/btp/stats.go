package main

import (
	"github.com/blazor-tools/btp/pkg/stats"
	"github.com/spf13/cobra"
)

func statsCmd(opts *globalOptions) *cobra.Command {
	var hexInput bool

	cmd := &cobra.Command{
		Use:   "stats [files...]",
		Short: "Summarise BlazorPack captures",
		Long: `Print message variant counts and frame length statistics for one or
more captured batches as JSON. Reads stdin when no file is given.

Examples:
  btp stats captures/*.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(opts)
			if err != nil {
				return err
			}
			codec := newCodec(cfg)
			collector := stats.NewCollector()

			inputs := args
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			for _, name := range inputs {
				one := []string{name}
				raw, err := readInput(cmd, one)
				if err != nil {
					return err
				}
				if hexInput {
					if raw, err = decodeHex(inputName(one), raw); err != nil {
						return err
					}
				}
				if err := collector.AddRaw(codec, raw); err != nil {
					warn(cmd.ErrOrStderr(), "%s: %v", inputName(one), err)
				}
			}

			summary, err := collector.Summary()
			if err != nil {
				return err
			}
			return summary.Print(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&hexInput, "hex", false, "Inputs are hex encoded")

	return cmd
}
