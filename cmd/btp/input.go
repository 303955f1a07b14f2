package main

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/blazor-tools/btp/internal/config"
	"github.com/blazor-tools/btp/internal/errors"
	"github.com/blazor-tools/btp/pkg/blazorpack"
	"github.com/spf13/cobra"
)

// readInput reads the file named by args[0], or stdin for "-" or no args.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, errors.New("E140").WithInput(inputName(args), -1).Wrap(err)
	}
	return data, nil
}

// decodeHex decodes hex digits, ignoring whitespace.
func decodeHex(name string, text []byte) ([]byte, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(string(text)), ""))
	if err != nil {
		return nil, errors.New("E062").WithInput(name, -1).Wrap(err)
	}
	return raw, nil
}

// loadConfig loads --config or the nearest btp.json.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.LoadFromWorkingDir()
}

// loadConfigOrDefaults is loadConfig, falling back to defaults bound to
// ./btp.json when no file exists.
func loadConfigOrDefaults(opts *globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadOrNew(opts.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if err == nil {
		return cfg, nil
	}
	if be, ok := err.(*errors.BTPError); ok && be.Code == "E141" {
		return config.LoadOrNew(config.ConfigFileName)
	}
	return nil, err
}

// newCodec builds a codec from configuration.
func newCodec(cfg *config.Config) *blazorpack.Codec {
	return blazorpack.New(blazorpack.WithMaxFrameSize(cfg.Codec.MaxFrameSize))
}
