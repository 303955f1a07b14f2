package main

import (
	"fmt"

	"github.com/blazor-tools/btp/internal/config"
	"github.com/spf13/cobra"
)

func prefsCmd(opts *globalOptions) *cobra.Command {
	var useWebSocket bool

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long: `Show or change preferences stored in btp.json.

--use-websocket=true keeps WebSockets in SignalR negotiate responses,
so the proxy relays circuits over WebSocket instead of forcing
Server-Sent Events or long polling. btp.json is created if missing.

Examples:
  btp prefs
  btp prefs --use-websocket=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(opts)
			if err != nil {
				return err
			}
			prefs := config.NewPreferences(cfg)
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("use-websocket") {
				if err := prefs.SetUseWebSocket(useWebSocket); err != nil {
					return err
				}
				success(out, "Saved %s", cfg.Path())
			}
			fmt.Fprintf(out, "useWebSocket: %t\n", prefs.UseWebSocket())
			return nil
		},
	}

	cmd.Flags().BoolVar(&useWebSocket, "use-websocket", false, "Keep WebSockets in negotiate responses")

	return cmd
}
