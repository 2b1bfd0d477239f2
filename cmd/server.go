package cmd

import (
	"tezbeat/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TezBeat HTTP server",
	Long:  `Start the TezBeat API server: wallet sessions, music NFT library, playback, analytics, marketplace data and audio streaming.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
