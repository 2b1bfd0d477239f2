package cmd

import (
	"fmt"
	"log"

	"tezbeat/core/auth"

	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Faucet administration",
}

var faucetHashCmd = &cobra.Command{
	Use:   "hash-code <code>",
	Short: "Hash a faucet invite code",
	Long:  `Print the bcrypt hash of an invite code, for use as FAUCET_INVITE_HASH.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.HashInviteCode(args[0])
		if err != nil {
			log.Fatalf("Failed to hash invite code: %v", err)
		}
		fmt.Println(hash)
	},
}

func init() {
	faucetCmd.AddCommand(faucetHashCmd)
	rootCmd.AddCommand(faucetCmd)
}
