package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"tezbeat/config"
	"tezbeat/core/tzkt"
	"tezbeat/db"
	"tezbeat/model"
	"tezbeat/repository"

	"github.com/spf13/cobra"
)

var tzktStore bool

var tzktCmd = &cobra.Command{
	Use:   "tzkt <address>",
	Short: "Fetch a wallet's music NFTs from the indexer",
	Long:  `Fetch a wallet's FA2 music NFTs from the TzKT indexer and print them. With --store the library cache in MySQL is replaced.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		address := args[0]
		if !model.ValidAddress(address) {
			log.Fatalf("Invalid Tezos address: %s", address)
		}

		cfg := config.Load()
		client := tzkt.NewClient(cfg.TzktBaseURL, cfg.TokenPageLimit)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		nfts, err := client.FetchMusicLibrary(ctx, address)
		if err != nil {
			log.Fatalf("Indexer fetch failed: %v", err)
		}

		fmt.Printf("Found %d music NFTs for %s\n", len(nfts), address)
		for _, n := range nfts {
			fmt.Printf("  %-40s  %s - %s (%s)\n", n.ID, n.AudioMetadata.Artist, n.Name, n.Collection)
		}

		if !tzktStore {
			return
		}

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseDB()
		if err := db.InitDB(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}

		repo := repository.NewMySQLNFTRepository()
		if err := repo.ReplaceLibrary(ctx, address, nfts); err != nil {
			log.Fatalf("Failed to store library: %v", err)
		}
		fmt.Println("Library cache updated.")
	},
}

func init() {
	tzktCmd.Flags().BoolVar(&tzktStore, "store", false, "replace the MySQL library cache with the fetch result")
	rootCmd.AddCommand(tzktCmd)
}
