package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"tezbeat/config"
	"tezbeat/storage"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Audio cache maintenance",
}

var cacheEvictCmd = &cobra.Command{
	Use:   "evict <track_id>",
	Short: "Drop a cached audio artifact",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := storage.RemoveAudio(ctx, args[0]); err != nil {
			log.Fatalf("Failed to evict %s: %v", args[0], err)
		}
		fmt.Printf("Evicted %s from the audio cache.\n", args[0])
	},
}

func init() {
	cacheCmd.AddCommand(cacheEvictCmd)
	rootCmd.AddCommand(cacheCmd)
}
