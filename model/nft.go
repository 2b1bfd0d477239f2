package model

import (
	"fmt"
	"time"
)

// MusicNFT identifies a playable Tezos music token. Instances are built once
// from indexer data and never mutated by the player.
type MusicNFT struct {
	ID         string `json:"id"` // "<contract>-<tokenId>"
	Contract   string `json:"contract"`
	TokenID    string `json:"tokenId"`
	Name       string `json:"name"`
	Creator    string `json:"creator"`
	Collection string `json:"collection"`
	Standard   string `json:"standard"` // token standard, fa2 for NFTs

	ArtifactURI string `json:"artifactUri"` // raw URI, usually ipfs://<cid>
	DisplayURI  string `json:"displayUri"`
	MimeType    string `json:"mimeType"`

	AudioMetadata AudioMetadata `json:"audioMetadata"`

	OwnedBy   string    `json:"ownedBy"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// AudioMetadata carries the parsed TZIP-21 audio fields.
type AudioMetadata struct {
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Genre    string  `json:"genre"`
	Year     int     `json:"year"`
	Duration float64 `json:"duration"` // seconds
}

// NFTID builds the canonical track id from a contract address and token id.
func NFTID(contract, tokenID string) string {
	return fmt.Sprintf("%s-%s", contract, tokenID)
}
