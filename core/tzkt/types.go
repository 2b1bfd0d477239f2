package tzkt

import "encoding/json"

// tokenBalance is one row of /v1/tokens/balances.
type tokenBalance struct {
	Balance string `json:"balance"`
	Token   token  `json:"token"`
}

type token struct {
	Contract contractRef   `json:"contract"`
	TokenID  string        `json:"tokenId"`
	Standard string        `json:"standard"`
	Metadata tokenMetadata `json:"metadata"`
}

type contractRef struct {
	Address string `json:"address"`
	Alias   string `json:"alias"`
}

// tokenMetadata carries the TZIP-21 fields this service cares about. TzKT
// passes metadata through as minted, so every field is optional and loosely
// typed at the edge.
type tokenMetadata struct {
	Name        string          `json:"name"`
	Decimals    string          `json:"decimals"`
	ArtifactURI string          `json:"artifactUri"`
	DisplayURI  string          `json:"displayUri"`
	ThumbnailURI string         `json:"thumbnailUri"`
	MimeType    string          `json:"mimeType"`
	Creators    []string        `json:"creators"`
	Formats     []tokenFormat   `json:"formats"`
	Tags        []string        `json:"tags"`
	Genres      json.RawMessage `json:"genres"` // string or []string in the wild
	Album       string          `json:"album"`
	Date        string          `json:"date"`
	Duration    string          `json:"duration"` // ISO 8601 or seconds, minter-dependent
}

type tokenFormat struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}
