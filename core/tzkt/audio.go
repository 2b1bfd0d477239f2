package tzkt

import (
	"encoding/json"
	"strconv"
	"strings"
)

// audioExtensions are recognized when a minter omitted the MIME type.
var audioExtensions = []string{".mp3", ".wav", ".ogg", ".oga", ".flac", ".m4a", ".aac", ".opus"}

// audioSource finds the playable URI for a token: a format entry with an
// audio MIME type wins, then the top-level mimeType, then an audio file
// extension on the artifact URI.
func audioSource(m tokenMetadata) (uri, mime string, ok bool) {
	for _, f := range m.Formats {
		if strings.HasPrefix(f.MimeType, "audio/") && f.URI != "" {
			return f.URI, f.MimeType, true
		}
	}
	if strings.HasPrefix(m.MimeType, "audio/") && m.ArtifactURI != "" {
		return m.ArtifactURI, m.MimeType, true
	}
	if m.ArtifactURI != "" && hasAudioExtension(m.ArtifactURI) {
		return m.ArtifactURI, "", true
	}
	return "", "", false
}

func hasAudioExtension(uri string) bool {
	lower := strings.ToLower(uri)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func displayURI(m tokenMetadata) string {
	if m.DisplayURI != "" {
		return m.DisplayURI
	}
	return m.ThumbnailURI
}

// artist prefers an explicit tag over the creator address.
func artist(m tokenMetadata, creator string) string {
	for _, tag := range m.Tags {
		if name, found := strings.CutPrefix(tag, "artist:"); found {
			return name
		}
	}
	if creator != "" {
		return creator
	}
	return "unknown"
}

// firstGenre tolerates both string and array encodings seen on-chain.
func firstGenre(m tokenMetadata) string {
	if len(m.Genres) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(m.Genres, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(m.Genres, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

// year extracts the year from an ISO date string.
func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// durationSeconds parses either plain seconds or an mm:ss / hh:mm:ss string.
func durationSeconds(raw string) float64 {
	if raw == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return secs
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}
