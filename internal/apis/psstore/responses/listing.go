package responses

import "psparser/internal/extract"

// Stub is a product tile read from a listing page. Link is always set.
type Stub struct {
	Link         string
	Title        extract.Field[string]
	Image        extract.Field[string]
	Price        extract.Field[string]
	OldPrice     extract.Field[string]
	Discount     extract.Field[string]
	Subscription extract.Field[string]
	Icons        []string
}

// Detail is what a product page adds on top of its stub.
type Detail struct {
	ReleaseDate  extract.Field[string]
	Platforms    extract.Field[[]string]
	// Voice and Subtitles are the platform-neutral lists some pages show
	// instead of per-platform ones.
	Voice        extract.Field[string]
	Subtitles    extract.Field[string]
	VoicePS4     extract.Field[string]
	SubtitlesPS4 extract.Field[string]
	VoicePS5     extract.Field[string]
	SubtitlesPS5 extract.Field[string]
	Subscription extract.Field[string]
	Icons        []string
}
