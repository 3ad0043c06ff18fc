package playback

type Kind int

const (
	KindNothing Kind = iota
	KindTrack
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindEpisode:
		return "episode"
	default:
		return "nothing"
	}
}

type Image struct {
	URL    string
	Width  int
	Height int
}

// Item is the playing entity. Only Track and Episode implement it.
type Item interface {
	ID() string
	Title() string
	Creators() []string
	Artwork() []Image
	Kind() Kind

	isItem()
}

type Track struct {
	TrackID    string
	Name       string
	Artists    []string
	Album      string
	Images     []Image
	DurationMS int
}

func (t Track) ID() string         { return t.TrackID }
func (t Track) Title() string      { return t.Name }
func (t Track) Creators() []string { return t.Artists }
func (t Track) Artwork() []Image   { return t.Images }
func (t Track) Kind() Kind         { return KindTrack }
func (Track) isItem()              {}

type Episode struct {
	EpisodeID  string
	Name       string
	Show       string
	Publisher  string
	Images     []Image
	DurationMS int
}

func (e Episode) ID() string    { return e.EpisodeID }
func (e Episode) Title() string { return e.Name }

// Creators returns the publisher, or the show name when the publisher is unknown.
func (e Episode) Creators() []string {
	if e.Publisher != "" {
		return []string{e.Publisher}
	}
	if e.Show != "" {
		return []string{e.Show}
	}
	return nil
}

func (e Episode) Artwork() []Image { return e.Images }
func (e Episode) Kind() Kind       { return KindEpisode }
func (Episode) isItem()            {}

// ArtworkURL returns the URL of the first (largest) artwork variant.
func ArtworkURL(item Item) string {
	if item == nil {
		return ""
	}
	images := item.Artwork()
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
