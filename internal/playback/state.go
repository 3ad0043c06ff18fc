package playback

// State is what is playing right now. The zero value means nothing is playing.
type State struct {
	Item Item
}

func Playing(item Item) State {
	return State{Item: item}
}

func (s State) IsNothing() bool {
	return s.Item == nil
}

func (s State) ID() string {
	if s.Item == nil {
		return ""
	}
	return s.Item.ID()
}

func (s State) Kind() Kind {
	if s.Item == nil {
		return KindNothing
	}
	return s.Item.Kind()
}

func (s State) ArtworkURL() string {
	return ArtworkURL(s.Item)
}

// SameItem reports whether both states refer to the same playing entity.
// Identifiers are the only key; two Nothing states are the same.
func (s State) SameItem(other State) bool {
	if s.Item == nil || other.Item == nil {
		return s.Item == nil && other.Item == nil
	}
	return s.Item.ID() == other.Item.ID()
}

type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusUnauthenticated
	StatusFetchFailed
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusFetchFailed:
		return "fetch_failed"
	default:
		return "idle"
	}
}

const (
	MessageSignIn        = "Sign in to Spotify to get started."
	MessageStartPlayback = "Start playing music to activate the visualizer."
	MessageFetchFailed   = "Unable to retrieve track information."
)

// Message is the user-facing text for the status. Playing has none.
func (s Status) Message() string {
	switch s {
	case StatusUnauthenticated:
		return MessageSignIn
	case StatusIdle:
		return MessageStartPlayback
	case StatusFetchFailed:
		return MessageFetchFailed
	default:
		return ""
	}
}
