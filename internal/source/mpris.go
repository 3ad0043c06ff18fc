package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/playback"
)

const (
	DefaultMprisService = "org.mpris.MediaPlayer2.spotify"
	mprisPrefix         = "org.mpris.MediaPlayer2."
	mprisPath           = "/org/mpris/MediaPlayer2"
	mprisPlayerIface    = "org.mpris.MediaPlayer2.Player"
)

// DBusClient is the slice of the session bus the MPRIS source needs.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks karolbroda.com/kraken/internal/source DBusClient
type DBusClient interface {
	GetProperty(ctx context.Context, service, path, prop string) (dbus.Variant, error)
	ListNames(ctx context.Context) ([]string, error)
	Close() error
}

type sessionBus struct {
	conn *dbus.Conn
}

// ConnectSessionBus opens a private session bus connection.
func ConnectSessionBus() (DBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &sessionBus{conn: conn}, nil
}

// GetProperty honors ctx, unlike dbus.Object.GetProperty which blocks for the
// bus default timeout when a player stops answering.
func (b *sessionBus) GetProperty(ctx context.Context, service, path, prop string) (dbus.Variant, error) {
	iface, name := splitProperty(prop)
	var v dbus.Variant
	err := b.conn.Object(service, dbus.ObjectPath(path)).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, name).
		Store(&v)
	return v, err
}

func (b *sessionBus) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := b.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

// splitProperty turns "org.example.Iface.Prop" into its interface and name.
func splitProperty(prop string) (string, string) {
	i := strings.LastIndex(prop, ".")
	if i < 0 {
		return "", prop
	}
	return prop[:i], prop[i+1:]
}

func (b *sessionBus) Close() error {
	return b.conn.Close()
}

// MPRISSource reads the current item from a local MPRIS player.
type MPRISSource struct {
	logger  *zap.Logger
	bus     DBusClient
	service string
}

func NewMPRISSource(logger *zap.Logger, bus DBusClient, service string) *MPRISSource {
	if service == "" {
		service = DefaultMprisService
	}
	return &MPRISSource{logger: logger, bus: bus, service: service}
}

func (s *MPRISSource) Current(ctx context.Context) (playback.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	statusVariant, err := s.bus.GetProperty(ctx, s.service, mprisPath, mprisPlayerIface+".PlaybackStatus")
	if err != nil {
		return nil, fmt.Errorf("%w: playback status: %w", ErrTransport, err)
	}
	status, ok := statusVariant.Value().(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected playback status type %T", ErrDecode, statusVariant.Value())
	}
	if status == "Stopped" {
		return nil, nil
	}

	metaVariant, err := s.bus.GetProperty(ctx, s.service, mprisPath, mprisPlayerIface+".Metadata")
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrTransport, err)
	}
	metadata, ok := metaVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected metadata type %T", ErrDecode, metaVariant.Value())
	}

	return trackFromMetadata(metadata), nil
}

// trackFromMetadata returns nil when the player has no title loaded.
func trackFromMetadata(metadata map[string]dbus.Variant) playback.Item {
	title := extractString(metadata, "xesam:title")
	if title == "" {
		return nil
	}

	id := extractTrackID(metadata)
	artists := extractArtists(metadata, "xesam:artist")
	if id == "" {
		id = strings.Join(artists, ",") + "|" + title
	}

	var images []playback.Image
	if art := extractString(metadata, "mpris:artUrl"); art != "" {
		images = []playback.Image{{URL: art}}
	}

	return playback.Track{
		TrackID:    id,
		Name:       title,
		Artists:    artists,
		Album:      extractString(metadata, "xesam:album"),
		Images:     images,
		DurationMS: int(extractLengthMicros(metadata, "mpris:length") / 1000),
	}
}

// ListPlayers returns the MPRIS services on the bus, sorted.
func ListPlayers(ctx context.Context, bus DBusClient) ([]string, error) {
	names, err := bus.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	sort.Strings(players)
	return players, nil
}

// PlayerIdentity returns the human readable player name, or "".
func PlayerIdentity(ctx context.Context, bus DBusClient, service string) string {
	variant, err := bus.GetProperty(ctx, service, mprisPath, "org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}
	identity, _ := variant.Value().(string)
	return identity
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}
	text, _ := variant.Value().(string)
	return text
}

func extractTrackID(metadata map[string]dbus.Variant) string {
	variant, exists := metadata["mpris:trackid"]
	if !exists {
		return ""
	}
	switch typed := variant.Value().(type) {
	case dbus.ObjectPath:
		return string(typed)
	case string:
		return typed
	default:
		return ""
	}
}

func extractArtists(metadata map[string]dbus.Variant, key string) []string {
	variant, exists := metadata[key]
	if !exists {
		return nil
	}

	switch typed := variant.Value().(type) {
	case []string:
		return typed
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}

func extractLengthMicros(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed < 0 {
			return 0
		}
		return typed
	case uint64:
		return int64(typed)
	default:
		return 0
	}
}
