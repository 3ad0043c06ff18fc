package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/source/mocks"
)

func TestMPRISSource_Current(t *testing.T) {
	service := "org.mpris.MediaPlayer2.spotify"
	statusProp := "org.mpris.MediaPlayer2.Player.PlaybackStatus"
	metaProp := "org.mpris.MediaPlayer2.Player.Metadata"
	objPath := "/org/mpris/MediaPlayer2"

	tests := []struct {
		name      string
		setupMock func(*mocks.MockDBusClient)
		wantErr   error
		wantItem  *playback.Track
	}{
		{
			name: "Success - Playing",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, statusProp).Return(dbus.MakeVariant("Playing"), nil)
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, metaProp).
					Return(dbus.MakeVariant(map[string]dbus.Variant{
						"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/com/spotify/track/abc")),
						"xesam:title":   dbus.MakeVariant("Stairway to Heaven"),
						"xesam:artist":  dbus.MakeVariant([]string{"Led Zeppelin"}),
						"xesam:album":   dbus.MakeVariant("IV"),
						"mpris:artUrl":  dbus.MakeVariant("https://i.scdn.co/image/abc"),
						"mpris:length":  dbus.MakeVariant(int64(482_000_000)),
					}), nil)
			},
			wantItem: &playback.Track{
				TrackID:    "/com/spotify/track/abc",
				Name:       "Stairway to Heaven",
				Artists:    []string{"Led Zeppelin"},
				Album:      "IV",
				Images:     []playback.Image{{URL: "https://i.scdn.co/image/abc"}},
				DurationMS: 482_000,
			},
		},
		{
			name: "Nothing Playing - Stopped",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, statusProp).Return(dbus.MakeVariant("Stopped"), nil)
			},
		},
		{
			name: "Nothing Playing - Empty Title",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, statusProp).Return(dbus.MakeVariant("Paused"), nil)
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, metaProp).
					Return(dbus.MakeVariant(map[string]dbus.Variant{}), nil)
			},
		},
		{
			name: "DBus Error - Player Gone",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, statusProp).
					Return(dbus.MakeVariant(""), fmt.Errorf("name has no owner"))
			},
			wantErr: ErrTransport,
		},
		{
			name: "Invalid Data - Metadata is Int not Map",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, statusProp).Return(dbus.MakeVariant("Playing"), nil)
				m.EXPECT().GetProperty(gomock.Any(), service, objPath, metaProp).Return(dbus.MakeVariant(12345), nil)
			},
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			bus := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(bus)

			src := NewMPRISSource(zap.NewNop(), bus, service)
			item, err := src.Current(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantItem == nil {
				if item != nil {
					t.Fatalf("expected nothing playing, got %+v", item)
				}
				return
			}

			trk, ok := item.(playback.Track)
			if !ok {
				t.Fatalf("expected Track, got %T", item)
			}
			if trk.TrackID != tt.wantItem.TrackID || trk.Name != tt.wantItem.Name ||
				trk.Album != tt.wantItem.Album || trk.DurationMS != tt.wantItem.DurationMS {
				t.Errorf("got %+v, want %+v", trk, *tt.wantItem)
			}
			if len(trk.Artists) != 1 || trk.Artists[0] != "Led Zeppelin" {
				t.Errorf("artists = %v", trk.Artists)
			}
			if playback.ArtworkURL(trk) != "https://i.scdn.co/image/abc" {
				t.Errorf("artwork = %q", playback.ArtworkURL(trk))
			}
		})
	}
}

func TestTrackFromMetadata_SynthesizesID(t *testing.T) {
	item := trackFromMetadata(map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Song"),
		"xesam:artist": dbus.MakeVariant("Solo"),
	})
	if item == nil || item.ID() != "Solo|Song" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestListPlayers(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockDBusClient(ctrl)
	bus.EXPECT().ListNames(gomock.Any()).Return([]string{
		"org.freedesktop.DBus",
		"org.mpris.MediaPlayer2.vlc",
		":1.42",
		"org.mpris.MediaPlayer2.spotify",
	}, nil)

	players, err := ListPlayers(context.Background(), bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 2 || players[0] != "org.mpris.MediaPlayer2.spotify" || players[1] != "org.mpris.MediaPlayer2.vlc" {
		t.Errorf("players = %v", players)
	}
}

func TestPlayerIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockDBusClient(ctrl)
	bus.EXPECT().GetProperty(gomock.Any(), "org.mpris.MediaPlayer2.vlc", "/org/mpris/MediaPlayer2", "org.mpris.MediaPlayer2.Identity").
		Return(dbus.MakeVariant("VLC media player"), nil)

	if got := PlayerIdentity(context.Background(), bus, "org.mpris.MediaPlayer2.vlc"); got != "VLC media player" {
		t.Errorf("identity = %q", got)
	}
}

func TestMPRISSource_PassesContextToBus(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockDBusClient(ctrl)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "tick")

	bus.EXPECT().GetProperty(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(got context.Context, _, _, _ string) (dbus.Variant, error) {
			if got.Value(key{}) != "tick" {
				t.Error("bus read did not receive the tick context")
			}
			return dbus.MakeVariant("Stopped"), nil
		})

	if _, err := NewMPRISSource(zap.NewNop(), bus, "").Current(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSplitProperty(t *testing.T) {
	iface, name := splitProperty("org.mpris.MediaPlayer2.Player.PlaybackStatus")
	if iface != "org.mpris.MediaPlayer2.Player" || name != "PlaybackStatus" {
		t.Errorf("got %q %q", iface, name)
	}
}
