// Package mediasession holds the media-session state the script side
// drives through dispatch commands, and emits transport events back to
// script through a relay registry.
//
// Commands and events cross the bridge as JSON documents. A command is
// an envelope {"type": T, "payload": P}; results are {"status":
// "Success"} or {"status": "Error", "message": ...}. Events carry their
// fields next to the type tag: {"type": "Seek", "position_ms": 1500}.
package mediasession

import "fmt"

// PlaybackStatus is the transport state reported by the player.
type PlaybackStatus string

const (
	StatusPlaying PlaybackStatus = "Playing"
	StatusPaused  PlaybackStatus = "Paused"
)

func (s PlaybackStatus) valid() bool {
	return s == StatusPlaying || s == StatusPaused
}

// RepeatMode is the player's repeat setting.
type RepeatMode string

const (
	RepeatNone  RepeatMode = "None"
	RepeatTrack RepeatMode = "Track"
	RepeatList  RepeatMode = "List"
	RepeatSmart RepeatMode = "Smart"
)

func (m RepeatMode) valid() bool {
	switch m {
	case RepeatNone, RepeatTrack, RepeatList, RepeatSmart:
		return true
	}
	return false
}

// Metadata describes the current track.
type Metadata struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	CoverURL string  `json:"coverUrl"`
	TrackID  *uint64 `json:"trackId,omitempty"`
}

// Timeline is the player position in seconds.
type Timeline struct {
	CurrentTime float64 `json:"currentTime"`
	TotalTime   float64 `json:"totalTime"`
}

// PlayMode combines shuffle and repeat settings.
type PlayMode struct {
	IsShuffling bool       `json:"isShuffling"`
	RepeatMode  RepeatMode `json:"repeatMode"`
}

// playStatePayload is the PlayState command payload.
type playStatePayload struct {
	Status PlaybackStatus `json:"status"`
}

// Command type tags accepted by HandleCommand.
const (
	CmdMetadata  = "Metadata"
	CmdPlayState = "PlayState"
	CmdTimeline  = "Timeline"
	CmdPlayMode  = "PlayMode"
	CmdEnable    = "Enable"
	CmdDisable   = "Disable"
)

// Event type tags dispatched to the registered script callback.
const (
	EventPlay          = "Play"
	EventPause         = "Pause"
	EventStop          = "Stop"
	EventNextTrack     = "NextTrack"
	EventPreviousTrack = "PreviousTrack"
	EventToggleShuffle = "ToggleShuffle"
	EventToggleRepeat  = "ToggleRepeat"
	EventSeek          = "Seek"
)

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	Enabled  bool
	Metadata Metadata
	Status   PlaybackStatus
	Timeline Timeline
	PlayMode PlayMode
}

func (s Snapshot) String() string {
	return fmt.Sprintf("enabled=%t status=%s track=%q shuffle=%t repeat=%s pos=%.1f/%.1f",
		s.Enabled, s.Status, s.Metadata.Title,
		s.PlayMode.IsShuffling, s.PlayMode.RepeatMode,
		s.Timeline.CurrentTime, s.Timeline.TotalTime)
}
