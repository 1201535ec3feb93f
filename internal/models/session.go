// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package models

import "fmt"

// ============================================================================
// Live Session Models
// ============================================================================
// These structures mirror the host media server's /Sessions payload
// (Emby/Jellyfin-compatible field names). They are consulted read-only by the
// deferred metadata resolver; the tracker never mutates live session state.

// LiveSession represents one active session as reported by the host.
type LiveSession struct {
	ID         string `json:"Id"`
	Client     string `json:"Client"`
	DeviceID   string `json:"DeviceId"`
	DeviceName string `json:"DeviceName"`
	UserID     string `json:"UserId"`

	NowPlayingItem  *NowPlayingItem  `json:"NowPlayingItem,omitempty"`
	PlayState       *PlayState       `json:"PlayState,omitempty"`
	TranscodingInfo *TranscodingInfo `json:"TranscodingInfo,omitempty"`
}

// NowPlayingItem identifies the content the session is currently playing.
// Episode fields are only populated for episodic content.
type NowPlayingItem struct {
	ID            string `json:"Id"`
	Name          string `json:"Name,omitempty"`
	Type          string `json:"Type,omitempty"`
	SeriesName    string `json:"SeriesName,omitempty"`
	SeasonNumber  int    `json:"ParentIndexNumber,omitempty"`
	EpisodeNumber int    `json:"IndexNumber,omitempty"`
}

// ItemTypeEpisode is the host's item type for series episodes.
const ItemTypeEpisode = "Episode"

// NameNotKnown is reported when the item carries no usable name.
const NameNotKnown = "Not Known"

// DisplayName derives the human-readable item name for reporting. Episodes
// render as "<series> - sNNeNN - <episode title>"; anything else uses the raw
// item name, falling back to the NameNotKnown placeholder.
func (i *NowPlayingItem) DisplayName() string {
	if i == nil {
		return NameNotKnown
	}
	if i.Type == ItemTypeEpisode && i.SeriesName != "" {
		return fmt.Sprintf("%s - s%02de%02d - %s",
			i.SeriesName, i.SeasonNumber, i.EpisodeNumber, i.Name)
	}
	if i.Name != "" {
		return i.Name
	}
	return NameNotKnown
}

// PlayState holds the session's playback state.
type PlayState struct {
	PositionTicks int64  `json:"PositionTicks,omitempty"`
	IsPaused      bool   `json:"IsPaused,omitempty"`
	PlayMethod    string `json:"PlayMethod,omitempty"` // "DirectPlay", "DirectStream", "Transcode"
}

// TranscodingInfo holds transcode session details. Only present while the
// host is transcoding for this session.
type TranscodingInfo struct {
	VideoCodec    string `json:"VideoCodec,omitempty"`
	AudioCodec    string `json:"AudioCodec,omitempty"`
	IsVideoDirect bool   `json:"IsVideoDirect"`
	IsAudioDirect bool   `json:"IsAudioDirect"`
}

// PlayMethodTranscode is the host's play method value for transcoded streams.
const PlayMethodTranscode = "Transcode"

// PlayMethodUnknown is recorded when the session carries no play state.
const PlayMethodUnknown = "na"

// PlayMethodLabel derives the human-readable playback method for reporting.
// Transcoded sessions are annotated with the actual video/audio codec, with
// "direct" substituted per stream when that stream is passed through.
func (s *LiveSession) PlayMethodLabel() string {
	if s.PlayState == nil || s.PlayState.PlayMethod == "" {
		return PlayMethodUnknown
	}

	method := s.PlayState.PlayMethod
	if method != PlayMethodTranscode || s.TranscodingInfo == nil {
		return method
	}

	videoCodec := "direct"
	if !s.TranscodingInfo.IsVideoDirect {
		videoCodec = s.TranscodingInfo.VideoCodec
	}
	audioCodec := "direct"
	if !s.TranscodingInfo.IsAudioDirect {
		audioCodec = s.TranscodingInfo.AudioCodec
	}
	return method + " (v:" + videoCodec + " a:" + audioCodec + ")"
}

// NowPlayingItemID returns the playing item's identifier, or empty when idle.
func (s *LiveSession) NowPlayingItemID() string {
	if s.NowPlayingItem == nil {
		return ""
	}
	return s.NowPlayingItem.ID
}
