// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package models

import "testing"

func TestPlayMethodLabel(t *testing.T) {
	t.Run("no play state", func(t *testing.T) {
		s := &LiveSession{}
		if got := s.PlayMethodLabel(); got != "na" {
			t.Errorf("Expected na, got %q", got)
		}
	})

	t.Run("direct play", func(t *testing.T) {
		s := &LiveSession{PlayState: &PlayState{PlayMethod: "DirectPlay"}}
		if got := s.PlayMethodLabel(); got != "DirectPlay" {
			t.Errorf("Expected DirectPlay, got %q", got)
		}
	})

	t.Run("transcode without transcoding info", func(t *testing.T) {
		s := &LiveSession{PlayState: &PlayState{PlayMethod: "Transcode"}}
		if got := s.PlayMethodLabel(); got != "Transcode" {
			t.Errorf("Expected bare Transcode, got %q", got)
		}
	})

	t.Run("transcode with both streams converted", func(t *testing.T) {
		s := &LiveSession{
			PlayState: &PlayState{PlayMethod: "Transcode"},
			TranscodingInfo: &TranscodingInfo{
				VideoCodec: "h264",
				AudioCodec: "aac",
			},
		}
		if got := s.PlayMethodLabel(); got != "Transcode (v:h264 a:aac)" {
			t.Errorf("Expected codec annotation, got %q", got)
		}
	})

	t.Run("transcode with direct video", func(t *testing.T) {
		s := &LiveSession{
			PlayState: &PlayState{PlayMethod: "Transcode"},
			TranscodingInfo: &TranscodingInfo{
				IsVideoDirect: true,
				AudioCodec:    "mp3",
			},
		}
		if got := s.PlayMethodLabel(); got != "Transcode (v:direct a:mp3)" {
			t.Errorf("Expected direct video annotation, got %q", got)
		}
	})
}

func TestNowPlayingItemDisplayName(t *testing.T) {
	t.Run("nil item", func(t *testing.T) {
		var i *NowPlayingItem
		if got := i.DisplayName(); got != NameNotKnown {
			t.Errorf("Expected %q, got %q", NameNotKnown, got)
		}
	})

	t.Run("nameless item", func(t *testing.T) {
		i := &NowPlayingItem{Type: "Movie"}
		if got := i.DisplayName(); got != NameNotKnown {
			t.Errorf("Expected %q, got %q", NameNotKnown, got)
		}
	})

	t.Run("movie", func(t *testing.T) {
		i := &NowPlayingItem{Name: "Some Movie", Type: "Movie"}
		if got := i.DisplayName(); got != "Some Movie" {
			t.Errorf("Expected plain name, got %q", got)
		}
	})

	t.Run("episode", func(t *testing.T) {
		i := &NowPlayingItem{
			Name:          "Pilot",
			Type:          ItemTypeEpisode,
			SeriesName:    "Some Show",
			SeasonNumber:  1,
			EpisodeNumber: 3,
		}
		if got := i.DisplayName(); got != "Some Show - s01e03 - Pilot" {
			t.Errorf("Expected episodic name, got %q", got)
		}
	})

	t.Run("episode without series name", func(t *testing.T) {
		i := &NowPlayingItem{Name: "Pilot", Type: ItemTypeEpisode}
		if got := i.DisplayName(); got != "Pilot" {
			t.Errorf("Expected fallback to item name, got %q", got)
		}
	})
}

func TestNowPlayingItemID(t *testing.T) {
	s := &LiveSession{}
	if got := s.NowPlayingItemID(); got != "" {
		t.Errorf("Expected empty for idle session, got %q", got)
	}

	s.NowPlayingItem = &NowPlayingItem{ID: "item-1"}
	if got := s.NowPlayingItemID(); got != "item-1" {
		t.Errorf("Expected item-1, got %q", got)
	}
}
