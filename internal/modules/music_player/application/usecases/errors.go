package usecases

import "errors"

// Domain errors for the music player module.
var (
	// ErrNoVoiceChannel is returned when the requesting user is not in a voice channel.
	ErrNoVoiceChannel = errors.New("you must be in a voice channel")

	// ErrVoiceJoinFailed is returned when the voice channel could not be joined.
	ErrVoiceJoinFailed = errors.New("failed to join voice channel")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrNoPlayableTracks is returned when every resolved track lacks a playable locator.
	ErrNoPlayableTracks = errors.New("no playable tracks found")

	// ErrTrackUnplayable is returned when a stream could not be opened or started for a track.
	ErrTrackUnplayable = errors.New("track could not be played")

	// ErrQueueEmpty is returned when the queue is empty.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrLoadFailed is returned when loading tracks fails.
	ErrLoadFailed = errors.New("failed to load track")
)
