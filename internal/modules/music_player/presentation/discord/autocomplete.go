package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/floofybot/floofy/internal/modules/music_player/application/usecases"
	"github.com/mattn/go-runewidth"
)

const (
	minAutocompleteQuery = 2
	autocompleteLimit    = 5
	maxChoiceLength      = 100
)

// Suggester produces search suggestions.
type Suggester interface {
	Suggest(ctx context.Context, input usecases.AutocompleteInput) (*usecases.AutocompleteOutput, error)
}

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	suggester Suggester
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(suggester Suggester) *AutocompleteHandler {
	return &AutocompleteHandler{
		suggester: suggester,
	}
}

// HandlePlay handles autocomplete for play command.
func (h *AutocompleteHandler) HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: h.choices(context.Background(), query),
		},
	})
	if err != nil {
		slog.Warn("failed to respond to autocomplete", "error", err)
	}
}

// choices returns the suggestions for query, empty when there is nothing to offer.
func (h *AutocompleteHandler) choices(ctx context.Context, query string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0)

	// Don't search for very short queries
	if len([]rune(query)) < minAutocompleteQuery {
		return choices
	}

	output, err := h.suggester.Suggest(ctx, usecases.AutocompleteInput{
		Query: query,
		Limit: autocompleteLimit,
	})
	if err != nil {
		slog.Debug("autocomplete search failed", "query", query, "error", err)
		return choices
	}

	for _, result := range output.Results {
		var name, value string
		switch {
		case result.Playlist != nil:
			name = fmt.Sprintf("📋 %s (%d tracks)", result.Playlist.Name, len(result.Playlist.Tracks))
			value = result.Playlist.URL
		case result.Track != nil:
			name = "🎵 " + result.Track.Title
			value = result.Track.URL
		}

		// Discord rejects choice values over the limit, and a truncated URL is useless.
		if value == "" || len(value) > maxChoiceLength {
			continue
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceLength),
			Value: value,
		})
	}

	return choices
}

// truncate shortens s to at most maxLen display columns.
func truncate(s string, maxLen int) string {
	return runewidth.Truncate(s, maxLen, "...")
}
