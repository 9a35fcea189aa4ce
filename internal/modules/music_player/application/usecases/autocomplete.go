package usecases

import (
	"context"

	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
)

// AutocompleteInput contains the input for the Autocomplete use case.
type AutocompleteInput struct {
	Query string
	Limit int
}

// AutocompleteOutput contains the result of the Autocomplete use case.
type AutocompleteOutput struct {
	Results []ports.ResolvedResult
}

// AutocompleteService handles search suggestions for the play command.
type AutocompleteService struct {
	resolver ports.TrackResolver
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(resolver ports.TrackResolver) *AutocompleteService {
	return &AutocompleteService{
		resolver: resolver,
	}
}

// Suggest searches for tracks matching the query.
func (s *AutocompleteService) Suggest(ctx context.Context, input AutocompleteInput) (*AutocompleteOutput, error) {
	results, err := s.resolver.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	if input.Limit > 0 && len(results) > input.Limit {
		results = results[:input.Limit]
	}
	return &AutocompleteOutput{Results: results}, nil
}
