package presentation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/floofybot/floofy/internal/bot"
	"github.com/floofybot/floofy/internal/modules/core/application"
)

const colorHelp = 0xFF8C00

// PingHandler handles the /ping command.
type PingHandler struct {
	interactor *application.PingInteractor
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler() *PingHandler {
	return &PingHandler{
		interactor: application.NewPingInteractor(),
	}
}

// Handle processes the ping command and sends the response.
func (h *PingHandler) Handle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	result := h.interactor.Execute()

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: result.Message,
		},
	})
}

// HelpHandler handles the /help command.
type HelpHandler struct {
	interactor *application.HelpInteractor
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(interactor *application.HelpInteractor) *HelpHandler {
	return &HelpHandler{
		interactor: interactor,
	}
}

// Handle lists every registered command.
func (h *HelpHandler) Handle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	page := h.interactor.Execute()

	// Discord caps embeds at 25 fields.
	entries := page.Entries
	if len(entries) > 25 {
		entries = entries[:25]
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(entries))
	for _, entry := range entries {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("`/%s`", entry.Name),
			Value: entry.Description,
		})
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:  page.Title,
					Color:  colorHelp,
					Fields: fields,
				},
			},
		},
	})
}
