package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
)

// VoiceStateProvider provides Discord voice state information from the session state cache.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns 0 if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

// IsSoleOccupant returns true if no member other than the bot is in the voice channel.
func (v *VoiceStateProvider) IsSoleOccupant(guildID, channelID snowflake.ID) (bool, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return false, err
	}

	botID := ""
	if v.session.State.User != nil {
		botID = v.session.State.User.ID
	}

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID.String() && vs.UserID != botID {
			return false, nil
		}
	}
	return true, nil
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
