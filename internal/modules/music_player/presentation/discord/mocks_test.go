package discord

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/usecases"
)

const (
	testGuildID   = "1"
	testChannelID = "10"
	testUserID    = "42"
	testBotID     = "99"
)

type enqueueCall struct {
	input usecases.EnqueueInput
}

type mockMusicService struct {
	enqueueCalls  []enqueueCall
	enqueueOutput *usecases.EnqueueOutput
	enqueueErr    error

	pauseOutput *usecases.PauseOrResumeOutput
	pauseErr    error
	skipErr     error
	stopErr     error
	disconnErr  error

	snapshot    *usecases.QueueSnapshotOutput
	snapshotErr error

	configured     map[snowflake.ID]snowflake.ID
	configureErr   error
	controlChannel snowflake.ID

	occupancyChanges []snowflake.ID
	botVoiceChanges  []snowflake.ID
}

func newMockMusicService() *mockMusicService {
	return &mockMusicService{configured: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockMusicService) Enqueue(_ context.Context, input usecases.EnqueueInput) (*usecases.EnqueueOutput, error) {
	m.enqueueCalls = append(m.enqueueCalls, enqueueCall{input: input})
	return m.enqueueOutput, m.enqueueErr
}

func (m *mockMusicService) PauseOrResume(context.Context, snowflake.ID) (*usecases.PauseOrResumeOutput, error) {
	return m.pauseOutput, m.pauseErr
}

func (m *mockMusicService) Skip(context.Context, snowflake.ID) error       { return m.skipErr }
func (m *mockMusicService) Stop(context.Context, snowflake.ID) error       { return m.stopErr }
func (m *mockMusicService) Disconnect(context.Context, snowflake.ID) error { return m.disconnErr }

func (m *mockMusicService) QueueSnapshot(snowflake.ID) (*usecases.QueueSnapshotOutput, error) {
	return m.snapshot, m.snapshotErr
}

func (m *mockMusicService) ConfigureControlChannel(_ context.Context, guildID, channelID snowflake.ID) error {
	if m.configureErr != nil {
		return m.configureErr
	}
	m.configured[guildID] = channelID
	return nil
}

func (m *mockMusicService) IsControlChannel(_ context.Context, _, channelID snowflake.ID) bool {
	return m.controlChannel != 0 && m.controlChannel == channelID
}

func (m *mockMusicService) OnVoiceOccupancyChanged(_ context.Context, guildID snowflake.ID) {
	m.occupancyChanges = append(m.occupancyChanges, guildID)
}

func (m *mockMusicService) OnBotVoiceStateChanged(_ context.Context, _, channelID snowflake.ID) {
	m.botVoiceChanges = append(m.botVoiceChanges, channelID)
}

type mockVoiceState struct {
	channels map[snowflake.ID]snowflake.ID // user -> channel
	err      error
}

func (m *mockVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return m.channels[userID], m.err
}

func (m *mockVoiceState) IsSoleOccupant(_, _ snowflake.ID) (bool, error) {
	return false, nil
}

type mockReplier struct {
	channelID string
	content   string
	reference *discordgo.MessageReference
}

func (m *mockReplier) ChannelMessageSendReply(
	channelID string,
	content string,
	reference *discordgo.MessageReference,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	m.reference = reference
	return &discordgo.Message{}, nil
}

type prefixLinks struct{}

func (prefixLinks) IsPlayableLink(text string) bool {
	return strings.HasPrefix(text, "https://")
}

func testMember(permissions int64) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: testUserID, Username: "floof"},
		Permissions: permissions,
	}
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Member:    testMember(0),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func responseContent(t *testing.T, r *discordgo.InteractionResponse) string {
	t.Helper()
	if r == nil || r.Data == nil {
		t.Fatal("expected a response with data")
	}
	return r.Data.Content
}
