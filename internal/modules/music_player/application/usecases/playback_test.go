package usecases

import (
	"context"
	"testing"

	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

func enqueueThree(t *testing.T, env *testEnv) {
	t.Helper()
	for i := 1; i <= 3; i++ {
		env.resolver.results = singleResult(i)
		if _, err := env.enqueue("song"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestQueueManager_PlaybackEnded_AdvancesToNext(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)

	env.finish(false)

	q := env.queue()
	if q.Tracks.Len() != 2 {
		t.Fatalf("expected 2 tracks remaining, got %d", q.Tracks.Len())
	}
	if q.Current().Title != "Song 2" {
		t.Errorf("expected Song 2 to play, got %q", q.Current().Title)
	}
	if got := len(env.transport.player.played); got != 2 {
		t.Errorf("expected 2 play calls, got %d", got)
	}
}

func TestQueueManager_PlaybackEnded_DrainsToIdle(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)

	for range 3 {
		env.finish(false)
	}

	q := env.queue()
	if q == nil {
		t.Fatal("expected queue to remain until idle timeout")
	}
	if q.IsPlaying() {
		t.Error("expected queue to be idle")
	}
	if !q.Tracks.IsEmpty() {
		t.Errorf("expected empty queue, got %d tracks", q.Tracks.Len())
	}
	if n := len(env.timers.pending(DefaultIdleTimeout)); n != 1 {
		t.Errorf("expected one idle timer, got %d", n)
	}
}

func TestQueueManager_PlaybackEnded_LoopReplaysHead(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)
	env.queue().SetLoop(true)

	env.finish(false)

	q := env.queue()
	if q.Tracks.Len() != 3 {
		t.Errorf("expected head to be kept, got %d tracks", q.Tracks.Len())
	}
	if q.Current().Title != "Song 1" {
		t.Errorf("expected Song 1 to replay, got %q", q.Current().Title)
	}
}

func TestQueueManager_PlaybackEnded_FailureDropsHeadEvenWhenLooping(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)
	env.queue().SetLoop(true)

	env.finish(true)

	q := env.queue()
	if q.Tracks.Len() != 2 {
		t.Errorf("expected failed track to be dropped, got %d tracks", q.Tracks.Len())
	}
	if q.Current().Title != "Song 2" {
		t.Errorf("expected Song 2 to play, got %q", q.Current().Title)
	}
	if len(env.notifier.notices) != 1 || env.notifier.notices[0] != "Error playing **Song 1**. Skipping..." {
		t.Errorf("unexpected notices: %v", env.notifier.notices)
	}
}

func TestQueueManager_PlaybackEnded_IgnoresStaleStream(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)

	env.manager.HandlePlaybackEnded(context.Background(), domain.PlaybackEndedEvent{
		GuildID:  testGuildID,
		StreamID: "stream:unrelated",
	})

	if env.queue().Tracks.Len() != 3 {
		t.Errorf("expected queue to be untouched, got %d tracks", env.queue().Tracks.Len())
	}
}

func TestQueueManager_PlaybackEnded_IgnoresIdleQueue(t *testing.T) {
	env := newTestEnv()
	env.resolver.results = nil
	_, _ = env.enqueue("nothing")

	env.finish(false)

	if got := len(env.transport.player.played); got != 0 {
		t.Errorf("expected no play calls, got %d", got)
	}
}

func TestQueueManager_Advance_SkipsUnplayableTracks(t *testing.T) {
	env := newTestEnv()
	env.resolver.results = []ports.ResolvedResult{{Playlist: &ports.PlaylistDescriptor{Name: "Mix"}}}
	env.resolver.members = []ports.TrackDescriptor{trackDescriptor(1), trackDescriptor(2), trackDescriptor(3)}
	env.resolver.openErrs = map[string]error{"https://youtu.be/1": errMock}
	env.transport.player.playErrs = map[string]error{"stream:https://youtu.be/2": errMock}

	if _, err := env.enqueue("mix"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := env.queue()
	if q.Current() == nil || q.Current().Title != "Song 3" {
		t.Fatalf("expected Song 3 to play, got %v", q.Current())
	}
	if q.Tracks.Len() != 1 {
		t.Errorf("expected failed tracks to be dropped, got %d tracks", q.Tracks.Len())
	}
	want := []string{
		"Error playing **Song 1**. Skipping...",
		"Error playing **Song 2**. Skipping...",
	}
	if len(env.notifier.notices) != len(want) {
		t.Fatalf("expected %d notices, got %v", len(want), env.notifier.notices)
	}
	for i, notice := range want {
		if env.notifier.notices[i] != notice {
			t.Errorf("notice %d: expected %q, got %q", i, notice, env.notifier.notices[i])
		}
	}
}

func TestQueueManager_Advance_AllTracksFail(t *testing.T) {
	env := newTestEnv()
	env.resolver.results = []ports.ResolvedResult{{Playlist: &ports.PlaylistDescriptor{Name: "Mix"}}}
	env.resolver.members = []ports.TrackDescriptor{trackDescriptor(1), trackDescriptor(2)}
	env.resolver.openErrs = map[string]error{
		"https://youtu.be/1": errMock,
		"https://youtu.be/2": errMock,
	}

	if _, err := env.enqueue("mix"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := env.queue()
	if q.IsPlaying() {
		t.Error("expected queue to be idle")
	}
	if !q.Tracks.IsEmpty() {
		t.Errorf("expected empty queue, got %d tracks", q.Tracks.Len())
	}
	if n := len(env.timers.pending(DefaultIdleTimeout)); n != 1 {
		t.Errorf("expected one idle timer, got %d", n)
	}
}

func TestQueueManager_Advance_BrokenHeadNotice(t *testing.T) {
	env := newTestEnv()
	enqueueThree(t, env)

	q := env.queue()
	q.Tracks.List()[1].URL = ""
	env.finish(false)

	if q.Current() == nil || q.Current().Title != "Song 3" {
		t.Fatalf("expected Song 3 to play, got %v", q.Current())
	}
	if len(env.notifier.notices) != 1 || env.notifier.notices[0] != "Skipping a broken or invalid track." {
		t.Errorf("unexpected notices: %v", env.notifier.notices)
	}
}

func TestQueueManager_Start_RegistersHandler(t *testing.T) {
	env := newTestEnv()
	sub := &mockSubscriber{}
	env.manager.Start(sub)
	enqueueThree(t, env)

	sub.handler(context.Background(), domain.PlaybackEndedEvent{
		GuildID:  testGuildID,
		StreamID: env.queue().CurrentStream(),
	})

	if env.queue().Current().Title != "Song 2" {
		t.Errorf("expected Song 2 to play, got %q", env.queue().Current().Title)
	}
}

func TestQueueManager_PlayingCancelsIdleTimer(t *testing.T) {
	env := newTestEnv()
	env.resolver.results = nil
	_, _ = env.enqueue("nothing")

	env.resolver.results = singleResult(1)
	if _, err := env.enqueue("song"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(env.timers.pending(DefaultIdleTimeout)); n != 0 {
		t.Errorf("expected idle timer to be cancelled, got %d pending", n)
	}
}

func TestQueueManager_Advance_PlaysTrackEnqueuedDuringFailure(t *testing.T) {
	env := newTestEnv()
	env.resolver.openErrs = map[string]error{"https://youtu.be/1": errMock}
	env.resolver.onOpen = func(url string) {
		if url != "https://youtu.be/1" {
			return
		}
		env.resolver.results = singleResult(2)
		if _, err := env.enqueue("song 2"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if _, err := env.enqueue("song 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := env.queue()
	if !q.IsPlaying() {
		t.Fatal("expected queue to keep playing")
	}
	if q.Current() == nil || q.Current().Title != "Song 2" {
		t.Fatalf("expected Song 2 to play, got %v", q.Current())
	}
	if q.Tracks.Len() != 1 {
		t.Errorf("expected 1 track, got %d", q.Tracks.Len())
	}
	if len(env.resolver.opened) != 1 || env.resolver.opened[0] != "https://youtu.be/2" {
		t.Errorf("expected Song 2 to be opened, got %v", env.resolver.opened)
	}
	if n := len(env.timers.pending(DefaultIdleTimeout)); n != 0 {
		t.Errorf("expected no idle timer, got %d", n)
	}
}
