package application

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestHelpInteractor_Execute(t *testing.T) {
	calls := 0
	interactor := NewHelpInteractor(func() []*discordgo.ApplicationCommand {
		calls++
		return []*discordgo.ApplicationCommand{
			{Name: "queue", Description: "Show the current queue"},
			{Name: "ping", Description: "Checks if I'm online"},
		}
	})

	page := interactor.Execute()

	if calls != 1 {
		t.Errorf("expected commands to be listed once, got %d", calls)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(page.Entries))
	}
	if page.Entries[0].Name != "ping" || page.Entries[0].Description != "Checks if I'm online" {
		t.Errorf("unexpected first entry %+v", page.Entries[0])
	}
}

func TestHelpInteractor_Execute_NoCommands(t *testing.T) {
	interactor := NewHelpInteractor(func() []*discordgo.ApplicationCommand { return nil })

	page := interactor.Execute()

	if len(page.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(page.Entries))
	}
}
