package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notebox-backend/internal/lifecycle"
)

func TestParse_Help(t *testing.T) {
	for _, in := range []string{"?", "help", "Help", "HELP", "ヘルプ", "  ?  "} {
		assert.Equal(t, KindHelp, Parse(in).Kind, "input %q", in)
	}
}

func TestParse_BareTextIsCapture(t *testing.T) {
	cmd := Parse("Buy milk\nfrom the corner store")
	assert.Equal(t, KindCapture, cmd.Kind)
	assert.Equal(t, "Buy milk", cmd.Capture.Title)
	assert.Equal(t, "from the corner store", cmd.Capture.Content)
	assert.Equal(t, lifecycle.TypeNote, cmd.Capture.Type)
	assert.Equal(t, lifecycle.PriorityNone, cmd.Capture.Priority)
}

func TestParse_EmptyInputIsEmptyCapture(t *testing.T) {
	cmd := Parse("   ")
	assert.Equal(t, KindCapture, cmd.Kind)
	assert.Equal(t, "", cmd.Capture.Title)
}

func TestParse_MarkerOrderIndependence(t *testing.T) {
	a := Parse("!todo !high X")
	b := Parse("!high !todo X")

	for _, cmd := range []Command{a, b} {
		assert.Equal(t, KindCapture, cmd.Kind)
		assert.Equal(t, lifecycle.TypeTodo, cmd.Capture.Type)
		assert.Equal(t, lifecycle.PriorityHigh, cmd.Capture.Priority)
		assert.Equal(t, "X", cmd.Capture.Title)
	}
	assert.Equal(t, a, b)
}

func TestParse_SingleMarkers(t *testing.T) {
	cmd := Parse("!todo Buy milk")
	assert.Equal(t, lifecycle.TypeTodo, cmd.Capture.Type)
	assert.Equal(t, lifecycle.PriorityNone, cmd.Capture.Priority)
	assert.Equal(t, "Buy milk", cmd.Capture.Title)

	cmd = Parse("!HIGH remember this")
	assert.Equal(t, lifecycle.TypeNote, cmd.Capture.Type)
	assert.Equal(t, lifecycle.PriorityHigh, cmd.Capture.Priority)
	assert.Equal(t, "remember this", cmd.Capture.Title)
}

func TestParse_MarkerMustBeWholeWord(t *testing.T) {
	// "!todos" is the query verb, not a capture marker
	assert.Equal(t, KindTodos, Parse("!todos").Kind)

	// markers only strip from the first line
	cmd := Parse("title line\n!todo in content stays")
	assert.Equal(t, lifecycle.TypeNote, cmd.Capture.Type)
	assert.Equal(t, "!todo in content stays", cmd.Capture.Content)
}

func TestParse_QueryVerbs(t *testing.T) {
	cases := map[string]Kind{
		"!inbox":      KindInbox,
		"!INBOX":      KindInbox,
		"!today":      KindToday,
		"!stats":      KindStats,
		"!active":     KindActive,
		"!notes":      KindNotes,
		"!scratch":    KindScratch,
		"!sc":         KindScratch,
		"!fleeting":   KindFleeting,
		"!developing": KindDeveloping,
		"!permanent":  KindPermanent,
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in).Kind, "input %q", in)
	}
}

func TestParse_FindAndList(t *testing.T) {
	cmd := Parse("!find Milk Shop")
	assert.Equal(t, KindFind, cmd.Kind)
	assert.Equal(t, "Milk Shop", cmd.Arg) // original case preserved

	cmd = Parse("!list golang")
	assert.Equal(t, KindList, cmd.Kind)
	assert.Equal(t, "golang", cmd.Arg)

	// missing argument
	assert.Equal(t, KindUnknown, Parse("!find").Kind)
	assert.Equal(t, KindUnknown, Parse("!list").Kind)
}

func TestParse_IndexCommands(t *testing.T) {
	cmd := Parse("!done 3")
	assert.Equal(t, KindDone, cmd.Kind)
	assert.Equal(t, 3, cmd.Index)

	cmd = Parse("!due 2 2026-03-15")
	assert.Equal(t, KindDue, cmd.Kind)
	assert.Equal(t, 2, cmd.Index)
	assert.Equal(t, "2026-03-15", cmd.Arg)

	cmd = Parse("!tag 1 golang Reading")
	assert.Equal(t, KindTag, cmd.Kind)
	assert.Equal(t, "golang Reading", cmd.Arg)

	cmd = Parse("!track 4")
	assert.Equal(t, KindTrack, cmd.Kind)
	assert.Equal(t, 4, cmd.Index)
	assert.Equal(t, "", cmd.Arg)

	cmd = Parse("!track 4 tomorrow")
	assert.Equal(t, "tomorrow", cmd.Arg)
}

func TestParse_MalformedIndexIsUnknown(t *testing.T) {
	for _, in := range []string{
		"!done",        // missing index
		"!done x",      // non-numeric
		"!done 0",      // non-positive
		"!done -2",     // negative
		"!due 1",       // date argument required
		"!due x 2026-03-15",
		"!tag 1",       // tag argument required
		"!priority 1",  // level argument required
		"!frobnicate 1",
		"!",
	} {
		assert.Equal(t, KindUnknown, Parse(in).Kind, "input %q", in)
	}
}

func TestParse_NeverPanicsOnGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "!", "!!", "! done 1", "!done 99999999999999999999"} {
		assert.NotPanics(t, func() { Parse(in) }, "input %q", in)
	}
}
