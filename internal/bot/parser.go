package bot

import (
	"strconv"
	"strings"

	"notebox-backend/internal/lifecycle"
)

// Kind enumerates the closed set of chat commands.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindCapture

	// query commands (re-establish the numbered session)
	KindInbox
	KindToday
	KindStats
	KindActive
	KindNotes
	KindTodos
	KindScratch
	KindFleeting
	KindDeveloping
	KindPermanent
	KindFind
	KindList

	// index-targeted commands (resolve through the session)
	KindDetail
	KindDue
	KindTag
	KindUntag
	KindPriority
	KindDone
	KindArchive
	KindDelete
	KindDevelop
	KindMature
	KindUpgrade
	KindTrack
	KindExport
)

// Capture is the payload of a capture request.
type Capture struct {
	Title    string
	Content  string
	Type     lifecycle.Type
	Priority string
}

// Command is the parsed form of one inbound message.
type Command struct {
	Kind    Kind
	Index   int     // 1-based, index-targeted commands only
	Arg     string  // keyword / tag list / date expression, original case
	Capture Capture // KindCapture only
}

// captureMarker is one optional leading marker on a capture's first line.
type captureMarker struct {
	token string
	apply func(*Capture)
}

var captureMarkers = []captureMarker{
	{"!todo", func(c *Capture) { c.Type = lifecycle.TypeTodo }},
	{"!high", func(c *Capture) { c.Priority = lifecycle.PriorityHigh }},
}

// Parse maps raw inbound text to a Command. Pure and total: anything it
// cannot recognize comes back as KindUnknown, never an error.
func Parse(text string) Command {
	t := strings.TrimSpace(text)

	switch strings.ToLower(t) {
	case "?", "help", "ヘルプ":
		return Command{Kind: KindHelp}
	}

	if !strings.HasPrefix(t, "!") {
		return parseCapture(t)
	}

	fields := strings.Fields(t)
	verb := strings.ToLower(strings.TrimPrefix(fields[0], "!"))

	switch verb {
	// capture markers share the plain-text capture path
	case "todo", "high":
		return parseCapture(t)

	case "inbox":
		return Command{Kind: KindInbox}
	case "today":
		return Command{Kind: KindToday}
	case "stats":
		return Command{Kind: KindStats}
	case "active":
		return Command{Kind: KindActive}
	case "notes":
		return Command{Kind: KindNotes}
	case "todos":
		return Command{Kind: KindTodos}
	case "scratch", "sc":
		return Command{Kind: KindScratch}
	case "fleeting":
		return Command{Kind: KindFleeting}
	case "developing":
		return Command{Kind: KindDeveloping}
	case "permanent":
		return Command{Kind: KindPermanent}

	case "find":
		return withArg(KindFind, fields)
	case "list":
		return withArg(KindList, fields)

	case "detail":
		return withIndex(KindDetail, fields)
	case "done":
		return withIndex(KindDone, fields)
	case "archive":
		return withIndex(KindArchive, fields)
	case "delete":
		return withIndex(KindDelete, fields)
	case "develop":
		return withIndex(KindDevelop, fields)
	case "mature":
		return withIndex(KindMature, fields)
	case "upgrade":
		return withIndex(KindUpgrade, fields)
	case "export":
		return withIndex(KindExport, fields)

	case "due":
		return withIndexArg(KindDue, fields, true)
	case "tag":
		return withIndexArg(KindTag, fields, true)
	case "untag":
		return withIndexArg(KindUntag, fields, true)
	case "priority":
		return withIndexArg(KindPriority, fields, true)
	case "track":
		return withIndexArg(KindTrack, fields, false)
	}

	return Command{Kind: KindUnknown}
}

// parseCapture splits text into first line (title) and remainder (content),
// then strips leading !todo / !high markers from the title in a fixed-point
// loop so either marker order gives the same result.
func parseCapture(text string) Command {
	title := text
	content := ""
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		title = text[:i]
		content = strings.TrimSpace(text[i+1:])
	}

	c := Capture{
		Type:     lifecycle.TypeNote,
		Priority: lifecycle.PriorityNone,
		Content:  content,
	}

	line := strings.TrimSpace(title)
	for {
		matched := false
		for _, m := range captureMarkers {
			rest, ok := stripMarker(line, m.token)
			if ok {
				m.apply(&c)
				line = rest
				matched = true
			}
		}
		if !matched {
			break
		}
	}
	c.Title = line

	return Command{Kind: KindCapture, Capture: c}
}

// stripMarker removes a leading marker token (case-insensitive, must be a
// whole word) and returns the trimmed remainder.
func stripMarker(line, token string) (string, bool) {
	if len(line) < len(token) || !strings.EqualFold(line[:len(token)], token) {
		return line, false
	}
	rest := line[len(token):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return line, false
	}
	return strings.TrimSpace(rest), true
}

func withArg(kind Kind, fields []string) Command {
	if len(fields) < 2 {
		return Command{Kind: KindUnknown}
	}
	return Command{Kind: kind, Arg: strings.Join(fields[1:], " ")}
}

func withIndex(kind Kind, fields []string) Command {
	if len(fields) != 2 {
		return Command{Kind: KindUnknown}
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return Command{Kind: KindUnknown}
	}
	return Command{Kind: kind, Index: n}
}

// withIndexArg parses "verb N rest...". When required is false the trailing
// argument may be absent.
func withIndexArg(kind Kind, fields []string, required bool) Command {
	if len(fields) < 2 {
		return Command{Kind: KindUnknown}
	}
	if required && len(fields) < 3 {
		return Command{Kind: KindUnknown}
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return Command{Kind: KindUnknown}
	}
	return Command{Kind: kind, Index: n, Arg: strings.Join(fields[2:], " ")}
}
