package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"notebox-backend/internal/items"
	"notebox-backend/internal/lifecycle"
)

// ItemStore is the slice of the item store the chat commands need.
type ItemStore interface {
	Get(ctx context.Context, id string) (items.Item, error)
	List(ctx context.Context, f items.Filter) ([]items.Item, error)
	Stats(ctx context.Context) (items.Stats, error)
	Create(ctx context.Context, in items.NewItem) (items.Item, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) (items.Item, error)
	SetDue(ctx context.Context, id string, due *time.Time) (items.Item, error)
	SetPriority(ctx context.Context, id, priority string) (items.Item, error)
	AddTags(ctx context.Context, id string, tags []string) (items.Item, error)
	RemoveTags(ctx context.Context, id string, tags []string) (items.Item, error)
	ChangeType(ctx context.Context, id string, t lifecycle.Type) (items.Item, error)
}

// Exporter sends a permanent note to the markdown vault.
type Exporter interface {
	Configured() bool
	Export(it items.Item) (string, error)
}

// Reply is what goes back to the user; QuickReplies become tap shortcuts
// under list replies.
type Reply struct {
	Text         string
	QuickReplies []string
}

// Config holds the executor's tunables, threaded in explicitly so tests can
// override them.
type Config struct {
	ListLimit int
	Origin    string // capture channel recorded on created items

	// Events receives analytics-worthy milestones (nil to disable).
	Events func(ctx context.Context, userID, event string, props map[string]any)
}

// Executor runs one parsed command at a time. It is stateless between
// commands except through the session and item stores.
type Executor struct {
	store     ItemStore
	sessions  *Sessions
	exporter  Exporter
	listLimit int
	origin    string
	events    func(ctx context.Context, userID, event string, props map[string]any)
	now       func() time.Time
}

func NewExecutor(store ItemStore, sessions *Sessions, exporter Exporter, cfg Config, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 9
	}
	origin := cfg.Origin
	if origin == "" {
		origin = "LINE"
	}
	return &Executor{
		store:     store,
		sessions:  sessions,
		exporter:  exporter,
		listLimit: limit,
		origin:    origin,
		events:    cfg.Events,
		now:       now,
	}
}

func (e *Executor) emit(ctx context.Context, userID, event string, props map[string]any) {
	if e.events != nil {
		e.events(ctx, userID, event, props)
	}
}

var listShortcuts = []string{"!detail 1", "!done 1", "!archive 1", "!inbox"}

// Handle parses and executes one inbound message.
func (e *Executor) Handle(ctx context.Context, userID, text string) Reply {
	cmd := Parse(text)

	switch cmd.Kind {
	case KindHelp:
		return Reply{Text: msgHelp}
	case KindUnknown:
		return Reply{Text: msgUnknown}
	case KindCapture:
		return e.capture(ctx, userID, cmd.Capture)

	case KindInbox:
		return e.query(ctx, userID, "📥 インボックス", items.Filter{Type: lifecycle.TypeNote, Status: lifecycle.StatusFleeting})
	case KindToday:
		return e.today(ctx, userID)
	case KindStats:
		return e.stats(ctx, userID)
	case KindActive:
		return e.query(ctx, userID, "☑️ 進行中のTODO", items.Filter{Type: lifecycle.TypeTodo, Status: lifecycle.StatusActive})
	case KindNotes:
		return e.query(ctx, userID, "📝 メモ", items.Filter{Type: lifecycle.TypeNote, NotStatus: lifecycle.StatusArchived})
	case KindTodos:
		return e.query(ctx, userID, "☑️ TODO", items.Filter{Type: lifecycle.TypeTodo, NotStatus: lifecycle.StatusArchived})
	case KindScratch:
		return e.query(ctx, userID, "✏️ 下書き", items.Filter{Type: lifecycle.TypeScratch, Status: lifecycle.StatusDraft})
	case KindFleeting:
		return e.query(ctx, userID, "📝 fleeting", items.Filter{Type: lifecycle.TypeNote, Status: lifecycle.StatusFleeting})
	case KindDeveloping:
		return e.query(ctx, userID, "🌱 developing", items.Filter{Type: lifecycle.TypeNote, Status: lifecycle.StatusDeveloping})
	case KindPermanent:
		return e.query(ctx, userID, "💎 permanent", items.Filter{Type: lifecycle.TypeNote, Status: lifecycle.StatusPermanent})
	case KindFind:
		return e.query(ctx, userID, "🔍 検索: "+cmd.Arg, items.Filter{Keyword: cmd.Arg, NotStatus: lifecycle.StatusArchived})
	case KindList:
		return e.query(ctx, userID, "🏷 #"+cmd.Arg, items.Filter{Tag: cmd.Arg, NotStatus: lifecycle.StatusArchived})

	case KindDetail:
		return e.detail(ctx, userID, cmd.Index)
	case KindDue:
		return e.due(ctx, userID, cmd.Index, cmd.Arg)
	case KindTag:
		return e.tag(ctx, userID, cmd.Index, cmd.Arg, true)
	case KindUntag:
		return e.tag(ctx, userID, cmd.Index, cmd.Arg, false)
	case KindPriority:
		return e.priority(ctx, userID, cmd.Index, cmd.Arg)
	case KindDone:
		return e.done(ctx, userID, cmd.Index)
	case KindArchive:
		return e.archive(ctx, userID, cmd.Index)
	case KindDelete:
		return e.delete(ctx, userID, cmd.Index)
	case KindDevelop:
		return e.transition(ctx, userID, cmd.Index, lifecycle.StatusFleeting, lifecycle.StatusDeveloping, msgDevelopOnly, "🌱 developing にしました: ")
	case KindMature:
		return e.transition(ctx, userID, cmd.Index, lifecycle.StatusDeveloping, lifecycle.StatusPermanent, msgMatureOnly, "💎 permanent にしました: ")
	case KindUpgrade:
		return e.upgrade(ctx, userID, cmd.Index)
	case KindTrack:
		return e.track(ctx, userID, cmd.Index, cmd.Arg)
	case KindExport:
		return e.export(ctx, userID, cmd.Index)
	}

	return Reply{Text: msgUnknown}
}

// ----------------------
//       CAPTURE
// ----------------------

func (e *Executor) capture(ctx context.Context, userID string, c Capture) Reply {
	if strings.TrimSpace(c.Title) == "" {
		return Reply{Text: msgEmptyCapture}
	}

	it, err := e.store.Create(ctx, items.NewItem{
		Type:     c.Type,
		Title:    c.Title,
		Content:  c.Content,
		Priority: c.Priority,
		Origin:   e.origin,
	})
	if err != nil {
		log.Printf("[WARN] capture failed: %v", err)
		return Reply{Text: msgStoreError}
	}
	e.emit(ctx, userID, "item_captured", map[string]any{"item_id": it.ID, "item_type": string(it.Type)})
	return Reply{Text: msgCaptured(it)}
}

// ----------------------
//       QUERIES
// ----------------------

// query lists items and unconditionally replaces the user's session with the
// ids in displayed order. An empty result clears any stale session too.
func (e *Executor) query(ctx context.Context, userID, header string, f items.Filter) Reply {
	f.Limit = e.listLimit
	list, err := e.store.List(ctx, f)
	if err != nil {
		log.Printf("[WARN] list failed: %v", err)
		return Reply{Text: msgStoreError}
	}

	ids := make([]string, len(list))
	for i, it := range list {
		ids[i] = it.ID
	}
	e.sessions.Set(userID, ids)

	reply := Reply{Text: renderList(header, list)}
	if len(list) > 0 {
		reply.QuickReplies = listShortcuts
	}
	return reply
}

func (e *Executor) today(ctx context.Context, userID string) Reply {
	n := e.now()
	day := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
	return e.query(ctx, userID, "🗓 今日のTODO", items.Filter{
		Type:          lifecycle.TypeTodo,
		Status:        lifecycle.StatusActive,
		DueOnOrBefore: &day,
		OrderByDue:    true,
	})
}

// stats is a query command without a meaningful numbered list: it clears the
// session by overwriting it with an empty one.
func (e *Executor) stats(ctx context.Context, userID string) Reply {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		log.Printf("[WARN] stats failed: %v", err)
		return Reply{Text: msgStoreError}
	}
	e.sessions.Set(userID, nil)
	return Reply{Text: renderStats(stats)}
}

// ----------------------
//   INDEX-TARGETED
// ----------------------

// resolve turns a 1-based session index into the target item. Absence (no
// session, expired, out of range) is one uniform failure, distinct from any
// type/status rejection.
func (e *Executor) resolve(ctx context.Context, userID string, index int) (items.Item, Reply, bool) {
	id, ok := e.sessions.Get(userID, index)
	if !ok {
		return items.Item{}, Reply{Text: msgNotFound(index)}, false
	}
	it, err := e.store.Get(ctx, id)
	if err != nil {
		log.Printf("[WARN] get %s failed: %v", id, err)
		return items.Item{}, Reply{Text: msgNotFound(index)}, false
	}
	return it, Reply{}, true
}

func (e *Executor) detail(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	return Reply{Text: renderDetail(it)}
}

func (e *Executor) due(ctx context.Context, userID string, index int, arg string) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeTodo {
		return Reply{Text: msgTodoOnly}
	}

	var due *time.Time
	switch strings.ToLower(arg) {
	case "clear", "なし":
		// clears the due date
	default:
		d, err := ParseDate(arg, e.now())
		if err != nil {
			return Reply{Text: msgBadDate}
		}
		due = &d
	}

	updated, err := e.store.SetDue(ctx, it.ID, due)
	if err != nil {
		log.Printf("[WARN] set due %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: msgDueSet(updated, due)}
}

func (e *Executor) tag(ctx context.Context, userID string, index int, arg string, add bool) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type == lifecycle.TypeScratch {
		return Reply{Text: msgScratchNoTag}
	}

	tags := strings.Fields(arg)
	for i, t := range tags {
		tags[i] = strings.TrimPrefix(t, "#")
	}

	var updated items.Item
	var err error
	if add {
		updated, err = e.store.AddTags(ctx, it.ID, tags)
	} else {
		updated, err = e.store.RemoveTags(ctx, it.ID, tags)
	}
	if err != nil {
		log.Printf("[WARN] tag update %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}

	if len(updated.Tags) == 0 {
		return Reply{Text: "🏷 タグなし: " + updated.Title}
	}
	return Reply{Text: "🏷 #" + strings.Join(updated.Tags, " #") + ": " + updated.Title}
}

func (e *Executor) priority(ctx context.Context, userID string, index int, arg string) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type == lifecycle.TypeScratch {
		return Reply{Text: msgScratchNoPrio}
	}

	level := strings.ToLower(arg)
	if level == "なし" {
		level = lifecycle.PriorityNone
	}
	if !lifecycle.IsValidPriority(level) {
		return Reply{Text: msgBadPriority}
	}

	updated, err := e.store.SetPriority(ctx, it.ID, level)
	if err != nil {
		log.Printf("[WARN] set priority %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "優先度を " + level + " にしました: " + updated.Title}
}

func (e *Executor) done(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeTodo {
		return Reply{Text: msgTodoOnly}
	}

	updated, err := e.store.SetStatus(ctx, it.ID, lifecycle.StatusDone)
	if err != nil {
		log.Printf("[WARN] done %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "✅ 完了にしました: " + updated.Title}
}

func (e *Executor) archive(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	updated, err := e.store.SetStatus(ctx, it.ID, lifecycle.StatusArchived)
	if err != nil {
		log.Printf("[WARN] archive %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "📦 アーカイブしました: " + updated.Title}
}

func (e *Executor) delete(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if err := e.store.Delete(ctx, it.ID); err != nil {
		log.Printf("[WARN] delete %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "🗑 削除しました: " + it.Title}
}

// transition moves a note one step along fleeting → developing → permanent.
func (e *Executor) transition(ctx context.Context, userID string, index int, from, to, rejection, confirmation string) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeNote || it.Status != from {
		return Reply{Text: rejection}
	}

	updated, err := e.store.SetStatus(ctx, it.ID, to)
	if err != nil {
		log.Printf("[WARN] transition %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: confirmation + updated.Title}
}

// upgrade promotes a scratch draft to a note.
func (e *Executor) upgrade(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeScratch {
		return Reply{Text: msgUpgradeOnly}
	}

	updated, err := e.store.ChangeType(ctx, it.ID, lifecycle.TypeNote)
	if err != nil {
		log.Printf("[WARN] upgrade %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "📝 メモに昇格しました: " + updated.Title}
}

// track creates a new todo that follows a note, linked back via
// linked_note_id, optionally with a due date.
func (e *Executor) track(ctx context.Context, userID string, index int, arg string) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeNote {
		return Reply{Text: msgNoteOnly}
	}

	var due *time.Time
	if arg != "" {
		d, err := ParseDate(arg, e.now())
		if err != nil {
			return Reply{Text: msgBadDate}
		}
		due = &d
	}

	todo, err := e.store.Create(ctx, items.NewItem{
		Type:         lifecycle.TypeTodo,
		Title:        it.Title,
		Origin:       e.origin,
		LinkedNoteID: it.ID,
		Due:          due,
	})
	if err != nil {
		log.Printf("[WARN] track %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	return Reply{Text: "🔗 追跡TODOを作成しました: " + todo.Title}
}

// export sends a permanent note to the vault, then the note moves to
// exported and is re-fetched for the confirmation.
func (e *Executor) export(ctx context.Context, userID string, index int) Reply {
	it, rej, ok := e.resolve(ctx, userID, index)
	if !ok {
		return rej
	}
	if it.Type != lifecycle.TypeNote || it.Status != lifecycle.StatusPermanent {
		return Reply{Text: msgExportOnly}
	}
	if e.exporter == nil || !e.exporter.Configured() {
		return Reply{Text: msgNoVault}
	}

	path, err := e.exporter.Export(it)
	if err != nil {
		log.Printf("[WARN] export %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	if _, err := e.store.SetStatus(ctx, it.ID, lifecycle.StatusExported); err != nil {
		log.Printf("[WARN] mark exported %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	updated, err := e.store.Get(ctx, it.ID)
	if err != nil {
		log.Printf("[WARN] refetch %s failed: %v", it.ID, err)
		return Reply{Text: msgStoreError}
	}
	e.emit(ctx, userID, "item_exported", map[string]any{"item_id": it.ID})
	return Reply{Text: "📤 エクスポートしました: " + updated.Title + "\n" + path}
}
