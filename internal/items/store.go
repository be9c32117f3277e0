package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"notebox-backend/internal/lifecycle"
)

// Store is the sole writer of items. All mutations go through it so the
// (type, status) invariant is enforced on every write.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var (
	ErrNotFound      = errors.New("item not found")
	ErrInvalidStatus = errors.New("invalid status for item type")
	ErrInvalidType   = errors.New("invalid item type")
	ErrEmptyTitle    = errors.New("title is required")
)

const itemCols = `
	id, type, status, title, content, priority,
	due, tags, aliases,
	COALESCE(source,''), COALESCE(origin,''), COALESCE(linked_note_id,''),
	created_at, modified_at`

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var it Item
	var due sql.NullTime
	err := row.Scan(
		&it.ID, &it.Type, &it.Status, &it.Title, &it.Content, &it.Priority,
		&due, pq.Array(&it.Tags), pq.Array(&it.Aliases),
		&it.Source, &it.Origin, &it.LinkedNoteID,
		&it.CreatedAt, &it.ModifiedAt,
	)
	if err != nil {
		return Item{}, err
	}
	if due.Valid {
		d := due.Time
		it.Due = &d
	}
	return it, nil
}

// ----------------------
//        READS
// ----------------------

func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id=$1`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) List(ctx context.Context, f Filter) ([]Item, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "type="+arg(string(f.Type)))
	}
	if f.Status != "" {
		where = append(where, "status="+arg(f.Status))
	}
	if f.NotStatus != "" {
		where = append(where, "status<>"+arg(f.NotStatus))
	}
	if f.Tag != "" {
		where = append(where, arg(f.Tag)+" = ANY(tags)")
	}
	if f.Keyword != "" {
		p := arg("%" + f.Keyword + "%")
		where = append(where, "(title ILIKE "+p+" OR content ILIKE "+p+")")
	}
	if f.DueOnOrBefore != nil {
		where = append(where, "due IS NOT NULL AND due <= "+arg(*f.DueOnOrBefore))
	}

	order := "created_at DESC, id DESC"
	if f.OrderByDue {
		order = "due ASC, created_at ASC"
	}

	q := `SELECT ` + itemCols + ` FROM items WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + order
	if f.Limit > 0 {
		q += " LIMIT " + arg(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, status, COUNT(*) FROM items GROUP BY type, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := Stats{}
	for rows.Next() {
		var t lifecycle.Type
		var status string
		var n int
		if err := rows.Scan(&t, &status, &n); err != nil {
			return nil, err
		}
		if stats[t] == nil {
			stats[t] = map[string]int{}
		}
		stats[t][status] = n
	}
	return stats, rows.Err()
}

// ----------------------
//       MUTATIONS
// ----------------------

func (s *Store) Create(ctx context.Context, in NewItem) (Item, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Item{}, ErrEmptyTitle
	}
	if !lifecycle.IsValidType(in.Type) {
		return Item{}, ErrInvalidType
	}

	prio := in.Priority
	if prio == "" || in.Type == lifecycle.TypeScratch {
		prio = lifecycle.PriorityNone
	}
	if !lifecycle.IsValidPriority(prio) {
		return Item{}, fmt.Errorf("invalid priority %q", in.Priority)
	}

	tags := in.Tags
	if in.Type == lifecycle.TypeScratch || tags == nil {
		tags = []string{}
	}
	due := in.Due
	if in.Type != lifecycle.TypeTodo {
		due = nil
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO items (id, type, status, title, content, priority, due, tags, aliases, source, origin, linked_note_id, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '{}', $9, $10, NULLIF($11,''), now(), now())
		RETURNING `+itemCols,
		uuid.NewString(), string(in.Type), lifecycle.DefaultStatus(in.Type),
		strings.TrimSpace(in.Title), in.Content, prio,
		due, pq.Array(tags), in.Source, in.Origin, in.LinkedNoteID,
	)
	return scanItem(row)
}

// Update patches title/content/source. An exported note whose title or
// content actually changed drops back to permanent in the same write.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Item, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}

	title, content, source := cur.Title, cur.Content, cur.Source
	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		content = *p.Content
	}
	if p.Source != nil {
		source = *p.Source
	}
	if title == "" {
		return Item{}, ErrEmptyTitle
	}

	status := cur.Status
	if cur.Type == lifecycle.TypeNote {
		status = lifecycle.RevertExportIfEdited(cur.Status, title != cur.Title, content != cur.Content)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE items
		SET title=$2, content=$3, source=$4, status=$5, modified_at=GREATEST(now(), modified_at)
		WHERE id=$1
		RETURNING `+itemCols,
		id, title, content, source, status,
	)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) SetStatus(ctx context.Context, id, status string) (Item, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if !lifecycle.IsValid(cur.Type, status) {
		return Item{}, ErrInvalidStatus
	}
	return s.updateOne(ctx, id, "status=$2", status)
}

// SetDue sets or clears (nil) the due date.
func (s *Store) SetDue(ctx context.Context, id string, due *time.Time) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE items SET due=$2, modified_at=GREATEST(now(), modified_at)
		WHERE id=$1
		RETURNING `+itemCols, id, due)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) SetPriority(ctx context.Context, id, priority string) (Item, error) {
	if !lifecycle.IsValidPriority(priority) {
		return Item{}, fmt.Errorf("invalid priority %q", priority)
	}
	return s.updateOne(ctx, id, "priority=$2", priority)
}

// AddTags merges tags with set semantics in a single UPDATE so back-to-back
// merges for the same item cannot lose each other.
func (s *Store) AddTags(ctx context.Context, id string, tags []string) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE items
		SET tags = (SELECT COALESCE(array_agg(DISTINCT t), '{}') FROM unnest(tags || $2::text[]) AS t),
		    modified_at = GREATEST(now(), modified_at)
		WHERE id=$1
		RETURNING `+itemCols, id, pq.Array(tags))
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) RemoveTags(ctx context.Context, id string, tags []string) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE items
		SET tags = (SELECT COALESCE(array_agg(t), '{}') FROM unnest(tags) AS t WHERE NOT (t = ANY($2::text[]))),
		    modified_at = GREATEST(now(), modified_at)
		WHERE id=$1
		RETURNING `+itemCols, id, pq.Array(tags))
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

// ChangeType converts an item to another type, remapping its status and
// clearing fields that are meaningless in the destination type, all in one
// write.
func (s *Store) ChangeType(ctx context.Context, id string, newType lifecycle.Type) (Item, error) {
	if !lifecycle.IsValidType(newType) {
		return Item{}, ErrInvalidType
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}

	conv, ok := lifecycle.Convert(cur.Type, newType, cur.Status)
	if !ok {
		return cur, nil
	}

	sets := []string{"type=$2", "status=$3", "modified_at=GREATEST(now(), modified_at)"}
	if conv.ClearDue {
		sets = append(sets, "due=NULL")
	}
	if conv.ClearLink {
		sets = append(sets, "linked_note_id=NULL")
	}
	if conv.ClearTags {
		sets = append(sets, "tags='{}'")
	}
	if conv.ClearPriority {
		sets = append(sets, "priority='none'")
	}
	if conv.ClearAliases {
		sets = append(sets, "aliases='{}'")
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE items SET `+strings.Join(sets, ", ")+`
		WHERE id=$1
		RETURNING `+itemCols, id, string(newType), conv.Status)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ----------------------
//       HELPERS
// ----------------------

func (s *Store) updateOne(ctx context.Context, id, set string, val any) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE items SET `+set+`, modified_at=GREATEST(now(), modified_at)
		WHERE id=$1
		RETURNING `+itemCols, id, val)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}
