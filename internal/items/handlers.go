package items

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"notebox-backend/internal/analytics"
	"notebox-backend/internal/lifecycle"
)

// ----------------------
//    REST HANDLERS
// ----------------------

func writeItem(w http.ResponseWriter, it Item) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(it)
}

func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyTitle):
		http.Error(w, "title is required", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidStatus):
		http.Error(w, "invalid status for item type", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidType):
		http.Error(w, "invalid item type", http.StatusBadRequest)
	default:
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
	}
}

func ListHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := Filter{
			Type:    lifecycle.Type(q.Get("type")),
			Status:  q.Get("status"),
			Tag:     q.Get("tag"),
			Keyword: q.Get("q"),
		}

		result, err := store.List(r.Context(), f)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		if result == nil {
			result = []Item{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateHandler(dbx *sql.DB, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type     string     `json:"type"`
			Title    string     `json:"title"`
			Content  string     `json:"content"`
			Priority string     `json:"priority"`
			Tags     []string   `json:"tags"`
			Source   string     `json:"source"`
			Due      *time.Time `json:"due"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}

		typ := lifecycle.Type(strings.TrimSpace(body.Type))
		if typ == "" {
			typ = lifecycle.TypeNote
		}

		it, err := store.Create(r.Context(), NewItem{
			Type:     typ,
			Title:    body.Title,
			Content:  body.Content,
			Priority: body.Priority,
			Tags:     body.Tags,
			Source:   body.Source,
			Origin:   "REST",
			Due:      body.Due,
		})
		if err != nil {
			storeError(w, err)
			return
		}

		_ = analytics.Log(r.Context(), dbx, analytics.Envelope{UserID: "operator", Channel: "rest"}, "item_captured", map[string]any{
			"item_id":   it.ID,
			"item_type": string(it.Type),
			"text_len":  len(it.Title) + len(it.Content),
		})

		writeItem(w, it)
	}
}

func GetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			http.Error(w, "id required", 400)
			return
		}
		it, err := store.Get(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeItem(w, it)
	}
}

// UpdateHandler patches title/content/source. Editing an exported note's
// text reverts its status to permanent (stale export).
func UpdateHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID      string  `json:"id"`
			Title   *string `json:"title"`
			Content *string `json:"content"`
			Source  *string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.ID == "" {
			http.Error(w, "id required", 400)
			return
		}

		it, err := store.Update(r.Context(), body.ID, Patch{Title: body.Title, Content: body.Content, Source: body.Source})
		if err != nil {
			storeError(w, err)
			return
		}
		writeItem(w, it)
	}
}

func SetStatusHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.ID == "" || body.Status == "" {
			http.Error(w, "id and status required", 400)
			return
		}

		it, err := store.SetStatus(r.Context(), body.ID, body.Status)
		if err != nil {
			storeError(w, err)
			return
		}
		writeItem(w, it)
	}
}

// ChangeTypeHandler converts an item between note/todo/scratch with the
// status remap applied in the same write.
func ChangeTypeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.ID == "" || body.Type == "" {
			http.Error(w, "id and type required", 400)
			return
		}

		it, err := store.ChangeType(r.Context(), body.ID, lifecycle.Type(body.Type))
		if err != nil {
			storeError(w, err)
			return
		}
		writeItem(w, it)
	}
}

func DeleteHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.ID == "" {
			http.Error(w, "id required", 400)
			return
		}

		if err := store.Delete(r.Context(), body.ID); err != nil {
			storeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": body.ID})
	}
}

func StatsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}
