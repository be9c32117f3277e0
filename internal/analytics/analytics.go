package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID  string // LINE user id, or "operator" for the REST API
	Channel string // "line" | "rest"
}

// Log inserts one analytics event.
// Never logs raw message text; caller passes sanitized props (lengths,
// command kinds, item ids).
func Log(ctx context.Context, db *sql.DB, env Envelope, eventName string, props any) error {
	if db == nil || eventName == "" {
		return nil
	}
	if env.UserID == "" {
		// no user => skip
		return nil
	}

	channel := strings.ToLower(strings.TrimSpace(env.Channel))
	if channel != "line" && channel != "rest" {
		channel = "unknown"
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		return nil
	}

	_, _ = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, channel,
			properties
		)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`, eventName, time.Now().UTC(), env.UserID, channel, string(b))

	return nil
}
