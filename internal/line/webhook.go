package line

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"notebox-backend/internal/analytics"
	"notebox-backend/internal/bot"
)

// Event is one entry of a webhook batch.
type Event struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookBody struct {
	Events []Event `json:"events"`
}

// Responder delivers the reply for one event (the real Client in prod).
type Responder interface {
	Reply(ctx context.Context, replyToken, text string, shortcuts []string) error
}

// WebhookHandler verifies the request signature over the raw body, then runs
// each text-message event through the command executor and replies. A bad
// signature is rejected before any event is parsed.
func WebhookHandler(dbx *sql.DB, channelSecret string, exec *bot.Executor, client Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}

		if !ValidateSignature(channelSecret, body, r.Header.Get("X-Line-Signature")) {
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}

		var batch webhookBody
		if err := json.Unmarshal(body, &batch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		for _, ev := range batch.Events {
			if ev.Type != "message" || ev.Message.Type != "text" || ev.Source.UserID == "" {
				continue
			}

			reply := exec.Handle(r.Context(), ev.Source.UserID, ev.Message.Text)

			_ = analytics.Log(r.Context(), dbx,
				analytics.Envelope{UserID: ev.Source.UserID, Channel: "line"},
				"command_executed",
				map[string]any{"text_len": len(ev.Message.Text)},
			)

			if err := client.Reply(r.Context(), ev.ReplyToken, reply.Text, reply.QuickReplies); err != nil {
				log.Printf("[WARN] line reply failed for %s: %v", ev.Source.UserID, err)
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
