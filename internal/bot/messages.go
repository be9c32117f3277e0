package bot

import (
	"fmt"
	"strings"
	"time"

	"notebox-backend/internal/items"
	"notebox-backend/internal/lifecycle"
)

// User-facing reply catalog. The capture channel is LINE, so replies are
// Japanese; command verbs stay English (see the help text).

const (
	msgEmptyList     = "該当する項目はありません。"
	msgEmptyCapture  = "空のメッセージは登録できません。"
	msgStoreError    = "⚠️ 保存処理に失敗しました。時間をおいて再度お試しください。"
	msgUnknown       = "コマンドを認識できませんでした。「?」でヘルプを表示します。"
	msgBadDate       = "日付が読み取れませんでした。例: 2026-03-15 / tomorrow"
	msgBadPriority   = "優先度は high / medium / low / none のいずれかです。"
	msgTodoOnly      = "このコマンドは TODO にのみ使えます。"
	msgNoteOnly      = "このコマンドはメモにのみ使えます。"
	msgScratchNoTag  = "scratch にはタグを付けられません。"
	msgScratchNoPrio = "scratch には優先度を設定できません。"
	msgDevelopOnly   = "育成できるのは fleeting のメモだけです。"
	msgMatureOnly    = "成熟にできるのは developing のメモだけです。"
	msgUpgradeOnly   = "メモに昇格できるのは scratch だけです。"
	msgExportOnly    = "エクスポートできるのは permanent のメモだけです。"
	msgNoVault       = "エクスポート先が設定されていません。"
)

const msgHelp = `📖 使い方
そのまま送信 → メモとして登録
!todo / !high を先頭に付けると TODO・高優先度になります

一覧系:
!inbox !today !active !notes !todos !scratch
!fleeting !developing !permanent
!find <キーワード>  !list <タグ>  !stats

番号指定(一覧表示後):
!detail N  !done N  !archive N  !delete N
!due N <日付|clear>  !tag N <タグ>  !untag N <タグ>
!priority N <high|medium|low|none>
!develop N  !mature N  !upgrade N  !track N [日付]  !export N`

func msgNotFound(n int) string {
	return fmt.Sprintf("番号 %d の項目はありません。一覧を表示し直してください。", n)
}

// typeIcon marks each list line with the item's type.
func typeIcon(it items.Item) string {
	switch it.Type {
	case lifecycle.TypeTodo:
		if it.Status == lifecycle.StatusDone {
			return "✅"
		}
		return "☑️"
	case lifecycle.TypeScratch:
		return "✏️"
	default:
		return "📝"
	}
}

func priorityMark(p string) string {
	switch p {
	case lifecycle.PriorityHigh:
		return " 🔺"
	case lifecycle.PriorityMedium:
		return " 🔸"
	default:
		return ""
	}
}

// renderList produces the numbered list the session indexes refer to.
func renderList(header string, list []items.Item) string {
	if len(list) == 0 {
		return msgEmptyList
	}
	var b strings.Builder
	b.WriteString(header)
	for i, it := range list {
		b.WriteString(fmt.Sprintf("\n%d. %s %s%s", i+1, typeIcon(it), it.Title, priorityMark(it.Priority)))
		if it.Due != nil {
			b.WriteString(" (期限 " + it.Due.Format("2006-01-02") + ")")
		}
	}
	return b.String()
}

func renderDetail(it items.Item) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n種別: %s / 状態: %s", typeIcon(it), it.Title, it.Type, it.Status))
	if it.Priority != lifecycle.PriorityNone {
		b.WriteString(" / 優先度: " + it.Priority)
	}
	if it.Due != nil {
		b.WriteString("\n期限: " + it.Due.Format("2006-01-02"))
	}
	if len(it.Tags) > 0 {
		b.WriteString("\nタグ: #" + strings.Join(it.Tags, " #"))
	}
	if it.Content != "" {
		b.WriteString("\n---\n" + it.Content)
	}
	if it.Source != "" {
		b.WriteString("\n出典: " + it.Source)
	}
	return b.String()
}

func renderStats(stats items.Stats) string {
	line := func(t lifecycle.Type, label string, statuses ...string) string {
		parts := make([]string, 0, len(statuses))
		for _, s := range statuses {
			parts = append(parts, fmt.Sprintf("%s %d", s, stats.Count(t, s)))
		}
		return fmt.Sprintf("%s %d件 (%s)", label, stats.TotalFor(t), strings.Join(parts, " / "))
	}
	return "📊 集計\n" +
		line(lifecycle.TypeNote, "メモ", lifecycle.StatusFleeting, lifecycle.StatusDeveloping, lifecycle.StatusPermanent, lifecycle.StatusExported, lifecycle.StatusArchived) + "\n" +
		line(lifecycle.TypeTodo, "TODO", lifecycle.StatusActive, lifecycle.StatusDone, lifecycle.StatusArchived) + "\n" +
		line(lifecycle.TypeScratch, "下書き", lifecycle.StatusDraft, lifecycle.StatusArchived)
}

func msgCaptured(it items.Item) string {
	switch it.Type {
	case lifecycle.TypeTodo:
		if it.Priority == lifecycle.PriorityHigh {
			return "☑️🔺 高優先度のTODOを登録しました: " + it.Title
		}
		return "☑️ TODOを登録しました: " + it.Title
	default:
		return "📝 メモを登録しました: " + it.Title
	}
}

func msgDueSet(it items.Item, due *time.Time) string {
	if due == nil {
		return "期限を解除しました: " + it.Title
	}
	return "📅 期限を " + due.Format("2006-01-02") + " に設定しました: " + it.Title
}
