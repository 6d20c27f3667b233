package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lighter-relay/internal/alerts"
	"lighter-relay/internal/state"

	"go.uber.org/zap"
)

const operatorOffsetKey = "telegram:operator:last_update_id"

func (a *App) startOperator(ctx context.Context) {
	if a.cfg == nil || a.alerts == nil || !a.cfg.Telegram.OperatorEnabled || !a.alerts.Enabled() {
		return
	}
	chatID := strings.TrimSpace(a.cfg.Telegram.ChatID)
	if chatID == "" {
		a.log.Warn("telegram operator disabled: chat_id is required")
		return
	}
	pollInterval := a.cfg.Telegram.OperatorPollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	allowedUsers := make(map[int64]struct{}, len(a.cfg.Telegram.OperatorAllowedUserIDs))
	for _, id := range a.cfg.Telegram.OperatorAllowedUserIDs {
		allowedUsers[id] = struct{}{}
	}
	go a.operatorLoop(ctx, chatID, allowedUsers, pollInterval)
}

func (a *App) operatorLoop(ctx context.Context, chatID string, allowedUsers map[int64]struct{}, pollInterval time.Duration) {
	offset := a.loadOperatorOffset(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
		updates, err := a.alerts.GetUpdates(ctx, offset)
		if err != nil {
			if !a.operatorWarned {
				a.log.Warn("telegram operator poll failed", zap.Error(err))
				a.operatorWarned = true
			}
			continue
		}
		if a.operatorWarned {
			a.log.Info("telegram operator recovered")
			a.operatorWarned = false
		}
		for _, upd := range updates {
			if upd.ID >= offset {
				offset = upd.ID + 1
				a.saveOperatorOffset(ctx, offset)
			}
			a.handleOperatorUpdate(ctx, upd, chatID, allowedUsers)
		}
	}
}

func (a *App) handleOperatorUpdate(ctx context.Context, upd alerts.Update, chatID string, allowedUsers map[int64]struct{}) {
	if upd.ChatID != chatID {
		return
	}
	if len(allowedUsers) > 0 {
		if _, ok := allowedUsers[upd.UserID]; !ok {
			return
		}
	}
	cmd, ok := parseOperatorCommand(upd.Text)
	if !ok {
		return
	}
	resp := a.handleOperatorCommand(ctx, cmd)
	if resp == "" {
		return
	}
	if err := a.alerts.Send(ctx, resp); err != nil {
		a.log.Warn("operator response failed", zap.Error(err))
	}
}

func parseOperatorCommand(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", false
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(fields[0], "/")), true
}

func (a *App) handleOperatorCommand(ctx context.Context, cmd string) string {
	switch cmd {
	case "status":
		return a.operatorStatus(ctx)
	case "pause":
		a.paused.Store(true)
		if err := state.SavePaused(ctx, a.store, true); err != nil {
			a.log.Warn("paused flag save failed", zap.Error(err))
		}
		a.log.Info("relay paused by operator")
		return "relay paused"
	case "resume":
		a.paused.Store(false)
		if err := state.SavePaused(ctx, a.store, false); err != nil {
			a.log.Warn("paused flag save failed", zap.Error(err))
		}
		a.log.Info("relay resumed by operator")
		return "relay resumed"
	default:
		return ""
	}
}

func (a *App) operatorStatus(ctx context.Context) string {
	var b strings.Builder
	if a.paused.Load() {
		b.WriteString("relay paused")
	} else {
		b.WriteString("relay running")
	}
	if missing := a.creds.Validate(); len(missing) > 0 {
		fmt.Fprintf(&b, "\nmissing config: %s", strings.Join(missing, ", "))
	}
	last, ok, err := state.LoadLastSubmission(ctx, a.store)
	if err != nil {
		a.log.Warn("last submission load failed", zap.Error(err))
	} else if ok {
		fmt.Fprintf(&b, "\nlast order: %s %s", last.Side, last.Quantity)
		if last.Symbol != "" {
			fmt.Fprintf(&b, " %s", last.Symbol)
		} else {
			fmt.Fprintf(&b, " market %d", last.MarketIndex)
		}
		if last.TxHash != "" {
			fmt.Fprintf(&b, " tx %s", last.TxHash)
		}
		fmt.Fprintf(&b, " at %s", time.UnixMilli(last.SubmittedAtMS).UTC().Format(time.RFC3339))
	} else {
		b.WriteString("\nno orders submitted yet")
	}
	return b.String()
}

func (a *App) loadOperatorOffset(ctx context.Context) int64 {
	if a.store == nil {
		return 0
	}
	raw, ok, err := a.store.Get(ctx, operatorOffsetKey)
	if err != nil || !ok {
		return 0
	}
	offset, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return offset
}

func (a *App) saveOperatorOffset(ctx context.Context, offset int64) {
	if a.store == nil {
		return
	}
	if err := a.store.Set(ctx, operatorOffsetKey, strconv.FormatInt(offset, 10)); err != nil {
		a.log.Warn("operator offset save failed", zap.Error(err))
	}
}
