// Package telegram bridges Telegram chats to the conversation router.
// Each chat gets its own session, so a group and a private chat with the
// same user keep separate contracts.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/leasecraft/internal/router"
	"github.com/user/leasecraft/internal/types"
)

const maxTelegramMessage = 4096

// Conversations is the routing surface the adapter depends on. Implemented
// by router.Router.
type Conversations interface {
	Handle(ctx context.Context, sessionID types.SessionID, message, callerContract, source string) (*router.Result, error)
	Current(ctx context.Context, sessionID types.SessionID) (string, error)
	Clear(ctx context.Context, sessionID types.SessionID) error
}

// Adapter long-polls Telegram and routes each message as a conversation turn.
type Adapter struct {
	bot    *tgbotapi.BotAPI
	conv   Conversations
	turns  types.TurnLog
	logger *slog.Logger
}

// New creates a Telegram adapter. turns may be nil; /status then omits the
// message count.
func New(token string, conv Conversations, turns types.TurnLog, logger *slog.Logger) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		bot:    bot,
		conv:   conv,
		turns:  turns,
		logger: logger,
	}, nil
}

// Start begins long-polling for Telegram updates. Blocks until ctx is done.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	sid := buildSessionKey(msg.Chat.ID)

	result, err := a.conv.Handle(ctx, sid, msg.Text, "", "telegram")
	if err != nil {
		a.logger.Error("telegram turn failed", "session_id", sid, "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
		return
	}

	a.sendResponse(chatID, result.Message)
	if result.Action == router.ActionUpdated && result.Contract != "" {
		a.sendResponse(chatID, result.Contract)
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sid := buildSessionKey(msg.Chat.ID)

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "مرحباً! أنا مساعدك لعقود الإيجار الأردنية.\n"+
			"Hello! I'm your Jordanian lease contract assistant. "+
			"Ask me to create, edit, review, or explain a lease contract.")

	case "clear":
		if err := a.conv.Clear(ctx, sid); err != nil {
			a.logger.Error("clear session failed", "session_id", sid, "error", err)
			a.sendResponse(chatID, "Error clearing the session.")
			return
		}
		a.sendResponse(chatID, "Session cleared. The stored contract has been removed.")

	case "contract":
		contract, err := a.conv.Current(ctx, sid)
		if err != nil {
			a.logger.Error("load contract failed", "session_id", sid, "error", err)
			a.sendResponse(chatID, "Error fetching the contract.")
			return
		}
		if contract == "" {
			a.sendResponse(chatID, "No contract in this session yet. Ask me to create one.")
			return
		}
		a.sendResponse(chatID, contract)

	case "status":
		contract, err := a.conv.Current(ctx, sid)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		status := fmt.Sprintf("Session: %s\nContract: %s", sid, yesNo(contract != ""))
		if a.turns != nil {
			count, err := a.turns.Count(ctx, sid)
			if err != nil {
				a.sendResponse(chatID, "Error fetching status.")
				return
			}
			status += fmt.Sprintf("\nTurns: %d", count)
		}
		a.sendResponse(chatID, status)

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /clear, /contract, /status")
	}
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				a.logger.Error("send message failed", "chat_id", chatID, "error", err)
			}
		}
	}
}

// splitMessage cuts on rune boundaries so Arabic text survives Telegram's
// message size cap.
func splitMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(runes) > 0 {
		end := maxTelegramMessage
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[:end]))
		runes = runes[end:]
	}
	return parts
}

func buildSessionKey(chatID int64) types.SessionID {
	return types.NewSessionKey("telegram", strconv.FormatInt(chatID, 10))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
