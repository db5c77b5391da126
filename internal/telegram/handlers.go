package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/acapela"
	"bunbot/internal/chatstore"
	"bunbot/internal/dispatch"
	"bunbot/internal/templates"
)

// Handlers owns the transport-facing behaviors: command handlers, the
// per-message bookkeeping middleware, and the default dispatch pipeline.
type Handlers struct {
	logger     *slog.Logger
	store      *chatstore.Store
	resolver   *templates.Resolver
	dispatcher *dispatch.Dispatcher

	adminUID      int64
	defaultLocale string
	aliveCutoff   time.Duration
}

// NewHandlers creates the handler set. The dispatcher is attached later with
// Bind because the transport and the intent table both need to exist first.
func NewHandlers(logger *slog.Logger, store *chatstore.Store, resolver *templates.Resolver, adminUID int64, defaultLocale string, aliveCutoff time.Duration) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		logger:        logger.With("component", "telegram_handlers"),
		store:         store,
		resolver:      resolver,
		adminUID:      adminUID,
		defaultLocale: defaultLocale,
		aliveCutoff:   aliveCutoff,
	}
}

// Bind attaches the dispatcher and registers the command handlers on the bot.
func (h *Handlers) Bind(b *bot.Bot, d *dispatch.Dispatcher) {
	h.dispatcher = d

	b.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommandStartOnly, h.boundary(h.start))
	b.RegisterHandler(bot.HandlerTypeMessageText, "help", bot.MatchTypeCommandStartOnly, h.boundary(h.help))
	b.RegisterHandler(bot.HandlerTypeMessageText, "stats", bot.MatchTypeCommandStartOnly, h.boundary(h.stats))
	b.RegisterHandler(bot.HandlerTypeMessageText, "voices", bot.MatchTypeCommandStartOnly, h.boundary(h.voices))
	b.RegisterHandler(bot.HandlerTypeMessageText, "snowflake_filter", bot.MatchTypeCommandStartOnly, h.boundary(h.snowflakeFilter))

	h.logger.Info("Registered Telegram command handlers")
}

// TrackMiddleware refreshes chat metadata and usage counters for every
// inbound message, before any handler runs. This is the only place
// RecordInbound is called, keeping the once-per-message contract.
func (h *Handlers) TrackMiddleware() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if msg := update.Message; msg != nil {
				chat := h.store.Touch(metaFromChat(&msg.Chat))
				h.store.RecordInbound(chat.ID, h.messageLocale(msg))
			}
			next(ctx, b, update)
		}
	}
}

// Default handles everything the command handlers don't claim: inline
// queries and the trigger dispatch pipeline for plain text.
func (h *Handlers) Default(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.InlineQuery != nil {
		h.inlineQuery(ctx, b, update.InlineQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	chat, ok := h.store.Get(msg.Chat.ID)
	if !ok {
		chat = h.store.Touch(metaFromChat(&msg.Chat))
	}

	handled, err := h.dispatcher.Dispatch(ctx, msg, chat)
	if err != nil {
		h.reportError(ctx, b, update, err)
		return
	}
	if !handled {
		h.logger.DebugContext(ctx, "No trigger matched", "chat_id", msg.Chat.ID)
	}
}

func (h *Handlers) start(ctx context.Context, b *bot.Bot, update *models.Update) error {
	if err := h.replyTemplate(ctx, b, update.Message, "start", nil); err != nil {
		return err
	}
	return h.replyTemplate(ctx, b, update.Message, "help", nil)
}

func (h *Handlers) help(ctx context.Context, b *bot.Bot, update *models.Update) error {
	return h.replyTemplate(ctx, b, update.Message, "help", nil)
}

func (h *Handlers) stats(ctx context.Context, b *bot.Bot, update *models.Update) error {
	st := h.store.Stats(time.Now(), h.aliveCutoff)

	return h.replyTemplate(ctx, b, update.Message, "stats", map[string]string{
		"allUsers":       strconv.Itoa(st.Users),
		"allGroups":      strconv.Itoa(st.Groups),
		"aliveGroups":    strconv.Itoa(st.AliveGroups),
		"deadGroups":     strconv.Itoa(st.DeadGroups),
		"userLanguages":  formatBreakdown(st.UserLanguages),
		"groupLanguages": formatBreakdown(st.GroupLanguages),
	})
}

func (h *Handlers) voices(ctx context.Context, b *bot.Bot, update *models.Update) error {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   strings.Join(acapela.Names(), ", "),
	})
	return err
}

// snowflakeFilter toggles the per-chat content-policy flag. Only the operator
// or a group administrator with the change-info permission may flip it.
func (h *Handlers) snowflakeFilter(ctx context.Context, b *bot.Bot, update *models.Update) error {
	msg := update.Message

	admin, err := h.isAdmin(ctx, b, msg)
	if err != nil {
		return err
	}
	if !admin {
		return h.replyTemplate(ctx, b, msg, "admin.prevent", nil)
	}

	key := "snowflake.disabled"
	if h.store.TogglePolicy(msg.Chat.ID) {
		key = "snowflake.enabled"
	}
	return h.replyTemplate(ctx, b, msg, key, nil)
}

func (h *Handlers) isAdmin(ctx context.Context, b *bot.Bot, msg *models.Message) (bool, error) {
	if msg.From == nil {
		return false, nil
	}
	// The operator identity always passes.
	if h.adminUID != 0 && msg.From.ID == h.adminUID {
		return true, nil
	}
	// A private chat has a single participant who owns its settings.
	if msg.Chat.Type == models.ChatTypePrivate {
		return true, nil
	}

	admins, err := b.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: msg.Chat.ID})
	if err != nil {
		return false, fmt.Errorf("failed to list chat administrators: %w", err)
	}

	for _, member := range admins {
		switch member.Type {
		case models.ChatMemberTypeOwner:
			if member.Owner != nil && member.Owner.User != nil && member.Owner.User.ID == msg.From.ID {
				return true, nil
			}
		case models.ChatMemberTypeAdministrator:
			adm := member.Administrator
			if adm != nil && adm.User.ID == msg.From.ID && adm.CanChangeInfo {
				return true, nil
			}
		}
	}

	return false, nil
}

// replyTemplate resolves key for the message's chat and locale and sends it.
func (h *Handlers) replyTemplate(ctx context.Context, b *bot.Bot, msg *models.Message, key string, subs map[string]string) error {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      h.resolveFor(msg, key, subs),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send %q reply: %w", key, err)
	}
	return nil
}

func (h *Handlers) resolveFor(msg *models.Message, key string, subs map[string]string) string {
	safe := h.store.IsSafe(msg.Chat.ID)
	candidates := h.resolver.Candidates(h.messageLocale(msg))
	return h.resolver.Resolve(candidates, key, safe, subs)
}

func (h *Handlers) messageLocale(msg *models.Message) string {
	if msg.From != nil && msg.From.LanguageCode != "" {
		return msg.From.LanguageCode
	}
	return h.defaultLocale
}

func metaFromChat(chat *models.Chat) chatstore.Meta {
	return chatstore.Meta{
		ID:        chat.ID,
		Private:   chat.Type == models.ChatTypePrivate,
		Title:     chat.Title,
		FirstName: chat.FirstName,
		LastName:  chat.LastName,
		Username:  chat.Username,
	}
}

// formatBreakdown renders a percentage histogram as "en: 93.2%, pt: 6.8%",
// largest share first.
func formatBreakdown(pcts map[string]float64) string {
	if len(pcts) == 0 {
		return "-"
	}

	locales := make([]string, 0, len(pcts))
	for locale := range pcts {
		locales = append(locales, locale)
	}
	sort.Slice(locales, func(i, j int) bool {
		if pcts[locales[i]] != pcts[locales[j]] {
			return pcts[locales[i]] > pcts[locales[j]]
		}
		return locales[i] < locales[j]
	})

	parts := make([]string, 0, len(locales))
	for _, locale := range locales {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", locale, pcts[locale]))
	}
	return strings.Join(parts, ", ")
}
