// Package intents contains the named response behaviors invoked by the
// dispatcher: templated replies, dice rolls, the media-corruption effect, and
// voice synthesis.
package intents

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/acapela"
	"bunbot/internal/dispatch"
	"bunbot/internal/templates"
)

// Transport is the slice of the Telegram client the intent handlers use.
// *bot.Bot satisfies it; tests substitute a fake.
type Transport interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
}

// Rand supplies the suppression and dice draws. The shared math/rand source
// is used unless tests inject a seeded one.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type sysRand struct{}

func (sysRand) Float64() float64 { return rand.Float64() }
func (sysRand) IntN(n int) int   { return rand.IntN(n) }

// Deps provides dependencies for the intent handlers.
type Deps struct {
	Logger   *slog.Logger
	Bot      Transport
	Resolver *templates.Resolver
	Acapela  *acapela.Client
	Rand     Rand

	// Token is the transport token, needed to build file download links.
	Token string
	// AssetsDir holds media referenced by respond payloads.
	AssetsDir string
	// TempDir is the media download cache.
	TempDir string
}

// Register returns the intent handler table keyed by the names trigger files
// use.
func Register(deps Deps) map[string]dispatch.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Rand == nil {
		deps.Rand = sysRand{}
	}

	return map[string]dispatch.Handler{
		"respond": respondHandler{deps}.Handle,
		"roll":    rollHandler{deps}.Handle,
		"mosh":    moshHandler{deps}.Handle,
		"acapela": acapelaHandler{deps}.Handle,
	}
}
