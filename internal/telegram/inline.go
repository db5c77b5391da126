package telegram

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// trashRule rewrites one speech pattern. Rules run in order over the
// lowercased query, so earlier rules feed later ones.
type trashRule struct {
	pattern *regexp.Regexp
	replace string
}

var trashRules = []trashRule{
	{regexp.MustCompile(`&#39;`), ""},
	{regexp.MustCompile(`\bi\b`), "i's"},
	{regexp.MustCompile(`\bjust\b`), "jus"},
	{regexp.MustCompile(`it is`), "tis"},
	{regexp.MustCompile(`\bis\b`), "ish"},
	{regexp.MustCompile(`\bit'?s\b`), "is"},
	{regexp.MustCompile(`lol`), "hehe"},
	{regexp.MustCompile(`because`), "cuz"},
	{regexp.MustCompile(`l`), "w"},
	{regexp.MustCompile(`r`), "w"},
	{regexp.MustCompile(`okay`), "otay"},
	{regexp.MustCompile(`this`), "dis"},
	{regexp.MustCompile(`ce(\w)`), "ec$1"},
	{regexp.MustCompile(`ev`), "eb"},
	{regexp.MustCompile(`th`), "f"},
	{regexp.MustCompile(`so`), "sho"},
}

var trashEndings = []string{
	" >w<;", " >w<", " owo;", " owo", " uwu;", " uwu", " =w=",
	" @////@", " ono", " nyaa~~", " vnv", " vwv", " p~p", " o~o", "~~",
}

// trashify rewrites text in the bot's speech register and appends the ending
// at the given index.
func trashify(text string, ending int) string {
	out := strings.ToLower(text)
	for _, rule := range trashRules {
		out = rule.pattern.ReplaceAllString(out, rule.replace)
	}
	return out + trashEndings[ending]
}

// inlineQuery answers an inline query with a single rewritten-article result.
func (h *Handlers) inlineQuery(ctx context.Context, b *bot.Bot, q *models.InlineQuery) {
	if q.Query == "" {
		return
	}

	text := trashify(q.Query, rand.IntN(len(trashEndings)))

	_, err := b.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: q.ID,
		Results: []models.InlineQueryResult{
			&models.InlineQueryResultArticle{
				ID:                  "hewwo",
				Title:               "Hewwo >w<;",
				Description:         text,
				InputMessageContent: &models.InputTextMessageContent{MessageText: text},
			},
		},
		CacheTime: 0,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to answer inline query", "error", err, "inline_query_id", q.ID)
	}
}
