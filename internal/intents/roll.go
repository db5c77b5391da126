package intents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bunbot/internal/dispatch"
)

// rollHandler rolls the dice captured as <amt>d<die> and replies with the
// results.
type rollHandler struct {
	deps Deps
}

func (h rollHandler) Handle(ctx context.Context, dc *dispatch.Context) (bool, error) {
	amt, amtErr := strconv.Atoi(dc.Captures["amt"])
	die, dieErr := strconv.Atoi(dc.Captures["die"])

	// Bad parameters are a user mistake, answered with a template rather
	// than surfaced as an error.
	if amtErr != nil || dieErr != nil || amt <= 0 || die < 1 {
		return true, h.deps.reply(ctx, dc, h.deps.resolve(dc, "roll_dice_fail", nil))
	}

	all := make([]string, 0, amt)
	sum := 0
	for i := 0; i < amt; i++ {
		result := h.deps.Rand.IntN(die) + 1
		sum += result
		all = append(all, strconv.Itoa(result))
	}

	if amt == 1 {
		return true, h.deps.reply(ctx, dc, h.deps.resolve(dc, "roll_die", map[string]string{
			"amt":    strconv.Itoa(amt),
			"die":    strconv.Itoa(die),
			"result": strconv.Itoa(sum),
		}))
	}

	return true, h.deps.reply(ctx, dc, h.deps.resolve(dc, "roll_dice", map[string]string{
		"all": fmt.Sprintf("[%s]", strings.Join(all, ", ")),
		"amt": strconv.Itoa(amt),
		"die": strconv.Itoa(die),
		"sum": strconv.Itoa(sum),
	}))
}
