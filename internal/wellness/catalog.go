// Package wellness holds the static WARP option catalog: the five wellness
// rituals offered after incident resolution, their message text, and the
// occasional Kier whisper.
package wellness

import (
	"fmt"
	"math/rand"
)

// CompletionReaction is the reaction symbol that marks a ritual as complete.
const CompletionReaction = "white_check_mark"

// WhisperChance is the probability that a completion message carries a
// Kier whisper.
const WhisperChance = 0.05

// Option describes one wellness ritual.
type Option struct {
	Initial      string // posted when the responder selects the option
	Completion   string // posted when the responder marks it complete
	StatusUpdate bool   // set the responder's Slack status on completion
}

// Reactions lists the catalog's reaction symbols in legend order.
var Reactions = []string{"goat", "dancer", "person_in_lotus_position", "watermelon", "egg"}

// goatNames is the Severance-inspired goat pool.
var goatNames = []string{
	"Temper", "Valiance", "Mr. Eagan", "Frolic", "Malice",
	"Woe", "Dread", "Perpetuity", "Whisper", "The Tamed",
}

// kierWhispers are appended to completion messages with WhisperChance.
var kierWhispers = []string{
	"Be ever merry.",
	"The light of discovery shines truer upon a virgin meadow than a beaten path.",
	"Keep a merry humor ever in your heart.",
	"Let not weakness live in your veins.",
	"Cherished workers, drown it inside you.",
	"The surest way to tame a prisoner is to let him believe he's free.",
	"History makes us someone. Gives us a context. A shape.",
	"A good person will follow the rules. A great person will follow himself.",
}

// Options maps reaction symbols to their wellness rituals.
var Options = map[string]Option{
	"goat": {
		Initial: fmt.Sprintf(`🐐🐐🐐

Kier's creatures have arrived:
- %s (achieved perpetuity)
- %s (knows the nine principles)
- %s (tamed and devoted)

They judge not your debugging methods.

React with ✅ when sufficiently nurtured.`, goatNames[0], goatNames[1], goatNames[2]),
		Completion: "The creatures thank you for your time. A handshake is available upon request.",
	},
	"dancer": {
		Initial: `🎵 DEFIANT JAZZ INITIATED 🎵

"Let not weakness live in your veins.
Keep a merry humor ever in your heart." - Kier Eagan

Move defiantly for five minutes.
The Board observes your frolic.

React with ✅ when complete.`,
		Completion: "Your defiant jazz has been logged. The Board found it invigorating.",
	},
	"person_in_lotus_position": {
		Initial: `KIER'S WISDOM FLOWS FROM THE PERPETUITY WING

"Tame in me the tempers four,
that I may serve thee evermore."

Breathe five times with Kier's rhythm.
Drown the incident inside you.

React with ✅ when tempers are tamed.`,
		Completion: "Your tempers are tamed. Please enjoy all remaining work equally.",
	},
	"watermelon": {
		Initial: `🍉 KIER'S BOUNTY AWAITS 🍉

The Board grants access to:
• Honeydew (Kier's favorite)
• Cantaloupe (mysterious and important)
• Watermelon (blessed in perpetuity)

Be ever merry. Enjoy all melons equally.

React with ✅ to consume Kier's gift.`,
		Completion:   "Melon privileges granted. Your status bears 🍉 for one hour. Coveted as heck.",
		StatusUpdate: true,
	},
	"egg": {
		Initial: `🥚 THE COVETED EGG BAR 🥚

"Endow in each bite the sum of your affections,
that through me they may be purified." - Kier

Today's preparations:
- Raw (as Kier intended)
- Deviled (for the valiant)
- Sacred (from Kier's own recipe)

React with ✅ to partake.`,
		Completion: "The eggs were mysterious and important. Please resume your duties with renewed vigor.",
	},
}

// Lookup returns the option for a reaction symbol.
func Lookup(reaction string) (Option, bool) {
	opt, ok := Options[reaction]
	return opt, ok
}

// InitialMessage builds the WARP notification sent to a responder.
func InitialMessage(userID, incident string) string {
	return fmt.Sprintf(`🌍 *WELLNESS AFTER RESOLUTION PROTOCOL*
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

<@%s>, The Board has initiated WARP for %s.

_The work is mysterious and important. Please enjoy all incentives equally, showing no particular emotion._

Select your reward:

:goat: - Mammalians Nurturable
:dancer: - Music Dance Experience
:person_in_lotus_position: - Wellness Session
:watermelon: - Melon Bar
:egg: - Egg Bar

*Praise Kier.*`, userID, incident)
}

// CompletionMessage assembles the WARP completion text for an option,
// appending a uniformly chosen Kier whisper when rolled.
func CompletionMessage(opt Option, rng *rand.Rand, chance float64) string {
	msg := fmt.Sprintf("✅ *WARP COMPLETE*\n\n%s\n\n_The incentives spur achievement._\n*Praise Kier.*", opt.Completion)
	if rng.Float64() < chance {
		whisper := kierWhispers[rng.Intn(len(kierWhispers))]
		msg += fmt.Sprintf("\n\n💭 _Kier whispers through the ages:_\n_\"%s\"_", whisper)
	}
	return msg
}
