// Package crisis recognizes risk phrases in student chat text.
package crisis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultHelpline is the Tele-MANAS national mental health helpline.
const DefaultHelpline = "14416"

var lexicon = []string{
	"suicide",
	"kill myself",
	"end my life",
	"want to die",
	"better off dead",
	"harm myself",
	"hurt myself",
	"self harm",
	"cut myself",
	"overdose",
	"jump off",
	"hang myself",
	"worthless",
	"hopeless",
	"can't go on",
	"give up",
	"no point",
	"everyone would be better",
	"tired of living",
}

var textReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"-", " ",
	"_", " ",
)

// Detector matches text against a fixed lexicon. It holds no per-call state
// and is safe for concurrent use.
type Detector struct {
	phrases  []string
	helpline string
}

func NewDetector(helpline string) *Detector {
	if helpline == "" {
		helpline = DefaultHelpline
	}

	phrases := make([]string, len(lexicon))
	for i, p := range lexicon {
		phrases[i] = normalize(p)
	}

	return &Detector{
		phrases:  phrases,
		helpline: helpline,
	}
}

// Scan reports whether text contains any risk phrase, ignoring case,
// hyphenation and repeated whitespace.
func (d *Detector) Scan(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	norm := normalize(text)
	for _, p := range d.phrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

// Lexicon returns a copy of the phrase list.
func (d *Detector) Lexicon() []string {
	out := make([]string, len(lexicon))
	copy(out, lexicon)
	return out
}

func (d *Detector) Helpline() string {
	return d.helpline
}

// SafetyResponse is the canned reply sent in place of a model completion.
func (d *Detector) SafetyResponse() string {
	return fmt.Sprintf("I hear how painful this feels for you right now. You are not alone, and your safety is very important to me. 💙 Please reach out immediately to someone you trust or call the Tele-MANAS helpline at %s for professional support. Would you like me to help connect you with your college counsellor right now?", d.helpline)
}

func normalize(s string) string {
	s = cases.Fold().String(s)
	s = textReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
