package transcript

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Segment is one piece of recognizer output. Interim segments are provisional
// and replaced in place; final segments are stable.
type Segment struct {
	Text      string
	IsFinal   bool
	Timestamp time.Time
}

// Config carries the paragraph-break heuristics. These are tunables, not hard
// rules; the defaults match production behavior.
type Config struct {
	ParagraphGap      time.Duration
	ParagraphMaxChars int
}

func DefaultConfig() Config {
	return Config{
		ParagraphGap:      3 * time.Second,
		ParagraphMaxChars: 200,
	}
}

// transitionMarkers are discourse-transition words that start a new paragraph
// when they open the next segment or appear space-surrounded inside it.
var transitionMarkers = []string{
	"bonjour", "bonsoir", "au revoir", "merci",
	"premièrement", "deuxièmement", "troisièmement",
	"enfin", "pour conclure", "en conclusion",
	"d'abord", "ensuite", "par ailleurs",
	"maintenant", "alors", "donc", "cependant", "par contre",
}

var multiSpace = regexp.MustCompile(`\s+`)

type Stats struct {
	Segments      int           `json:"segments"`
	FinalSegments int           `json:"final_segments"`
	TotalWords    int           `json:"total_words"`
	TotalChars    int           `json:"total_characters"`
	Duration      time.Duration `json:"duration"`
}

// Assembler turns a stream of noisy partial/final segments into stable
// paragraphs. It is not safe for concurrent use; segments must be fed in
// arrival order by a single goroutine.
type Assembler struct {
	cfg Config
	now func() time.Time

	closed  []string // finalized paragraphs, never edited again
	current []string // final segment texts of the in-progress paragraph

	interim  *Segment // the single held non-final slot
	lastSeen time.Time
	first    time.Time
	hasFirst bool

	segments int
	finals   int
}

func NewAssembler(cfg Config) *Assembler {
	if cfg.ParagraphGap <= 0 {
		cfg.ParagraphGap = DefaultConfig().ParagraphGap
	}
	if cfg.ParagraphMaxChars <= 0 {
		cfg.ParagraphMaxChars = DefaultConfig().ParagraphMaxChars
	}
	return &Assembler{cfg: cfg, now: time.Now}
}

// AddSegment records a segment stamped with the current clock.
func (a *Assembler) AddSegment(text string, isFinal bool) {
	a.AddSegmentAt(text, isFinal, a.now())
}

// AddSegmentAt records a segment with an explicit timestamp. Empty or
// whitespace-only text is dropped without touching paragraph state.
func (a *Assembler) AddSegmentAt(text string, isFinal bool, ts time.Time) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	a.segments++
	if !a.hasFirst {
		a.first = ts
		a.hasFirst = true
	}

	if !isFinal {
		// Interim correction: the new provisional text replaces the held one.
		a.interim = &Segment{Text: text, IsFinal: false, Timestamp: ts}
		return
	}

	a.finals++
	a.interim = nil

	if len(a.current) > 0 && a.shouldBreak(text, ts) {
		a.closeParagraph()
	}

	a.current = append(a.current, text)
	a.lastSeen = ts
}

// shouldBreak decides, relative to the incoming segment, whether the current
// paragraph ends before it.
func (a *Assembler) shouldBreak(next string, ts time.Time) bool {
	if ts.Sub(a.lastSeen) > a.cfg.ParagraphGap {
		return true
	}
	lower := strings.ToLower(next)
	for _, marker := range transitionMarkers {
		if strings.HasPrefix(lower, marker) || strings.Contains(lower, " "+marker+" ") {
			return true
		}
	}
	// Rune count, not bytes: accented characters must count as one.
	if utf8.RuneCountInString(a.paragraphText()) > a.cfg.ParagraphMaxChars {
		return true
	}
	return false
}

func (a *Assembler) paragraphText() string {
	return strings.Join(a.current, " ")
}

func (a *Assembler) closeParagraph() {
	if len(a.current) == 0 {
		return
	}
	a.closed = append(a.closed, cleanParagraph(a.paragraphText()))
	a.current = a.current[:0]
}

// Flush force-closes the in-progress paragraph. Called at stream end.
func (a *Assembler) Flush() {
	a.closeParagraph()
	a.interim = nil
}

// Paragraphs returns the closed paragraphs plus the still-open one, if any.
func (a *Assembler) Paragraphs() []string {
	out := make([]string, len(a.closed), len(a.closed)+1)
	copy(out, a.closed)
	if len(a.current) > 0 {
		out = append(out, cleanParagraph(a.paragraphText()))
	}
	return out
}

// Format returns the whole transcript: immutable paragraphs joined by blank
// lines plus the open paragraph text. Idempotent, safe after every segment.
func (a *Assembler) Format() string {
	return strings.Join(a.Paragraphs(), "\n\n")
}

// Stats derives counters over the final text. Purely observational.
func (a *Assembler) Stats() Stats {
	all := strings.Join(a.Paragraphs(), " ")
	words := 0
	if all != "" {
		words = len(strings.Fields(all))
	}
	var dur time.Duration
	if a.hasFirst && !a.lastSeen.IsZero() {
		dur = a.lastSeen.Sub(a.first)
	}
	return Stats{
		Segments:      a.segments,
		FinalSegments: a.finals,
		TotalWords:    words,
		TotalChars:    utf8.RuneCountInString(all),
		Duration:      dur,
	}
}

// cleanParagraph collapses whitespace and drops stuttered consecutive
// duplicate words ("et et", "si si"). Heavier cleanup (punctuation,
// sentence dedup) is left to downstream consumers.
func cleanParagraph(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for i, w := range words {
		if i > 0 && strings.EqualFold(w, words[i-1]) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
