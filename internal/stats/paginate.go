package stats

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"phl311.app/bot/internal/model"
)

const (
	DefaultMaxLength    = 230
	DefaultSuffixMargin = 5
)

// Paginator carries the length limits of the posting platform.
type Paginator struct {
	MaxLength    int
	SuffixMargin int
}

// DefaultPaginator matches the 230-character posts the bot has always used.
var DefaultPaginator = Paginator{MaxLength: DefaultMaxLength, SuffixMargin: DefaultSuffixMargin}

func (p Paginator) Paginate(header string, items []model.CountRecord) []string {
	return Paginate(header, items, p.MaxLength, p.SuffixMargin)
}

// Paginate packs header and items into a thread of messages.
//
// Items are numbered 1..len(items) once, across the whole thread, and keep
// their order. Lines are packed greedily: a line joins the current message
// while the message stays shorter than maxLength-margin, otherwise it starts
// the next message. Every message then gets a " (i/N)" suffix. When N grows
// wide enough that the suffix no longer fits in margin, the thread is packed
// again with a margin that holds it, so no message exceeds maxLength unless
// a single line does. The result always has at least one message, even for
// no items.
func Paginate(header string, items []model.CountRecord, maxLength, margin int) []string {
	chunks := pack(header, items, maxLength-margin)

	// pack keeps messages strictly under budget, which leaves one spare rune.
	for needed := suffixWidth(len(chunks)) - 1; needed > margin; needed = suffixWidth(len(chunks)) - 1 {
		margin = needed
		chunks = pack(header, items, maxLength-margin)
	}

	for i := range chunks {
		chunks[i] += suffix(i+1, len(chunks))
	}
	return chunks
}

func pack(header string, items []model.CountRecord, budget int) []string {
	var chunks []string
	var current strings.Builder
	current.WriteString(header)
	current.WriteString("\n\n")
	currentLen := utf8.RuneCountInString(current.String())

	for i, item := range items {
		line := fmt.Sprintf("%d. %s %d\n", i+1, item.Label, item.Count)
		lineLen := utf8.RuneCountInString(line)

		if currentLen+lineLen < budget {
			current.WriteString(line)
			currentLen += lineLen
			continue
		}

		chunks = append(chunks, current.String())
		current.Reset()
		current.WriteString(line)
		currentLen = lineLen
	}
	return append(chunks, current.String())
}

func suffix(i, n int) string {
	return fmt.Sprintf(" (%d/%d)", i, n)
}

func suffixWidth(n int) int {
	return utf8.RuneCountInString(suffix(n, n))
}
