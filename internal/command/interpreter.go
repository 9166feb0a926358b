// Package command parses free-text user messages into commands and
// applies them to the watchlist. Parsing is pure and deterministic: an
// ordered rule table with an Unrecognized fallback, no guessing.
package command

import (
	"regexp"
	"strings"

	"github.com/Ilakiancs/StockSage/internal/models"
)

// rule maps a set of trigger phrases to a command kind. Phrases are
// matched as whole-word sequences, so "track" does not fire inside
// "tracking". needsSymbol rules require a ticker-shaped token after the
// phrase; without one the whole message degrades to Unrecognized.
type rule struct {
	kind        models.CommandKind
	phrases     [][]string
	needsSymbol bool
}

var rules = []rule{
	{
		kind: models.CommandUntrack,
		phrases: [][]string{
			{"STOP", "TRACKING"},
			{"UNTRACK"},
			{"REMOVE"},
		},
		needsSymbol: true,
	},
	{
		kind: models.CommandTrack,
		phrases: [][]string{
			{"START", "TRACKING"},
			{"TRACK"},
			{"ADD"},
		},
		needsSymbol: true,
	},
	{
		kind: models.CommandPriceQuery,
		phrases: [][]string{
			{"WHAT", "IS", "THE", "PRICE", "OF"},
			{"PRICE", "OF"},
			{"PRICE"},
		},
		needsSymbol: true,
	},
	{
		kind: models.CommandList,
		phrases: [][]string{
			{"WHAT", "STOCKS"},
			{"WHICH", "STOCKS"},
			{"LIST"},
			{"TRACKING"},
		},
		needsSymbol: false,
	},
}

// stopwords are common English words that share the shape of a ticker
// symbol and must never be extracted as one.
var stopwords = map[string]bool{
	"A": true, "AM": true, "AN": true, "AND": true, "ARE": true,
	"AT": true, "BE": true, "CAN": true, "DO": true, "FOR": true,
	"GET": true, "HI": true, "I": true, "IN": true, "IS": true,
	"IT": true, "ME": true, "MY": true, "NO": true, "NOW": true,
	"OF": true, "OK": true, "ON": true, "OR": true, "PLS": true,
	"SO": true, "THE": true, "TO": true, "UP": true, "US": true,
	"WHAT": true, "YES": true, "YOU": true,
}

var wordPattern = regexp.MustCompile(`[A-Z0-9]+`)

// Interpret parses raw message text into a Command. Matching is
// case-insensitive and whitespace-tolerant; anything that does not
// match a rule, or matches one but lacks a required ticker token,
// becomes Unrecognized.
func Interpret(raw string) models.Command {
	words := wordPattern.FindAllString(strings.ToUpper(raw), -1)
	if len(words) == 0 {
		return models.Command{Kind: models.CommandUnrecognized, RawText: raw}
	}

	for _, r := range rules {
		start, end, ok := matchPhrase(words, r.phrases)
		if !ok {
			continue
		}

		if r.needsSymbol {
			symbol := firstSymbolToken(words[end:])
			if symbol == "" {
				return models.Command{Kind: models.CommandUnrecognized, RawText: raw}
			}
			return models.Command{Kind: r.kind, Symbol: symbol, RawText: raw}
		}

		// List-style phrasings only apply when no ticker token appears
		// anywhere else in the message.
		rest := make([]string, 0, len(words))
		rest = append(rest, words[:start]...)
		rest = append(rest, words[end:]...)
		if firstSymbolToken(rest) != "" {
			continue
		}
		return models.Command{Kind: r.kind, RawText: raw}
	}

	return models.Command{Kind: models.CommandUnrecognized, RawText: raw}
}

// matchPhrase finds the first occurrence of any phrase as a run of
// consecutive words. Returns the word range [start, end) of the match.
func matchPhrase(words []string, phrases [][]string) (int, int, bool) {
	for _, phrase := range phrases {
		for i := 0; i+len(phrase) <= len(words); i++ {
			matched := true
			for j, p := range phrase {
				if words[i+j] != p {
					matched = false
					break
				}
			}
			if matched {
				return i, i + len(phrase), true
			}
		}
	}
	return 0, 0, false
}

// firstSymbolToken returns the first word that looks like a ticker
// symbol: 1-5 alphanumeric characters and not a common English word.
func firstSymbolToken(words []string) string {
	for _, w := range words {
		if models.ValidSymbol(w) && !stopwords[w] {
			return w
		}
	}
	return ""
}
