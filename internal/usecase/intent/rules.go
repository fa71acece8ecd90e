package intent

import (
	"regexp"
	"strings"
)

// Rules is the cue-detection policy the classifier applies. The pattern tables
// are pluggable so the heuristics stay test-covered rather than hard-coded.
type Rules struct {
	structure        []*regexp.Regexp
	crossBook        []*regexp.Regexp
	comparison       []*regexp.Regexp
	followup         []*regexp.Regexp
	maxFollowupWords int
}

// NewRules compiles a rule set from raw pattern strings. Patterns are matched
// case-insensitively against the whole query.
func NewRules(structure, crossBook, comparison, followup []string, maxFollowupWords int) (Rules, error) {
	compile := func(patterns []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, err
			}
			out = append(out, re)
		}
		return out, nil
	}

	s, err := compile(structure)
	if err != nil {
		return Rules{}, err
	}
	c, err := compile(crossBook)
	if err != nil {
		return Rules{}, err
	}
	cmp, err := compile(comparison)
	if err != nil {
		return Rules{}, err
	}
	f, err := compile(followup)
	if err != nil {
		return Rules{}, err
	}

	if maxFollowupWords <= 0 {
		maxFollowupWords = 8
	}
	return Rules{structure: s, crossBook: c, comparison: cmp, followup: f, maxFollowupWords: maxFollowupWords}, nil
}

// DefaultRules returns the built-in cue tables.
func DefaultRules() Rules {
	r, err := NewRules(
		[]string{
			`how many chapter`, `chapters?\b`,
			`table of contents`, `\btoc\b`, `outline`,
			`what.*(section|part)`, `list.*(section|part)`,
		},
		[]string{
			`all.*book`, `across.*book`, `each book`,
			`every book`, `both book`, `different book`,
			`from all`, `in all`,
		},
		[]string{
			`compare`, `difference`, `vs\.?`, `versus`,
			`better than`, `which.*better`,
		},
		[]string{
			`^then\b`, `^and\b`, `^also\b`, `^what about\b`,
			`^how about\b`, `^what are\b`, `^what is\b`,
			`^list\b`, `^show\b`, `^tell me\b`,
			`\bit\b`, `\bits\b`, `\bthis\b`, `\bthat\b`,
			`\bthe book\b`, `\bthis book\b`,
		},
		8,
	)
	if err != nil {
		panic(err) // built-in patterns must compile
	}
	return r
}

// HasStructureCue reports whether the query asks about book organization.
func (r Rules) HasStructureCue(text string) bool {
	return matchAny(r.structure, text)
}

// HasCrossBookCue reports whether the query spans multiple books.
func (r Rules) HasCrossBookCue(text string) bool {
	return matchAny(r.crossBook, text) || matchAny(r.comparison, text)
}

// IsFollowup reports whether a short query leans on the previous turn:
// anaphoric cues ("it", "that book", leading "and"/"then") in a query of at
// most maxFollowupWords words.
func (r Rules) IsFollowup(text string) bool {
	if len(strings.Fields(text)) > r.maxFollowupWords {
		return false
	}
	return matchAny(r.followup, strings.TrimSpace(text))
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
