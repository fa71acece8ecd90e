package generate

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation thresholds. An answer passes when the blended evidence
// confidence clears validConfidence with few issues; below fallbackConfidence
// the answer is discarded outright.
const (
	evidenceThreshold  = 0.35
	validConfidence    = 0.4
	fallbackConfidence = 0.35
	maxIssues          = 3
)

// ValidationResult describes how well an answer is grounded in its context.
type ValidationResult struct {
	Valid      bool
	Confidence float64
	Issues     []string
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]\s+`)
	contentWords  = regexp.MustCompile(`\b\w{4,}\b`)
	countedThings = regexp.MustCompile(`\b(\d+)\s*(chapter|section|part)s?\b`)
	properNames   = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
)

// claimSkipPrefixes marks sentence openings that are hedges or meta-speech
// rather than factual claims.
var claimSkipPrefixes = []string{
	"I don't", "I cannot", "Based on", "I recommend", "You can",
	"For learning", "To learn", "The book", "This book",
}

// validationSkipCues are query phrasings that ask for opinions, where
// evidence checking would only produce noise.
var validationSkipCues = []string{
	"suggest", "recommend", "which book", "what book", "should i", "best book",
}

// nameSkipList holds capitalized bigrams that look like names but are not.
var nameSkipList = map[string]struct{}{
	"The Book": {}, "This Chapter": {}, "For Example": {}, "In This": {}, "Chapter One": {},
}

// ValidateAnswer checks that an answer's factual claims are supported by the
// retrieval context.
func ValidateAnswer(answer, contextText, query string) ValidationResult {
	if answer == "" || contextText == "" {
		return ValidationResult{Valid: true, Confidence: 1.0}
	}

	lower := strings.ToLower(query)
	for _, cue := range validationSkipCues {
		if strings.Contains(lower, cue) {
			return ValidationResult{Valid: true, Confidence: 0.8}
		}
	}

	claims := extractClaims(answer)
	if len(claims) == 0 {
		return ValidationResult{Valid: true, Confidence: 1.0}
	}

	var issues []string
	supported := 0
	totalConf := 0.0
	for _, claim := range claims {
		found, conf := findEvidence(claim, contextText)
		if found {
			supported++
		} else {
			issues = append(issues, fmt.Sprintf("Unsupported: %s...", truncate(claim, 50)))
		}
		totalConf += conf
	}

	issues = append(issues, checkNumberAccuracy(answer, contextText)...)
	issues = append(issues, checkNamesAccuracy(answer, contextText)...)

	ratio := float64(supported) / float64(len(claims))
	avgConf := totalConf / float64(len(claims))
	finalConf := (ratio + avgConf) / 2

	return ValidationResult{
		Valid:      finalConf >= validConfidence && len(issues) <= maxIssues,
		Confidence: finalConf,
		Issues:     issues,
	}
}

// extractClaims pulls out the sentences long enough to carry a checkable
// fact.
func extractClaims(answer string) []string {
	var claims []string
	for _, s := range sentenceSplit.Split(answer, -1) {
		s = strings.TrimSpace(s)
		if len(s) <= 30 {
			continue
		}
		skip := false
		for _, p := range claimSkipPrefixes {
			if strings.HasPrefix(s, p) {
				skip = true
				break
			}
		}
		if !skip {
			claims = append(claims, s)
		}
	}
	return claims
}

// findEvidence checks whether the context supports a claim via content-word
// overlap, with a fuzzier per-chunk comparison as a second chance.
func findEvidence(claim, contextText string) (bool, float64) {
	claimWords := wordSet(strings.ToLower(claim))
	if len(claimWords) == 0 {
		return true, 1.0
	}
	contextWords := wordSet(strings.ToLower(contextText))

	matched := 0
	for w := range claimWords {
		if _, ok := contextWords[w]; ok {
			matched++
		}
	}
	overlap := float64(matched) / float64(len(claimWords))
	if overlap >= evidenceThreshold {
		return true, overlap
	}

	claimHead := truncate(strings.ToLower(claim), 100)
	for _, part := range strings.Split(contextText, "---") {
		ratio := bigramSimilarity(claimHead, truncate(strings.ToLower(part), 500))
		if ratio > 0.3 {
			return true, max(overlap, ratio)
		}
	}
	return false, overlap
}

// checkNumberAccuracy flags counted structure claims ("12 chapters") that the
// context never states.
func checkNumberAccuracy(answer, contextText string) []string {
	resp := countedThings.FindAllStringSubmatch(strings.ToLower(answer), -1)
	if len(resp) == 0 {
		return nil
	}
	if countedThings.MatchString(strings.ToLower(contextText)) {
		return nil
	}
	return []string{fmt.Sprintf("Mentioned %s %ss without source", resp[0][1], resp[0][2])}
}

// checkNamesAccuracy flags proper names absent from the context.
func checkNamesAccuracy(answer, contextText string) []string {
	contextNames := make(map[string]struct{})
	for _, m := range properNames.FindAllStringSubmatch(contextText, -1) {
		contextNames[m[1]] = struct{}{}
	}

	var issues []string
	seen := make(map[string]struct{})
	for _, m := range properNames.FindAllStringSubmatch(answer, -1) {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := contextNames[name]; ok {
			continue
		}
		if _, ok := nameSkipList[name]; ok {
			continue
		}
		issues = append(issues, fmt.Sprintf("Name '%s' not in context", name))
	}
	return issues
}

// bigramSimilarity is a Dice coefficient over consecutive word pairs.
// Unrelated prose shares almost none, while quoted or lightly paraphrased
// text shares many.
func bigramSimilarity(a, b string) float64 {
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	if len(aw) < 2 || len(bw) < 2 {
		if a == b && a != "" {
			return 1.0
		}
		return 0.0
	}
	grams := make(map[string]int)
	for i := 0; i+1 < len(aw); i++ {
		grams[aw[i]+" "+aw[i+1]]++
	}
	matches := 0
	for i := 0; i+1 < len(bw); i++ {
		key := bw[i] + " " + bw[i+1]
		if grams[key] > 0 {
			grams[key]--
			matches++
		}
	}
	return 2.0 * float64(matches) / float64(len(aw)+len(bw)-2)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range contentWords.FindAllString(text, -1) {
		set[w] = struct{}{}
	}
	return set
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
