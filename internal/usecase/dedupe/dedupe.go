// Package dedupe collapses exact and near-duplicate hits so the reranker
// never scores the same passage twice. Near-duplicates happen when adjacent
// chunks overlap or when the same paragraph appears in more than one section.
package dedupe

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
)

// normWindow is how much of each chunk's normalized text participates in the
// similarity comparison. Long chunks share prefixes far more often than
// suffixes, so a bounded window keeps the comparison cheap without losing
// precision.
const normWindow = 500

// SimilarityFunc reports how alike two normalized texts are, in [0, 1].
type SimilarityFunc func(a, b string) float64

// ngramCosine is the default similarity: cosine over character 2-grams.
func ngramCosine(a, b string) float64 {
	return float64(edlib.CosineSimilarity(a, b, 2))
}

// Deduper removes duplicate hits from a result set.
type Deduper struct {
	threshold float64
	sim       SimilarityFunc
}

// New creates a deduper that treats two hits as duplicates when their
// normalized texts score at or above threshold.
func New(threshold float64) *Deduper {
	return &Deduper{threshold: threshold, sim: ngramCosine}
}

// WithSimilarity replaces the similarity function.
func (d *Deduper) WithSimilarity(sim SimilarityFunc) *Deduper {
	d.sim = sim
	return d
}

// Dedupe returns hits with exact chunk repeats and near-duplicate texts
// collapsed. When two hits collide the higher-scored one survives; on a score
// tie a table-of-contents chunk wins when preferTOC is set, otherwise the
// first encountered stays. Survivors keep their relative input order, so the
// operation is idempotent.
func (d *Deduper) Dedupe(hits []chunk.Hit, preferTOC bool) []chunk.Hit {
	if len(hits) <= 1 {
		return hits
	}

	type slot struct {
		hit  chunk.Hit
		norm string
		pos  int
	}

	byKey := make(map[string]int, len(hits))
	kept := make([]slot, 0, len(hits))

	for pos, h := range hits {
		key := h.Chunk().Book() + "/" + h.Chunk().ID()
		norm := normalize(h.Chunk().Text())

		idx := -1
		if j, ok := byKey[key]; ok {
			idx = j
		} else {
			for j := range kept {
				if d.sim(norm, kept[j].norm) >= d.threshold {
					idx = j
					break
				}
			}
		}

		if idx < 0 {
			byKey[key] = len(kept)
			kept = append(kept, slot{hit: h, norm: norm, pos: pos})
			continue
		}
		if better(h, kept[idx].hit, preferTOC) {
			delete(byKey, kept[idx].hit.Chunk().Book()+"/"+kept[idx].hit.Chunk().ID())
			byKey[key] = idx
			kept[idx] = slot{hit: h, norm: norm, pos: kept[idx].pos}
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].pos < kept[j].pos })
	out := make([]chunk.Hit, len(kept))
	for i, s := range kept {
		out[i] = s.hit
	}
	return out
}

// better reports whether candidate should replace incumbent in its slot.
func better(candidate, incumbent chunk.Hit, preferTOC bool) bool {
	if candidate.Score() != incumbent.Score() {
		return candidate.Score() > incumbent.Score()
	}
	if preferTOC && candidate.Chunk().IsTOC() != incumbent.Chunk().IsTOC() {
		return candidate.Chunk().IsTOC()
	}
	return false
}

// normalize lowercases, collapses whitespace, and truncates to the comparison
// window.
func normalize(text string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if len(norm) > normWindow {
		norm = norm[:normWindow]
	}
	return norm
}
