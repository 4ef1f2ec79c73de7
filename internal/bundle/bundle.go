// Package bundle extracts the query vocabulary ("bundle") from EVA
// tokens. Extraction is stateless and total: malformed input yields an
// empty bundle, never an error.
package bundle

import (
	"sort"
	"strings"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Segmentation is the canonical morphological split of one token.
type Segmentation struct {
	Prefix string
	Middle string
	Suffix string
}

// Segmenter is the external morphological capability the builder
// relies on. Implementations must be pure: same token, same result.
type Segmenter interface {
	// Segment splits a token. ok is false when no well-formed MIDDLE
	// can be extracted.
	Segment(token string) (Segmentation, bool)
}

// AffixSegmenter segments by stripping the longest known prefix and
// the longest known suffix; whatever remains is the MIDDLE. This
// mirrors the canonical segmentation used when the corpus spread and
// legality tables were prepared, so extracted units line up with the
// store's vocabulary keys.
type AffixSegmenter struct {
	prefixes []string // longest first
	suffixes []string // longest first
}

// NewAffixSegmenter builds a segmenter from affix inventories. The
// inventories are copied and ordered longest-first so greedy matching
// is deterministic.
func NewAffixSegmenter(prefixes, suffixes []string) *AffixSegmenter {
	p := append([]string(nil), prefixes...)
	s := append([]string(nil), suffixes...)
	byLength := func(a []string) {
		sort.SliceStable(a, func(i, j int) bool { return len(a[i]) > len(a[j]) })
	}
	byLength(p)
	byLength(s)
	return &AffixSegmenter{prefixes: p, suffixes: s}
}

// Segment implements Segmenter. Tokens are lowercased and trimmed;
// affixes are stripped at most once each and never allowed to consume
// the whole token.
func (a *AffixSegmenter) Segment(token string) (Segmentation, bool) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == "" {
		return Segmentation{}, false
	}

	var seg Segmentation
	rest := tok
	for _, p := range a.prefixes {
		if p != "" && len(p) < len(rest) && strings.HasPrefix(rest, p) {
			seg.Prefix = p
			rest = rest[len(p):]
			break
		}
	}
	for _, s := range a.suffixes {
		if s != "" && len(s) < len(rest) && strings.HasSuffix(rest, s) {
			seg.Suffix = s
			rest = rest[:len(rest)-len(s)]
			break
		}
	}

	if rest == "" {
		return Segmentation{}, false
	}
	seg.Middle = rest
	return seg, true
}

// Builder computes bundles from tokens and records.
type Builder struct {
	seg Segmenter
}

// NewBuilder returns a builder over the given segmenter.
func NewBuilder(seg Segmenter) *Builder {
	return &Builder{seg: seg}
}

// ComputeBundle extracts the vocabulary of a single token: the MIDDLE
// unit if segmentation yields one, otherwise an empty bundle.
func (b *Builder) ComputeBundle(token string) types.Bundle {
	seg, ok := b.seg.Segment(token)
	if !ok {
		logging.Get(logging.CategoryBundle).Debug("token %q yields empty bundle", token)
		return types.EmptyBundle()
	}
	return types.Bundle{Vocabulary: types.NewVocabSet(seg.Middle)}
}

// ComputeRecordBundle unions the vocabularies of every token in an
// ordered record. Order and duplicates are irrelevant.
func (b *Builder) ComputeRecordBundle(record []string) types.Bundle {
	vocab := types.NewVocabSet()
	for _, token := range record {
		tb := b.ComputeBundle(token)
		vocab = vocab.Union(tb.Vocabulary)
	}
	return types.Bundle{Vocabulary: vocab}
}
