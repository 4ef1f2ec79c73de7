// Package types provides the shared value types used across the
// reachability engine packages. This package exists so that store,
// projector, and reach can exchange data without import cycles.
// Types here are plain data with no I/O dependencies.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// ZONES
// =============================================================================

// Zone is a canonical diagram zone. Vocabulary legality is always
// resolved at this granularity.
type Zone string

const (
	ZoneC Zone = "C" // circle labels
	ZoneP Zone = "P" // paragraph text on diagram pages
	ZoneR Zone = "R" // ring labels (consolidates R1-R3)
	ZoneS Zone = "S" // sector labels (consolidates S, S1, S2)
)

// CanonicalZones lists the four legality buckets in display order.
var CanonicalZones = []Zone{ZoneC, ZoneP, ZoneR, ZoneS}

// FineZone is a diagram zone at label-placement granularity. Several
// fine zones share one canonical zone for legality lookups but keep
// their own key in projection output so folio classification can tell
// them apart.
type FineZone string

const (
	FineC  FineZone = "C"
	FineP  FineZone = "P"
	FineR1 FineZone = "R1"
	FineR2 FineZone = "R2"
	FineR3 FineZone = "R3"
	FineS  FineZone = "S"
	FineS1 FineZone = "S1"
	FineS2 FineZone = "S2"
)

// Taxonomy carries the fine-zone inventory and its consolidation to
// canonical zones. It is a constructor parameter of the projector so
// the "8 zones, 4 legality buckets" shape is data, not a compiled-in
// string-prefix convention.
type Taxonomy struct {
	Fine          []FineZone
	consolidation map[FineZone]Zone
}

// NewTaxonomy builds a taxonomy from an explicit consolidation map.
// Fine zones are kept in the order given.
func NewTaxonomy(fine []FineZone, consolidation map[FineZone]Zone) Taxonomy {
	m := make(map[FineZone]Zone, len(consolidation))
	for f, z := range consolidation {
		m[f] = z
	}
	return Taxonomy{Fine: append([]FineZone(nil), fine...), consolidation: m}
}

// DefaultTaxonomy returns the fixed zone taxonomy of the diagram
// corpus: {C, P, R1, R2, R3, S, S1, S2} consolidating to {C, P, R, S}.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy(
		[]FineZone{FineC, FineP, FineR1, FineR2, FineR3, FineS, FineS1, FineS2},
		map[FineZone]Zone{
			FineC:  ZoneC,
			FineP:  ZoneP,
			FineR1: ZoneR,
			FineR2: ZoneR,
			FineR3: ZoneR,
			FineS:  ZoneS,
			FineS1: ZoneS,
			FineS2: ZoneS,
		},
	)
}

// Canonical maps a fine zone to its legality bucket. The function is
// total: a fine zone outside the consolidation map is its own bucket.
func (t Taxonomy) Canonical(f FineZone) Zone {
	if z, ok := t.consolidation[f]; ok {
		return z
	}
	return Zone(f)
}

// Validate checks that every fine zone consolidates to a known
// canonical zone.
func (t Taxonomy) Validate() error {
	if len(t.Fine) == 0 {
		return fmt.Errorf("taxonomy has no fine zones")
	}
	canonical := make(map[Zone]bool, len(CanonicalZones))
	for _, z := range CanonicalZones {
		canonical[z] = true
	}
	for _, f := range t.Fine {
		if !canonical[t.Canonical(f)] {
			return fmt.Errorf("fine zone %q consolidates to unknown zone %q", f, t.Canonical(f))
		}
	}
	return nil
}

// =============================================================================
// SETS
// =============================================================================

// VocabSet is a set of vocabulary units (token MIDDLE segments).
type VocabSet map[string]struct{}

// NewVocabSet builds a set from the given units.
func NewVocabSet(units ...string) VocabSet {
	s := make(VocabSet, len(units))
	for _, u := range units {
		s[u] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s VocabSet) Has(unit string) bool {
	_, ok := s[unit]
	return ok
}

// Add inserts a unit.
func (s VocabSet) Add(unit string) {
	s[unit] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s VocabSet) Clone() VocabSet {
	out := make(VocabSet, len(s))
	for u := range s {
		out[u] = struct{}{}
	}
	return out
}

// Union merges other into a new set, leaving both inputs untouched.
func (s VocabSet) Union(other VocabSet) VocabSet {
	out := make(VocabSet, len(s)+len(other))
	for u := range s {
		out[u] = struct{}{}
	}
	for u := range other {
		out[u] = struct{}{}
	}
	return out
}

// ContainsAll reports whether every unit of sub is in s.
func (s VocabSet) ContainsAll(sub VocabSet) bool {
	for u := range sub {
		if !s.Has(u) {
			return false
		}
	}
	return true
}

// Sorted returns the units in lexical order.
func (s VocabSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// ClassID identifies one instruction class. Production corpora use
// 1..49.
type ClassID int

// ClassSet is a set of instruction class ids.
type ClassSet map[ClassID]struct{}

// NewClassSet builds a set from the given ids.
func NewClassSet(ids ...ClassID) ClassSet {
	s := make(ClassSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s ClassSet) Has(id ClassID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an id.
func (s ClassSet) Add(id ClassID) {
	s[id] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s ClassSet) Clone() ClassSet {
	out := make(ClassSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// SubsetOf reports whether every id of s is in super.
func (s ClassSet) SubsetOf(super ClassSet) bool {
	for id := range s {
		if !super.Has(id) {
			return false
		}
	}
	return true
}

// Minus returns s - other as a new set.
func (s ClassSet) Minus(other ClassSet) ClassSet {
	out := make(ClassSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s ClassSet) Sorted() []ClassID {
	out := make([]ClassID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ZoneSet is a set of canonical zones.
type ZoneSet map[Zone]struct{}

// NewZoneSet builds a set from the given zones.
func NewZoneSet(zones ...Zone) ZoneSet {
	s := make(ZoneSet, len(zones))
	for _, z := range zones {
		s[z] = struct{}{}
	}
	return s
}

// AllZones returns a set containing every canonical zone. This is the
// legality default for units with no legality entry.
func AllZones() ZoneSet {
	return NewZoneSet(CanonicalZones...)
}

// Has reports membership.
func (s ZoneSet) Has(z Zone) bool {
	_, ok := s[z]
	return ok
}

// Sorted returns the zones in display order (C, P, R, S first, then
// any extras lexically).
func (s ZoneSet) Sorted() []Zone {
	out := make([]Zone, 0, len(s))
	for _, z := range CanonicalZones {
		if s.Has(z) {
			out = append(out, z)
		}
	}
	var extra []Zone
	for z := range s {
		known := false
		for _, c := range CanonicalZones {
			if z == c {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, z)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// =============================================================================
// STATIC ENTITIES
// =============================================================================

// Role classifies an instruction class by its grammatical function in
// the token-class inventory.
type Role string

const (
	RoleKernel     Role = "kernel"     // no vocabulary dependency, always reachable
	RoleStructural Role = "structural" // scaffolding classes (gallows, connectors)
	RoleLexical    Role = "lexical"    // content-bearing classes
	RoleUnknown    Role = "unknown"
)

// ParseRole maps a stored role string to a Role, defaulting to
// RoleUnknown for unrecognized values.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleKernel:
		return RoleKernel
	case RoleStructural:
		return RoleStructural
	case RoleLexical:
		return RoleLexical
	default:
		return RoleUnknown
	}
}

// InstructionClass is one of the fixed pre-clustered token classes.
// A class with an empty RequiredVocabulary is a kernel class and is
// reachable in every zone for every bundle.
type InstructionClass struct {
	ID                 ClassID
	Role               Role
	RequiredVocabulary VocabSet
}

// IsKernel reports whether the class has no vocabulary dependency.
func (c InstructionClass) IsKernel() bool {
	return len(c.RequiredVocabulary) == 0
}

// DiagramPage is one intermediate-layer diagram folio with its label
// vocabulary.
type DiagramPage struct {
	ID         string
	Vocabulary VocabSet
}

// TargetFolio is a downstream folio with its required class footprint.
type TargetFolio struct {
	ID              string
	RequiredClasses ClassSet
}

// =============================================================================
// PER-QUERY VALUES
// =============================================================================

// Bundle is the ephemeral vocabulary set driving one reachability
// query.
type Bundle struct {
	Vocabulary VocabSet
}

// EmptyBundle returns a bundle with no vocabulary. An empty bundle is
// compatible with every diagram page by definition.
func EmptyBundle() Bundle {
	return Bundle{Vocabulary: NewVocabSet()}
}

// IsEmpty reports whether the bundle carries no vocabulary.
func (b Bundle) IsEmpty() bool {
	return len(b.Vocabulary) == 0
}

// SpreadCategory partitions vocabulary units by how many diagram pages
// carry them, relative to the configured threshold.
type SpreadCategory int

const (
	// SpreadRestricted: 1 <= spread < threshold. Restricted units are
	// the only units that can disqualify a page.
	SpreadRestricted SpreadCategory = iota
	// SpreadUniversal: spread >= threshold. Never filters pages.
	SpreadUniversal
	// SpreadUnknown: spread 0 (unit unattested on diagram pages).
	// Never filters pages.
	SpreadUnknown
)

// String implements fmt.Stringer.
func (c SpreadCategory) String() string {
	switch c {
	case SpreadRestricted:
		return "RESTRICTED"
	case SpreadUniversal:
		return "UNIVERSAL"
	case SpreadUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("SpreadCategory(%d)", int(c))
	}
}

// ZoneReachability holds the reachable and pruned class sets for one
// (bundle, zone) pair.
type ZoneReachability struct {
	Reachable ClassSet
	Pruned    ClassSet
}

// Projection is the output of the zone projector: per-fine-zone class
// reachability plus the compatible-page set and per-canonical-zone
// effective legal vocabulary, both exposed for diagnostics.
type Projection struct {
	Zones           map[FineZone]ZoneReachability
	CompatiblePages []string
	EffectiveLegal  map[Zone]VocabSet
}

// ReachabilityStatus is the tri-state verdict for a target folio.
type ReachabilityStatus int

const (
	StatusReachable ReachabilityStatus = iota
	StatusConditional
	StatusUnreachable
)

// String implements fmt.Stringer.
func (s ReachabilityStatus) String() string {
	switch s {
	case StatusReachable:
		return "REACHABLE"
	case StatusConditional:
		return "CONDITIONAL"
	case StatusUnreachable:
		return "UNREACHABLE"
	default:
		return fmt.Sprintf("ReachabilityStatus(%d)", int(s))
	}
}

// MarshalText renders the status for JSON output.
func (s ReachabilityStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FolioResult is the verdict for one target folio under one bundle.
// MissingClasses is always computed against zone C, regardless of
// status, for diagnostics.
type FolioResult struct {
	FolioID         string
	Status          ReachabilityStatus
	RequiredClasses ClassSet
	MissingClasses  ClassSet
	ReachableZones  []FineZone
}

// Result is the full outcome of one reachability query.
type Result struct {
	QueryID         string
	Bundle          Bundle
	CompatiblePages []string
	GrammarByZone   map[FineZone]ZoneReachability
	Folios          map[string]FolioResult
}
