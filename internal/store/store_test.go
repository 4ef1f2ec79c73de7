package store

import (
	"errors"
	"testing"

	"github.com/epilectrik/voynich-sub021/internal/types"
)

func validSnapshot() Snapshot {
	return Snapshot{
		Classes: []types.InstructionClass{
			{ID: 1, Role: types.RoleKernel, RequiredVocabulary: types.NewVocabSet()},
			{ID: 2, Role: types.RoleLexical, RequiredVocabulary: types.NewVocabSet("ol")},
		},
		Pages: []types.DiagramPage{
			{ID: "f67r", Vocabulary: types.NewVocabSet("ol", "che")},
			{ID: "f68v", Vocabulary: types.NewVocabSet("che")},
		},
		Folios: []types.TargetFolio{
			{ID: "f103r", RequiredClasses: types.NewClassSet(1, 2)},
		},
		Legality: map[string][]types.Zone{
			"ol": {types.ZoneC, types.ZoneP},
		},
		Spread: map[string]int{"ol": 1, "che": 2},
	}
}

func TestNewStoreValid(t *testing.T) {
	st, err := NewStore(validSnapshot())
	if err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}

	stats := st.Stats()
	if stats.Classes != 2 || stats.KernelClasses != 1 || stats.Pages != 2 || stats.Folios != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if c, ok := st.Class(2); !ok || !c.RequiredVocabulary.Has("ol") {
		t.Fatalf("class 2 lookup failed")
	}
	if _, ok := st.Class(99); ok {
		t.Fatalf("undefined class should not resolve")
	}

	classes := st.Classes()
	if len(classes) != 2 || classes[0].ID != 1 || classes[1].ID != 2 {
		t.Fatalf("Classes not in id order: %+v", classes)
	}
}

func TestNewStoreRejectsDanglingFolioClass(t *testing.T) {
	snap := validSnapshot()
	snap.Folios[0].RequiredClasses.Add(7)

	_, err := NewStore(snap)
	if err == nil {
		t.Fatalf("expected error for dangling class reference")
	}
	var dle *DataLoadError
	if !errors.As(err, &dle) {
		t.Fatalf("expected DataLoadError, got %T", err)
	}
	if dle.Artifact != "folio_classes" {
		t.Fatalf("error should name the offending artifact, got %q", dle.Artifact)
	}
}

func TestNewStoreRejectsDuplicateClass(t *testing.T) {
	snap := validSnapshot()
	snap.Classes = append(snap.Classes, types.InstructionClass{ID: 1})
	if _, err := NewStore(snap); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for duplicate class id, got %v", err)
	}
}

func TestNewStoreRejectsInvalidClassID(t *testing.T) {
	snap := validSnapshot()
	snap.Classes[0].ID = 0
	if _, err := NewStore(snap); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for class id 0, got %v", err)
	}
}

func TestNewStoreRejectsEmptyCorpus(t *testing.T) {
	if _, err := NewStore(Snapshot{}); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for empty snapshot")
	}
}

func TestNewStoreRejectsEmptyLegalitySet(t *testing.T) {
	snap := validSnapshot()
	snap.Legality["che"] = nil
	snap.Legality["che"] = []types.Zone{}
	if _, err := NewStore(snap); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for empty legality set")
	}
}

func TestNewStoreRejectsUnknownLegalityZone(t *testing.T) {
	snap := validSnapshot()
	snap.Legality["che"] = []types.Zone{"X"}
	if _, err := NewStore(snap); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for unknown zone")
	}
}

func TestNewStoreRejectsDuplicatePage(t *testing.T) {
	snap := validSnapshot()
	snap.Pages = append(snap.Pages, types.DiagramPage{ID: "f67r", Vocabulary: types.NewVocabSet()})
	if _, err := NewStore(snap); !IsDataLoadError(err) {
		t.Fatalf("expected DataLoadError for duplicate page id")
	}
}

func TestAuxiliaryDefaultsAreNotErrors(t *testing.T) {
	st, err := NewStore(validSnapshot())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// No legality entry: legal everywhere.
	zones := st.Legality("unseen")
	if len(zones) != len(types.CanonicalZones) {
		t.Fatalf("missing legality entry should default to all zones, got %v", zones.Sorted())
	}
	if st.HasLegalityEntry("unseen") {
		t.Fatalf("unseen unit should have no explicit legality entry")
	}

	// Restricted entry stays restricted.
	ol := st.Legality("ol")
	if !ol.Has(types.ZoneC) || !ol.Has(types.ZoneP) || ol.Has(types.ZoneR) {
		t.Fatalf("unexpected legality for ol: %v", ol.Sorted())
	}

	// No spread entry: 0.
	if st.Spread("unseen") != 0 {
		t.Fatalf("missing spread entry should default to 0")
	}
	if st.Spread("che") != 2 {
		t.Fatalf("unexpected spread for che: %d", st.Spread("che"))
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	st, err := NewStore(validSnapshot())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	st.Pages()[0].Vocabulary.Add("evil")
	if st.Pages()[0].Vocabulary.Has("evil") {
		t.Fatalf("mutating a returned page vocabulary reached the store")
	}

	st.Folios()[0].RequiredClasses.Add(99)
	if st.Folios()[0].RequiredClasses.Has(99) {
		t.Fatalf("mutating a returned folio footprint reached the store")
	}

	st.ClassIDs().Add(99)
	if st.ClassIDs().Has(99) {
		t.Fatalf("mutating the returned id set reached the store")
	}

	st.Classes()[1].RequiredVocabulary.Add("evil")
	if c, _ := st.Class(2); c.RequiredVocabulary.Has("evil") {
		t.Fatalf("mutating a returned class vocabulary reached the store")
	}
}

func TestStoreDetachedFromSnapshot(t *testing.T) {
	snap := validSnapshot()
	st, err := NewStore(snap)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Mutating the snapshot after construction must not leak in.
	snap.Pages[0].Vocabulary.Add("evil")
	snap.Folios[0].RequiredClasses.Add(99)
	snap.Classes[1].RequiredVocabulary.Add("evil")

	if st.Pages()[0].Vocabulary.Has("evil") {
		t.Fatalf("snapshot page mutation reached the store")
	}
	if st.Folios()[0].RequiredClasses.Has(99) {
		t.Fatalf("snapshot folio mutation reached the store")
	}
	if c, _ := st.Class(2); c.RequiredVocabulary.Has("evil") {
		t.Fatalf("snapshot class mutation reached the store")
	}
}
