package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// The corpus artifact is a SQLite database written by the external
// data-preparation step (or by WriteCorpus). Tables:
//
//	classes(id, role)
//	class_vocab(class_id, unit)
//	pages(id)
//	page_vocab(page_id, unit)
//	folios(id)
//	folio_classes(folio_id, class_id)
//	vocab_legality(unit, zone)
//	vocab_spread(unit, page_count)

// Open reads the corpus database at path and returns the validated,
// immutable store. Any missing table, unreadable row, or inconsistent
// fact yields a DataLoadError and no store.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if _, err := os.Stat(path); err != nil {
		return nil, &DataLoadError{Artifact: path, Reason: "corpus database not found", Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &DataLoadError{Artifact: path, Reason: "failed to open corpus database", Err: err}
	}
	defer db.Close()

	snap, err := readSnapshot(db)
	if err != nil {
		return nil, err
	}
	return NewStore(snap)
}

// readSnapshot pulls every table into a Snapshot. Reads are plain
// SELECTs; validation happens in NewStore so file and in-memory
// corpora go through identical checks.
func readSnapshot(db *sql.DB) (Snapshot, error) {
	var snap Snapshot

	classVocab := make(map[types.ClassID]types.VocabSet)
	if err := forEachRow(db, "class_vocab", "SELECT class_id, unit FROM class_vocab", func(rows *sql.Rows) error {
		var id int
		var unit string
		if err := rows.Scan(&id, &unit); err != nil {
			return err
		}
		cid := types.ClassID(id)
		if classVocab[cid] == nil {
			classVocab[cid] = types.NewVocabSet()
		}
		classVocab[cid].Add(unit)
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	if err := forEachRow(db, "classes", "SELECT id, role FROM classes ORDER BY id", func(rows *sql.Rows) error {
		var id int
		var role string
		if err := rows.Scan(&id, &role); err != nil {
			return err
		}
		cid := types.ClassID(id)
		vocab := classVocab[cid]
		if vocab == nil {
			vocab = types.NewVocabSet()
		}
		snap.Classes = append(snap.Classes, types.InstructionClass{
			ID:                 cid,
			Role:               types.ParseRole(role),
			RequiredVocabulary: vocab,
		})
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	pageVocab := make(map[string]types.VocabSet)
	if err := forEachRow(db, "page_vocab", "SELECT page_id, unit FROM page_vocab", func(rows *sql.Rows) error {
		var pageID, unit string
		if err := rows.Scan(&pageID, &unit); err != nil {
			return err
		}
		if pageVocab[pageID] == nil {
			pageVocab[pageID] = types.NewVocabSet()
		}
		pageVocab[pageID].Add(unit)
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	if err := forEachRow(db, "pages", "SELECT id FROM pages ORDER BY id", func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		vocab := pageVocab[id]
		if vocab == nil {
			vocab = types.NewVocabSet()
		}
		snap.Pages = append(snap.Pages, types.DiagramPage{ID: id, Vocabulary: vocab})
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	folioClasses := make(map[string]types.ClassSet)
	if err := forEachRow(db, "folio_classes", "SELECT folio_id, class_id FROM folio_classes", func(rows *sql.Rows) error {
		var folioID string
		var classID int
		if err := rows.Scan(&folioID, &classID); err != nil {
			return err
		}
		if folioClasses[folioID] == nil {
			folioClasses[folioID] = types.NewClassSet()
		}
		folioClasses[folioID].Add(types.ClassID(classID))
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	if err := forEachRow(db, "folios", "SELECT id FROM folios ORDER BY id", func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		required := folioClasses[id]
		if required == nil {
			required = types.NewClassSet()
		}
		snap.Folios = append(snap.Folios, types.TargetFolio{ID: id, RequiredClasses: required})
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	snap.Legality = make(map[string][]types.Zone)
	if err := forEachRow(db, "vocab_legality", "SELECT unit, zone FROM vocab_legality", func(rows *sql.Rows) error {
		var unit, zone string
		if err := rows.Scan(&unit, &zone); err != nil {
			return err
		}
		snap.Legality[unit] = append(snap.Legality[unit], types.Zone(zone))
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	snap.Spread = make(map[string]int)
	if err := forEachRow(db, "vocab_spread", "SELECT unit, page_count FROM vocab_spread", func(rows *sql.Rows) error {
		var unit string
		var count int
		if err := rows.Scan(&unit, &count); err != nil {
			return err
		}
		snap.Spread[unit] = count
		return nil
	}); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// forEachRow runs the query and applies scan to every row, wrapping
// any failure in a DataLoadError that names the artifact table.
func forEachRow(db *sql.DB, artifact, query string, scan func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return &DataLoadError{Artifact: artifact, Reason: "table missing or unreadable", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return &DataLoadError{Artifact: artifact, Reason: "failed to scan row", Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &DataLoadError{Artifact: artifact, Reason: "failed to iterate rows", Err: err}
	}
	return nil
}

// WriteCorpus persists a snapshot as the SQLite corpus artifact at
// path, replacing any existing file. It is the write side of Open and
// is used by cmd/tools/corpus_builder and by roundtrip tests.
func WriteCorpus(path string, snap Snapshot) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing corpus: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create corpus database: %w", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE classes (
		id INTEGER PRIMARY KEY,
		role TEXT NOT NULL
	);
	CREATE TABLE class_vocab (
		class_id INTEGER NOT NULL,
		unit TEXT NOT NULL,
		PRIMARY KEY(class_id, unit)
	);
	CREATE TABLE pages (
		id TEXT PRIMARY KEY
	);
	CREATE TABLE page_vocab (
		page_id TEXT NOT NULL,
		unit TEXT NOT NULL,
		PRIMARY KEY(page_id, unit)
	);
	CREATE TABLE folios (
		id TEXT PRIMARY KEY
	);
	CREATE TABLE folio_classes (
		folio_id TEXT NOT NULL,
		class_id INTEGER NOT NULL,
		PRIMARY KEY(folio_id, class_id)
	);
	CREATE TABLE vocab_legality (
		unit TEXT NOT NULL,
		zone TEXT NOT NULL,
		PRIMARY KEY(unit, zone)
	);
	CREATE TABLE vocab_spread (
		unit TEXT PRIMARY KEY,
		page_count INTEGER NOT NULL
	);
	CREATE INDEX idx_page_vocab_unit ON page_vocab(unit);
	CREATE INDEX idx_folio_classes_class ON folio_classes(class_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create corpus schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin corpus transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range snap.Classes {
		if _, err := tx.Exec("INSERT INTO classes (id, role) VALUES (?, ?)", int(c.ID), string(c.Role)); err != nil {
			return fmt.Errorf("failed to insert class %d: %w", c.ID, err)
		}
		for _, unit := range c.RequiredVocabulary.Sorted() {
			if _, err := tx.Exec("INSERT INTO class_vocab (class_id, unit) VALUES (?, ?)", int(c.ID), unit); err != nil {
				return fmt.Errorf("failed to insert class vocab: %w", err)
			}
		}
	}
	for _, p := range snap.Pages {
		if _, err := tx.Exec("INSERT INTO pages (id) VALUES (?)", p.ID); err != nil {
			return fmt.Errorf("failed to insert page %s: %w", p.ID, err)
		}
		for _, unit := range p.Vocabulary.Sorted() {
			if _, err := tx.Exec("INSERT INTO page_vocab (page_id, unit) VALUES (?, ?)", p.ID, unit); err != nil {
				return fmt.Errorf("failed to insert page vocab: %w", err)
			}
		}
	}
	for _, f := range snap.Folios {
		if _, err := tx.Exec("INSERT INTO folios (id) VALUES (?)", f.ID); err != nil {
			return fmt.Errorf("failed to insert folio %s: %w", f.ID, err)
		}
		for _, id := range f.RequiredClasses.Sorted() {
			if _, err := tx.Exec("INSERT INTO folio_classes (folio_id, class_id) VALUES (?, ?)", f.ID, int(id)); err != nil {
				return fmt.Errorf("failed to insert folio class: %w", err)
			}
		}
	}
	for unit, zones := range snap.Legality {
		for _, z := range zones {
			if _, err := tx.Exec("INSERT INTO vocab_legality (unit, zone) VALUES (?, ?)", unit, string(z)); err != nil {
				return fmt.Errorf("failed to insert legality for %s: %w", unit, err)
			}
		}
	}
	for unit, count := range snap.Spread {
		if _, err := tx.Exec("INSERT INTO vocab_spread (unit, page_count) VALUES (?, ?)", unit, count); err != nil {
			return fmt.Errorf("failed to insert spread for %s: %w", unit, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit corpus: %w", err)
	}
	return nil
}
