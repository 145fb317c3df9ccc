package index

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/tutis12/osubeatmap/dotosu"
	"github.com/tutis12/osubeatmap/logger"
)

// ErrNotFound is returned when no entry exists for a source.
var ErrNotFound = stderrors.New("index: no entry for source")

const schema = `
CREATE TABLE IF NOT EXISTS beatmaps (
	source         TEXT PRIMARY KEY,
	beatmap_id     INTEGER NOT NULL,
	beatmapset_id  INTEGER NOT NULL,
	format_version INTEGER NOT NULL,
	mode           TEXT NOT NULL,
	artist         TEXT NOT NULL,
	title          TEXT NOT NULL,
	version        TEXT NOT NULL,
	creator        TEXT NOT NULL,
	objects        INTEGER NOT NULL,
	max_combo      INTEGER NOT NULL,
	min_bpm        REAL NOT NULL,
	max_bpm        REAL NOT NULL,
	drain_ms       REAL NOT NULL,
	warnings       INTEGER NOT NULL,
	indexed_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS failures (
	source    TEXT PRIMARY KEY,
	reason    TEXT NOT NULL,
	failed_at INTEGER NOT NULL
);`

// Entry is one indexed chart.
type Entry struct {
	Source        string
	BeatmapID     int
	BeatmapSetID  int
	FormatVersion int
	Mode          string
	Artist        string
	Title         string
	Version       string
	Creator       string
	Objects       int
	MaxCombo      int
	MinBPM        float64
	MaxBPM        float64
	DrainTime     float64
	Warnings      int
	IndexedAt     time.Time
}

// Failure is a chart that could not be decoded.
type Failure struct {
	Source   string
	Reason   string
	FailedAt time.Time
}

// Store is a SQLite index of decoded charts and decode failures. It is safe
// for concurrent use.
type Store struct {
	db    *sql.DB
	clock clock.PassiveClock
	log   *logrus.Entry
}

// Open creates or opens the database at path. ":memory:" gives a private
// in-memory index.
func Open(path string, cl clock.PassiveClock) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "open index %s", path)
	}
	// sqlite serialises writers anyway; one connection also keeps :memory: shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WithStackTraceAndPrefix(err, "create index schema")
	}
	return &Store{
		db:    db,
		clock: cl,
		log:   logger.GetProjectLogger().WithField("index", path),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put upserts the entry for source and clears any failure recorded for it.
func (s *Store) Put(ctx context.Context, source string, b *dotosu.Beatmap, st dotosu.Stats) error {
	now := s.clock.Now().UnixNano()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO beatmaps (source, beatmap_id, beatmapset_id, format_version, mode, artist, title, version,
	creator, objects, max_combo, min_bpm, max_bpm, drain_ms, warnings, indexed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source) DO UPDATE SET
	beatmap_id = excluded.beatmap_id,
	beatmapset_id = excluded.beatmapset_id,
	format_version = excluded.format_version,
	mode = excluded.mode,
	artist = excluded.artist,
	title = excluded.title,
	version = excluded.version,
	creator = excluded.creator,
	objects = excluded.objects,
	max_combo = excluded.max_combo,
	min_bpm = excluded.min_bpm,
	max_bpm = excluded.max_bpm,
	drain_ms = excluded.drain_ms,
	warnings = excluded.warnings,
	indexed_at = excluded.indexed_at`,
		source, b.Metadata.BeatmapID, b.Metadata.BeatmapSetID, b.FormatVersion, b.General.Mode.String(),
		b.Metadata.Artist, b.Metadata.Title, b.Metadata.Version, b.Metadata.Creator,
		len(b.HitObjects), st.MaxCombo, st.MinBPM, st.MaxBPM, st.DrainTime, len(b.Warnings), now)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "index %s", source)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM failures WHERE source = ?`, source); err != nil {
		return errors.WithStackTraceAndPrefix(err, "clear failure %s", source)
	}
	if err := tx.Commit(); err != nil {
		return errors.WithStackTrace(err)
	}
	s.log.WithField("source", source).Debug("indexed")
	return nil
}

// RecordFailure stores why source could not be decoded, replacing an older reason.
func (s *Store) RecordFailure(ctx context.Context, source, reason string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO failures (source, reason, failed_at) VALUES (?, ?, ?)
ON CONFLICT(source) DO UPDATE SET reason = excluded.reason, failed_at = excluded.failed_at`,
		source, reason, s.clock.Now().UnixNano())
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "record failure %s", source)
	}
	return nil
}

// Get returns the entry for source or ErrNotFound.
func (s *Store) Get(ctx context.Context, source string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT source, beatmap_id, beatmapset_id, format_version, mode, artist, title, version, creator,
	objects, max_combo, min_bpm, max_bpm, drain_ms, warnings, indexed_at
FROM beatmaps WHERE source = ?`, source)

	var e Entry
	var at int64
	err := row.Scan(&e.Source, &e.BeatmapID, &e.BeatmapSetID, &e.FormatVersion, &e.Mode, &e.Artist, &e.Title,
		&e.Version, &e.Creator, &e.Objects, &e.MaxCombo, &e.MinBPM, &e.MaxBPM, &e.DrainTime, &e.Warnings, &at)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, errors.WithStackTrace(err)
	}
	e.IndexedAt = time.Unix(0, at).UTC()
	return e, nil
}

// Failures lists recorded failures ordered by source.
func (s *Store) Failures(ctx context.Context) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, reason, failed_at FROM failures ORDER BY source`)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		var at int64
		if err := rows.Scan(&f.Source, &f.Reason, &at); err != nil {
			return nil, errors.WithStackTrace(err)
		}
		f.FailedAt = time.Unix(0, at).UTC()
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return out, nil
}
