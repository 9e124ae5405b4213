package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/features"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/pipeline"
	"github.com/tekoetch/investorscout/internal/verify"
)

type scanner interface {
	Scan(dest ...any) error
}

const leadColumns = `name, title, snippet, url, normalized_url, score, confidence,
	signals, organization, query, unverified, first_seen, last_seen`

// SaveLeads upserts leads by normalized URL. The first-seen time of an
// existing row is kept.
func (db *DB) SaveLeads(ctx context.Context, list []leads.Lead) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO leads (id, `+leadColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(normalized_url) DO UPDATE SET
				name = excluded.name,
				title = excluded.title,
				snippet = excluded.snippet,
				url = excluded.url,
				score = excluded.score,
				confidence = excluded.confidence,
				signals = excluded.signals,
				organization = COALESCE(excluded.organization, leads.organization),
				query = COALESCE(leads.query, excluded.query),
				unverified = excluded.unverified,
				last_seen = excluded.last_seen
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare lead upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, l := range list {
			first, last := l.FirstSeen, l.LastSeen
			if first.IsZero() {
				first = now
			}
			if last.IsZero() {
				last = first
			}
			if _, err := stmt.ExecContext(ctx,
				uuid.New().String(), l.Name, l.Title, l.Snippet, l.URL, l.NormalizedURL,
				l.Score, string(l.Confidence), encodeList(l.Signals),
				NullString(l.Organization), NullString(l.Query), l.Unverified, first, last,
			); err != nil {
				return fmt.Errorf("failed to save lead %q: %w", l.Name, err)
			}
		}
		return nil
	})
}

// ListLeads returns leads in discovery order
func (db *DB) ListLeads(ctx context.Context, opts LeadListOptions) ([]leads.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE 1=1"
	args := []any{}

	if opts.MinScore != nil {
		query += " AND score >= ?"
		args = append(args, *opts.MinScore)
	}
	if opts.Name != nil {
		query += " AND name = ? COLLATE NOCASE"
		args = append(args, *opts.Name)
	}
	if opts.ExcludeUnsure {
		query += " AND unverified = 0"
	}

	query += " ORDER BY first_seen ASC, rowid ASC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []leads.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

// GetLead retrieves a lead by normalized URL
func (db *DB) GetLead(ctx context.Context, normalizedURL string) (*leads.Lead, error) {
	l, err := scanLead(db.QueryRowContext(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE normalized_url = ?", normalizedURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func scanLead(s scanner) (*leads.Lead, error) {
	l := &leads.Lead{}
	var confidence, signals string
	var organization, query sql.NullString

	if err := s.Scan(
		&l.Name, &l.Title, &l.Snippet, &l.URL, &l.NormalizedURL, &l.Score, &confidence,
		&signals, &organization, &query, &l.Unverified, &l.FirstSeen, &l.LastSeen,
	); err != nil {
		return nil, err
	}

	l.Confidence = firstpass.Confidence(confidence)
	l.Organization = organization.String
	l.Query = query.String

	var err error
	if l.Signals, err = decodeList(signals); err != nil {
		return nil, fmt.Errorf("failed to decode signals for %q: %w", l.Name, err)
	}
	return l, nil
}

// ReplaceEvidence swaps the evidence of the given candidates for the new
// rows of a verification run. Candidates not named keep their evidence.
func (db *DB) ReplaceEvidence(ctx context.Context, runID string, names []string, rows []verify.Evidence) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM evidence WHERE name = ? COLLATE NOCASE", name); err != nil {
				return fmt.Errorf("failed to clear evidence for %q: %w", name, err)
			}
		}
		return insertEvidence(ctx, tx, runID, rows)
	})
}

// AddEvidence appends evidence rows
func (db *DB) AddEvidence(ctx context.Context, runID string, rows []verify.Evidence) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertEvidence(ctx, tx, runID, rows)
	})
}

func insertEvidence(ctx context.Context, tx *sql.Tx, runID string, rows []verify.Evidence) error {
	now := time.Now()
	for i := range rows {
		e := &rows[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO evidence (id, run_id, name, query, snippet, score, breakdown, source_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			e.ID, NullString(runID), e.Name, e.Query, e.Snippet, e.Score,
			encodeList(e.Breakdown), e.SourceURL, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save evidence for %q: %w", e.Name, err)
		}
	}
	return nil
}

// ListEvidence returns evidence in insertion order. An empty name lists
// every row.
func (db *DB) ListEvidence(ctx context.Context, name string) ([]verify.Evidence, error) {
	query := `SELECT id, name, query, snippet, score, breakdown, source_url, created_at FROM evidence`
	args := []any{}
	if name != "" {
		query += " WHERE name = ? COLLATE NOCASE"
		args = append(args, name)
	}
	query += " ORDER BY rowid ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []verify.Evidence
	for rows.Next() {
		var e verify.Evidence
		var breakdown string
		if err := rows.Scan(&e.ID, &e.Name, &e.Query, &e.Snippet, &e.Score,
			&breakdown, &e.SourceURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Breakdown, err = decodeList(breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown for %q: %w", e.Name, err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

const verdictColumns = `name, organization, first_pass_score, second_pass_total, final_score,
	investor_confirmed, geo_confirmed, social_presence, verdict, unverified, region_override,
	url, evidence_count, identity_keywords, geo_keywords, seniority_keywords`

// ReplaceVerdicts stores a full consolidation, dropping the previous one
func (db *DB) ReplaceVerdicts(ctx context.Context, verdicts []consolidate.Verdict) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM verdicts"); err != nil {
			return fmt.Errorf("failed to clear verdicts: %w", err)
		}

		now := time.Now()
		for i, v := range verdicts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO verdicts (`+verdictColumns+`, position, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				v.Name, NullString(v.Organization), v.FirstPassScore, v.SecondPassTotal, v.FinalScore,
				v.InvestorConfirmed, v.GeoConfirmed, encodeList(v.SocialPresence), string(v.Grade),
				v.Unverified, v.RegionOverride, v.URL, v.EvidenceCount,
				encodeList(v.IdentityKeywords), encodeList(v.GeoKeywords), encodeList(v.SeniorityKeywords),
				i, now,
			); err != nil {
				return fmt.Errorf("failed to save verdict for %q: %w", v.Name, err)
			}
		}
		return nil
	})
}

// ListVerdicts returns verdicts in consolidation order
func (db *DB) ListVerdicts(ctx context.Context, opts VerdictListOptions) ([]consolidate.Verdict, error) {
	query := "SELECT " + verdictColumns + " FROM verdicts WHERE 1=1"
	args := []any{}

	if opts.Grade != nil {
		query += " AND verdict = ?"
		args = append(args, string(*opts.Grade))
	}
	if opts.AcceptedOnly {
		query += " AND verdict IN (?, ?)"
		args = append(args, string(consolidate.GradeGreat), string(consolidate.GradeGood))
	}

	query += " ORDER BY position ASC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	return db.queryVerdicts(ctx, query, args...)
}

// GetVerdict retrieves a verdict by candidate name (case-insensitive)
func (db *DB) GetVerdict(ctx context.Context, name string) (*consolidate.Verdict, error) {
	v, err := scanVerdict(db.QueryRowContext(ctx,
		"SELECT "+verdictColumns+" FROM verdicts WHERE name = ?", name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// SearchVerdicts searches verdicts by name, organization and URL
func (db *DB) SearchVerdicts(ctx context.Context, text string) ([]consolidate.Verdict, error) {
	pattern := "%" + strings.ToLower(text) + "%"
	return db.queryVerdicts(ctx, `
		SELECT `+verdictColumns+` FROM verdicts
		WHERE LOWER(name) LIKE ?
		   OR LOWER(organization) LIKE ?
		   OR LOWER(url) LIKE ?
		ORDER BY position ASC
	`, pattern, pattern, pattern)
}

func (db *DB) queryVerdicts(ctx context.Context, query string, args ...any) ([]consolidate.Verdict, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []consolidate.Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

func scanVerdict(s scanner) (*consolidate.Verdict, error) {
	v := &consolidate.Verdict{}
	var organization sql.NullString
	var grade, social, identity, geo, seniority string

	if err := s.Scan(
		&v.Name, &organization, &v.FirstPassScore, &v.SecondPassTotal, &v.FinalScore,
		&v.InvestorConfirmed, &v.GeoConfirmed, &social, &grade, &v.Unverified, &v.RegionOverride,
		&v.URL, &v.EvidenceCount, &identity, &geo, &seniority,
	); err != nil {
		return nil, err
	}

	v.Organization = organization.String
	v.Grade = consolidate.Grade(grade)

	for _, col := range []struct {
		raw string
		dst *[]string
	}{
		{social, &v.SocialPresence},
		{identity, &v.IdentityKeywords},
		{geo, &v.GeoKeywords},
		{seniority, &v.SeniorityKeywords},
	} {
		list, err := decodeList(col.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode verdict lists for %q: %w", v.Name, err)
		}
		*col.dst = list
	}
	return v, nil
}

// ReplaceEnrichments swaps the enrichment rows of the given candidates
func (db *DB) ReplaceEnrichments(ctx context.Context, names []string, rows []pipeline.Enrichment) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM enrichments WHERE name = ? COLLATE NOCASE", name); err != nil {
				return fmt.Errorf("failed to clear enrichments for %q: %w", name, err)
			}
		}

		now := time.Now()
		for i := range rows {
			e := &rows[i]
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO enrichments (id, name, channel, query, snippet, source_url, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, e.ID, e.Name, e.Channel, e.Query, e.Snippet, e.SourceURL, e.CreatedAt); err != nil {
				return fmt.Errorf("failed to save enrichment for %q: %w", e.Name, err)
			}
		}
		return nil
	})
}

// ListEnrichments returns the enrichment rows for a candidate, or all
// rows when name is empty
func (db *DB) ListEnrichments(ctx context.Context, name string) ([]pipeline.Enrichment, error) {
	query := `SELECT id, name, channel, query, snippet, source_url, created_at FROM enrichments`
	args := []any{}
	if name != "" {
		query += " WHERE name = ? COLLATE NOCASE"
		args = append(args, name)
	}
	query += " ORDER BY rowid ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []pipeline.Enrichment
	for rows.Next() {
		var e pipeline.Enrichment
		if err := rows.Scan(&e.ID, &e.Name, &e.Channel, &e.Query, &e.Snippet,
			&e.SourceURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// SaveLabels upserts human labels by candidate name
func (db *DB) SaveLabels(ctx context.Context, labels []features.Label) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for _, l := range labels {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO labels (name, identity, behavior, geo, contact, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(name) DO UPDATE SET
					identity = excluded.identity,
					behavior = excluded.behavior,
					geo = excluded.geo,
					contact = excluded.contact,
					updated_at = excluded.updated_at
			`, l.Name, l.Identity, l.Behavior, l.Geo, l.Contact, now); err != nil {
				return fmt.Errorf("failed to save label for %q: %w", l.Name, err)
			}
		}
		return nil
	})
}

// ListLabels returns every stored label keyed by lowercase name
func (db *DB) ListLabels(ctx context.Context) (map[string]features.Label, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name, identity, behavior, geo, contact FROM labels ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]features.Label)
	for rows.Next() {
		var l features.Label
		if err := rows.Scan(&l.Name, &l.Identity, &l.Behavior, &l.Geo, &l.Contact); err != nil {
			return nil, err
		}
		labels[strings.ToLower(l.Name)] = l
	}
	return labels, rows.Err()
}

// CreateRun records the start of a run
func (db *DB) CreateRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO runs (id, kind, started_at) VALUES (?, ?, ?)",
		r.ID, string(r.Kind), r.StartedAt)
	return err
}

// FinishRun stores the counters of a completed run
func (db *DB) FinishRun(ctx context.Context, r *Run) error {
	now := time.Now()
	r.FinishedAt = &now

	_, err := db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?, queries = ?, hits = ?, added = ?, merged = ?,
			verified = ?, evidence = ?, errors = ?, error_text = ?
		WHERE id = ?
	`,
		now, r.Queries, r.Hits, r.Added, r.Merged,
		r.Verified, r.Evidence, r.Errors, NullStringPtr(r.ErrorText), r.ID,
	)
	return err
}

// ListRuns returns the most recent runs first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, kind, started_at, finished_at, queries, hits, added, merged,
		       verified, evidence, errors, error_text
		FROM runs ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanRun(s scanner) (*Run, error) {
	r := &Run{}
	var kind string
	var finishedAt sql.NullTime
	var errorText sql.NullString

	if err := s.Scan(
		&r.ID, &kind, &r.StartedAt, &finishedAt, &r.Queries, &r.Hits, &r.Added, &r.Merged,
		&r.Verified, &r.Evidence, &r.Errors, &errorText,
	); err != nil {
		return nil, err
	}

	r.Kind = RunKind(kind)
	r.FinishedAt = TimePtr(finishedAt)
	r.ErrorText = StringPtr(errorText)
	return r, nil
}

// GetStats retrieves aggregate statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Verdicts: make(map[consolidate.Grade]int)}

	if err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN unverified = 1 THEN 1 ELSE 0 END), 0)
		FROM leads
	`).Scan(&stats.TotalDiscovered, &stats.Unverified); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT LOWER(name)), COUNT(*) FROM evidence",
	).Scan(&stats.TotalVerified, &stats.EvidenceRows); err != nil {
		return nil, fmt.Errorf("failed to count evidence: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT verdict, COUNT(*) FROM verdicts GROUP BY verdict")
	if err != nil {
		return nil, fmt.Errorf("failed to count verdicts: %w", err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var grade string
		var n int
		if err := rows.Scan(&grade, &n); err != nil {
			return nil, err
		}
		g := consolidate.Grade(grade)
		stats.Verdicts[g] = n
		total += n
		if g.Accepted() {
			stats.GreenList += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if total > 0 {
		stats.GreenPercent = float64(stats.GreenList) / float64(total) * 100
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM enrichments").Scan(&stats.Enrichments); err != nil {
		return nil, fmt.Errorf("failed to count enrichments: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM labels").Scan(&stats.Labels); err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}

	last, err := scanRun(db.QueryRowContext(ctx, `
		SELECT id, kind, started_at, finished_at, queries, hits, added, merged,
		       verified, evidence, errors, error_text
		FROM runs ORDER BY started_at DESC LIMIT 1
	`))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load last run: %w", err)
	}
	stats.LastRun = last

	return stats, nil
}
