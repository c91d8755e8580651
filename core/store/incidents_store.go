package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bluewitness-api/core/utils"
)

var ErrConflict = errors.New("conflict")

type Incident struct {
	ID                int64     `json:"incident_id"`
	CaseID            string    `json:"case_id"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	Lat               float64   `json:"lat"`
	Long              float64   `json:"long"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Date              string    `json:"dates"`
	Verbalization     bool      `json:"verbalization"`
	EmptyHandSoft     bool      `json:"empty_hand_soft"`
	EmptyHandHard     bool      `json:"empty_hand_hard"`
	LessLethalMethods bool      `json:"less_lethal_methods"`
	LethalForce       bool      `json:"lethal_force"`
	Uncategorized     bool      `json:"uncategorized"`
	AddedOn           time.Time `json:"added_on"`
}

type Source struct {
	ID         int64  `json:"src_id"`
	IncidentID int64  `json:"incident_id"`
	URL        string `json:"src_url"`
	Type       string `json:"src_type,omitempty"`
}

type TypeOfForce struct {
	ID   int64  `json:"type_of_force_id"`
	Name string `json:"type_of_force"`
}

type IncidentTypeOfForce struct {
	ID            int64 `json:"itof_id"`
	IncidentID    int64 `json:"incident_id"`
	TypeOfForceID int64 `json:"type_of_force_id"`
}

// IncidentInput is one incident with the source URLs and tag names to attach to it.
type IncidentInput struct {
	Incident Incident
	Links    []string
	Tags     []string
}

type CreateOptions struct {
	// SkipExisting skips inputs whose case_id is already stored instead of failing the batch.
	SkipExisting bool
}

type CreateResult struct {
	IDs     []int64
	Created int
	Skipped int
}

type IncidentsStore interface {
	CreateIncidents(ctx context.Context, items []IncidentInput, opts CreateOptions) (CreateResult, error)
	GetIncident(ctx context.Context, id int64) (*Incident, error)
	ListIncidents(ctx context.Context) ([]Incident, error)

	CreateSource(ctx context.Context, src *Source) (int64, error)
	ListSources(ctx context.Context) ([]Source, error)
	ListSourcesByIncident(ctx context.Context, incidentID int64) ([]Source, error)

	ListTypesOfForce(ctx context.Context) ([]TypeOfForce, error)
	ListTypesOfForceByIncident(ctx context.Context, incidentID int64) ([]TypeOfForce, error)
	ListIncidentTypeOfForce(ctx context.Context) ([]IncidentTypeOfForce, error)
	ListIncidentTypeOfForceByIncident(ctx context.Context, incidentID int64) ([]IncidentTypeOfForce, error)

	DeleteAll(ctx context.Context) (int64, error)
}

type incidentsStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db, dialect: DialectOf(db)}
}

const incidentColumns = `incident_id, case_id, city, state, lat, long, title, description, incident_date, verbalization, empty_hand_soft, empty_hand_hard, less_lethal_methods, lethal_force, uncategorized, added_on`

func (s *incidentsStore) q(query string) string {
	return rebind(s.dialect, query)
}

func (s *incidentsStore) CreateIncidents(ctx context.Context, items []IncidentInput, opts CreateOptions) (CreateResult, error) {
	var res CreateResult
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	for i := range items {
		item := &items[i]
		caseID := strings.TrimSpace(item.Incident.CaseID)
		id, inserted, err := s.insertIncidentTx(ctx, tx, &item.Incident)
		if err != nil {
			tx.Rollback()
			return CreateResult{}, fmt.Errorf("insert incident %q: %w", caseID, err)
		}
		if !inserted {
			if opts.SkipExisting {
				res.Skipped++
				continue
			}
			tx.Rollback()
			return CreateResult{}, fmt.Errorf("case_id %q: %w", caseID, ErrConflict)
		}
		for _, link := range item.Links {
			if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO sources(incident_id, src_url, src_type) VALUES(?,?,?)`), id, link, nil); err != nil {
				tx.Rollback()
				return CreateResult{}, fmt.Errorf("insert source for %q: %w", caseID, err)
			}
		}
		for _, tag := range item.Tags {
			tagID, err := s.upsertTypeOfForceTx(ctx, tx, tag)
			if err != nil {
				tx.Rollback()
				return CreateResult{}, fmt.Errorf("upsert tag %q: %w", tag, err)
			}
			if _, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO incident_type_of_force(incident_id, type_of_force_id) VALUES(?,?)
				ON CONFLICT(incident_id, type_of_force_id) DO NOTHING`), id, tagID); err != nil {
				tx.Rollback()
				return CreateResult{}, fmt.Errorf("link tag %q: %w", tag, err)
			}
		}
		item.Incident.ID = id
		res.IDs = append(res.IDs, id)
		res.Created++
	}
	if err := tx.Commit(); err != nil {
		return CreateResult{}, err
	}
	return res, nil
}

// insertIncidentTx reports inserted=false when case_id is already stored, including
// when a concurrent transaction committed it first.
func (s *incidentsStore) insertIncidentTx(ctx context.Context, tx *sql.Tx, inc *Incident) (int64, bool, error) {
	if inc.AddedOn.IsZero() {
		inc.AddedOn = utils.NowUTC()
	}
	var id int64
	err := tx.QueryRowContext(ctx, s.q(`
		INSERT INTO incidents(case_id, city, state, lat, long, title, description, incident_date, verbalization, empty_hand_soft, empty_hand_hard, less_lethal_methods, lethal_force, uncategorized, added_on)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(case_id) DO NOTHING
		RETURNING incident_id`),
		strings.TrimSpace(inc.CaseID), inc.City, inc.State, inc.Lat, inc.Long, inc.Title, inc.Description, inc.Date,
		inc.Verbalization, inc.EmptyHandSoft, inc.EmptyHandHard, inc.LessLethalMethods, inc.LethalForce, inc.Uncategorized, inc.AddedOn).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// upsertTypeOfForceTx relies on the UNIQUE(type_of_force) constraint so concurrent
// ingestion of the same new name converges on a single row.
func (s *incidentsStore) upsertTypeOfForceTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO type_of_force(type_of_force) VALUES(?) ON CONFLICT(type_of_force) DO NOTHING`), name); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, s.q(`SELECT type_of_force_id FROM type_of_force WHERE type_of_force=?`), name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *incidentsStore) GetIncident(ctx context.Context, id int64) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+incidentColumns+` FROM incidents WHERE incident_id=?`), id)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inc, nil
}

func (s *incidentsStore) ListIncidents(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY incident_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, inc)
	}
	return res, rows.Err()
}

func (s *incidentsStore) CreateSource(ctx context.Context, src *Source) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(`INSERT INTO sources(incident_id, src_url, src_type) VALUES(?,?,?) RETURNING src_id`),
		src.IncidentID, src.URL, nullableString(src.Type)).Scan(&id)
	if err != nil {
		return 0, err
	}
	src.ID = id
	return id, nil
}

func (s *incidentsStore) ListSources(ctx context.Context) ([]Source, error) {
	return s.querySources(ctx, `SELECT src_id, incident_id, src_url, src_type FROM sources ORDER BY src_id ASC`)
}

func (s *incidentsStore) ListSourcesByIncident(ctx context.Context, incidentID int64) ([]Source, error) {
	return s.querySources(ctx, `SELECT src_id, incident_id, src_url, src_type FROM sources WHERE incident_id=? ORDER BY src_id ASC`, incidentID)
}

func (s *incidentsStore) querySources(ctx context.Context, query string, args ...any) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Source{}
	for rows.Next() {
		var src Source
		var typ sql.NullString
		if err := rows.Scan(&src.ID, &src.IncidentID, &src.URL, &typ); err != nil {
			return nil, err
		}
		src.Type = typ.String
		res = append(res, src)
	}
	return res, rows.Err()
}

func (s *incidentsStore) ListTypesOfForce(ctx context.Context) ([]TypeOfForce, error) {
	return s.queryTypesOfForce(ctx, `SELECT type_of_force_id, type_of_force FROM type_of_force ORDER BY type_of_force_id ASC`)
}

func (s *incidentsStore) ListTypesOfForceByIncident(ctx context.Context, incidentID int64) ([]TypeOfForce, error) {
	return s.queryTypesOfForce(ctx, `
		SELECT type_of_force_id, type_of_force FROM type_of_force
		WHERE type_of_force_id IN (SELECT type_of_force_id FROM incident_type_of_force WHERE incident_id=?)
		ORDER BY type_of_force_id ASC`, incidentID)
}

func (s *incidentsStore) queryTypesOfForce(ctx context.Context, query string, args ...any) ([]TypeOfForce, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []TypeOfForce{}
	for rows.Next() {
		var t TypeOfForce
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *incidentsStore) ListIncidentTypeOfForce(ctx context.Context) ([]IncidentTypeOfForce, error) {
	return s.queryLinks(ctx, `SELECT itof_id, incident_id, type_of_force_id FROM incident_type_of_force ORDER BY itof_id ASC`)
}

func (s *incidentsStore) ListIncidentTypeOfForceByIncident(ctx context.Context, incidentID int64) ([]IncidentTypeOfForce, error) {
	return s.queryLinks(ctx, `SELECT itof_id, incident_id, type_of_force_id FROM incident_type_of_force WHERE incident_id=? ORDER BY itof_id ASC`, incidentID)
}

func (s *incidentsStore) queryLinks(ctx context.Context, query string, args ...any) ([]IncidentTypeOfForce, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []IncidentTypeOfForce{}
	for rows.Next() {
		var l IncidentTypeOfForce
		if err := rows.Scan(&l.ID, &l.IncidentID, &l.TypeOfForceID); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// DeleteAll wipes every table children first and reports how many incidents were removed.
func (s *incidentsStore) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, table := range []string{"incident_type_of_force", "type_of_force", "sources"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM incidents`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("delete incidents: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (Incident, error) {
	var inc Incident
	var desc, date sql.NullString
	if err := row.Scan(&inc.ID, &inc.CaseID, &inc.City, &inc.State, &inc.Lat, &inc.Long, &inc.Title, &desc, &date,
		&inc.Verbalization, &inc.EmptyHandSoft, &inc.EmptyHandHard, &inc.LessLethalMethods, &inc.LethalForce, &inc.Uncategorized, &inc.AddedOn); err != nil {
		return Incident{}, err
	}
	inc.Description = desc.String
	inc.Date = date.String
	inc.AddedOn = inc.AddedOn.UTC()
	return inc, nil
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
