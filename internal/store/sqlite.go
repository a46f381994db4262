package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/swimresults/internal/model"
	"github.com/nao1215/swimresults/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// sqliteDateLayout はSQLiteに保存する日付の形式。
const sqliteDateLayout = "2006-01-02"

// SQLiteStore はSQLiteを使うStore実装。
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite はSQLiteデータベースを開き、マイグレーションを適用する。
// pathに ":memory:" を指定した場合はインメモリDBを使う。
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == ":memory:" {
		// インメモリDBは接続ごとに別のDBになるため、接続を1本に固定する
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}

	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Ping はデータベースへの疎通を確認する。
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close は接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const swimmerColumns = "id, gender, first_name, last_name, birth_year"

// ListSwimmers は全選手をID順に返す。
func (s *SQLiteStore) ListSwimmers(ctx context.Context) ([]model.Swimmer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+swimmerColumns+" FROM swimmers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("選手一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	swimmers := []model.Swimmer{}
	for rows.Next() {
		sw, err := scanSwimmer(rows)
		if err != nil {
			return nil, err
		}
		swimmers = append(swimmers, sw)
	}
	return swimmers, rows.Err()
}

// GetSwimmer はIDで選手を取得する。
func (s *SQLiteStore) GetSwimmer(ctx context.Context, id int64) (model.Swimmer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+swimmerColumns+" FROM swimmers WHERE id = ?", id)
	sw, err := scanSwimmer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Swimmer{}, ErrNotFound
	}
	return sw, err
}

// CreateSwimmer は選手を登録する。
func (s *SQLiteStore) CreateSwimmer(ctx context.Context, sw model.Swimmer) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO swimmers ("+swimmerColumns+") VALUES (?, ?, ?, ?, ?)",
		nullableID(sw.ID), string(sw.Gender), sw.FirstName, sw.LastName, sw.BirthYear)
	if err != nil {
		return 0, wrapSQLiteError("選手の登録に失敗", err)
	}
	return res.LastInsertId()
}

// UpdateSwimmer は選手を更新する。
func (s *SQLiteStore) UpdateSwimmer(ctx context.Context, sw model.Swimmer) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE swimmers SET gender = ?, first_name = ?, last_name = ?, birth_year = ? WHERE id = ?",
		string(sw.Gender), sw.FirstName, sw.LastName, sw.BirthYear, sw.ID)
	if err != nil {
		return wrapSQLiteError("選手の更新に失敗", err)
	}
	return requireAffected(res)
}

// DeleteSwimmer は選手を削除する。記録は外部キーのCASCADEで削除される。
func (s *SQLiteStore) DeleteSwimmer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM swimmers WHERE id = ?", id)
	if err != nil {
		return wrapSQLiteError("選手の削除に失敗", err)
	}
	return requireAffected(res)
}

const meetColumns = "id, name, start_date, end_date, city, country"

// ListMeets は全大会をID順に返す。
func (s *SQLiteStore) ListMeets(ctx context.Context) ([]model.Meet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+meetColumns+" FROM meets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("大会一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meets := []model.Meet{}
	for rows.Next() {
		m, err := scanMeet(rows)
		if err != nil {
			return nil, err
		}
		meets = append(meets, m)
	}
	return meets, rows.Err()
}

// GetMeet はIDで大会を取得する。
func (s *SQLiteStore) GetMeet(ctx context.Context, id int64) (model.Meet, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+meetColumns+" FROM meets WHERE id = ?", id)
	m, err := scanMeet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meet{}, ErrNotFound
	}
	return m, err
}

// CreateMeet は大会を登録する。
func (s *SQLiteStore) CreateMeet(ctx context.Context, m model.Meet) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO meets ("+meetColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		nullableID(m.ID), m.Name, m.StartDate.Format(sqliteDateLayout), m.EndDate.Format(sqliteDateLayout),
		nullableString(m.City), nullableString(m.Country))
	if err != nil {
		return 0, wrapSQLiteError("大会の登録に失敗", err)
	}
	return res.LastInsertId()
}

// UpdateMeet は大会を更新する。
func (s *SQLiteStore) UpdateMeet(ctx context.Context, m model.Meet) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE meets SET name = ?, start_date = ?, end_date = ?, city = ?, country = ? WHERE id = ?",
		m.Name, m.StartDate.Format(sqliteDateLayout), m.EndDate.Format(sqliteDateLayout),
		nullableString(m.City), nullableString(m.Country), m.ID)
	if err != nil {
		return wrapSQLiteError("大会の更新に失敗", err)
	}
	return requireAffected(res)
}

// DeleteMeet は大会を削除する。記録は外部キーのCASCADEで削除される。
func (s *SQLiteStore) DeleteMeet(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM meets WHERE id = ?", id)
	if err != nil {
		return wrapSQLiteError("大会の削除に失敗", err)
	}
	return requireAffected(res)
}

const resultColumns = "id, swimmer_id, meet_id, course, distance, stroke, time_centis"

// ListResults は全記録をID順に返す。
func (s *SQLiteStore) ListResults(ctx context.Context) ([]model.Result, error) {
	return s.queryResults(ctx, "SELECT "+resultColumns+" FROM results ORDER BY id")
}

// ListResultsBySwimmer は選手の記録をID順に返す。選手が存在しない場合はErrNotFoundを返す。
func (s *SQLiteStore) ListResultsBySwimmer(ctx context.Context, swimmerID int64) ([]model.Result, error) {
	if _, err := s.GetSwimmer(ctx, swimmerID); err != nil {
		return nil, err
	}
	return s.queryResults(ctx, "SELECT "+resultColumns+" FROM results WHERE swimmer_id = ? ORDER BY id", swimmerID)
}

// ListResultsByMeet は大会の記録をID順に返す。大会が存在しない場合はErrNotFoundを返す。
func (s *SQLiteStore) ListResultsByMeet(ctx context.Context, meetID int64) ([]model.Result, error) {
	if _, err := s.GetMeet(ctx, meetID); err != nil {
		return nil, err
	}
	return s.queryResults(ctx, "SELECT "+resultColumns+" FROM results WHERE meet_id = ? ORDER BY id", meetID)
}

// CreateResult は記録を登録する。
func (s *SQLiteStore) CreateResult(ctx context.Context, r model.Result) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO results ("+resultColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		nullableID(r.ID), r.SwimmerID, r.MeetID, string(r.Course), r.Distance, string(r.Stroke), int64(r.Time))
	if err != nil {
		return 0, wrapSQLiteError("記録の登録に失敗", err)
	}
	return res.LastInsertId()
}

// DeleteResult は記録を削除する。
func (s *SQLiteStore) DeleteResult(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return wrapSQLiteError("記録の削除に失敗", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) queryResults(ctx context.Context, query string, args ...any) ([]model.Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("記録の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []model.Result{}
	for rows.Next() {
		var (
			r              model.Result
			course, stroke string
			centis         int64
		)
		if err := rows.Scan(&r.ID, &r.SwimmerID, &r.MeetID, &course, &r.Distance, &stroke, &centis); err != nil {
			return nil, fmt.Errorf("記録の読み込みに失敗: %w", err)
		}
		r.Course = model.Course(course)
		r.Stroke = model.Stroke(stroke)
		r.Time = model.RaceTime(centis)
		results = append(results, r)
	}
	return results, rows.Err()
}

// scanner は *sql.Row と *sql.Rows の共通インターフェース。
type scanner interface {
	Scan(dest ...any) error
}

func scanSwimmer(row scanner) (model.Swimmer, error) {
	var (
		sw     model.Swimmer
		gender string
	)
	if err := row.Scan(&sw.ID, &gender, &sw.FirstName, &sw.LastName, &sw.BirthYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Swimmer{}, err
		}
		return model.Swimmer{}, fmt.Errorf("選手の読み込みに失敗: %w", err)
	}
	sw.Gender = model.Gender(gender)
	return sw, nil
}

func scanMeet(row scanner) (model.Meet, error) {
	var (
		m             model.Meet
		start, end    string
		city, country sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Name, &start, &end, &city, &country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Meet{}, err
		}
		return model.Meet{}, fmt.Errorf("大会の読み込みに失敗: %w", err)
	}

	var err error
	if m.StartDate, err = time.Parse(sqliteDateLayout, start); err != nil {
		return model.Meet{}, fmt.Errorf("start_date %q の解析に失敗: %w", start, err)
	}
	if m.EndDate, err = time.Parse(sqliteDateLayout, end); err != nil {
		return model.Meet{}, fmt.Errorf("end_date %q の解析に失敗: %w", end, err)
	}
	m.City = city.String
	m.Country = country.String
	return m, nil
}

// nullableID は0をNULLに変換し、SQLiteに採番させる。
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// requireAffected は更新・削除の対象が存在しなかった場合にErrNotFoundを返す。
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// wrapSQLiteError は制約違反をErrConflictに変換する。
func wrapSQLiteError(msg string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %v", msg, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
