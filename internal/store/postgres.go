package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/swimresults/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SwimmerModel はswimmersテーブルの行。
type SwimmerModel struct {
	ID        int64  `gorm:"primaryKey"`
	Gender    string `gorm:"type:varchar(1);not null;check:gender IN ('F','M','X')"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	BirthYear int    `gorm:"not null"`
}

// TableName はテーブル名を返す。
func (SwimmerModel) TableName() string { return "swimmers" }

// MeetModel はmeetsテーブルの行。
type MeetModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	City      *string
	Country   *string
}

// TableName はテーブル名を返す。
func (MeetModel) TableName() string { return "meets" }

// ResultModel はresultsテーブルの行。
type ResultModel struct {
	ID         int64         `gorm:"primaryKey"`
	SwimmerID  int64         `gorm:"index;not null"`
	Swimmer    *SwimmerModel `gorm:"foreignKey:SwimmerID;constraint:OnDelete:CASCADE"`
	MeetID     int64         `gorm:"index;not null"`
	Meet       *MeetModel    `gorm:"foreignKey:MeetID;constraint:OnDelete:CASCADE"`
	Course     string        `gorm:"type:varchar(3);not null;check:course IN ('LCM','SCM','SCY')"`
	Distance   int           `gorm:"not null;check:distance IN (25,50,100,200,400,800,1500)"`
	Stroke     string        `gorm:"type:varchar(6);not null;check:stroke IN ('Back','Breast','Fly','Free','IM')"`
	TimeCentis int64         `gorm:"not null;check:time_centis > 0"`
}

// TableName はテーブル名を返す。
func (ResultModel) TableName() string { return "results" }

// PostgresStore はgormでPostgreSQLを使うStore実装。
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres はPostgreSQLに接続し、テーブルを自動作成する。
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgresへの接続に失敗: %w", err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&SwimmerModel{}, &MeetModel{}, &ResultModel{}); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &PostgresStore{db: gdb}, nil
}

// Ping はデータベースへの疎通を確認する。
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close は接続を閉じる。
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListSwimmers は全選手をID順に返す。
func (s *PostgresStore) ListSwimmers(ctx context.Context) ([]model.Swimmer, error) {
	var rows []SwimmerModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("選手一覧の取得に失敗: %w", err)
	}
	swimmers := make([]model.Swimmer, 0, len(rows))
	for _, r := range rows {
		swimmers = append(swimmers, r.toModel())
	}
	return swimmers, nil
}

// GetSwimmer はIDで選手を取得する。
func (s *PostgresStore) GetSwimmer(ctx context.Context, id int64) (model.Swimmer, error) {
	var row SwimmerModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Swimmer{}, wrapGormError("選手の取得に失敗", err)
	}
	return row.toModel(), nil
}

// CreateSwimmer は選手を登録する。
func (s *PostgresStore) CreateSwimmer(ctx context.Context, sw model.Swimmer) (int64, error) {
	row := swimmerFromModel(sw)
	err := s.create(ctx, &row, row.TableName(), sw.ID != 0)
	if err != nil {
		return 0, wrapGormError("選手の登録に失敗", err)
	}
	return row.ID, nil
}

// UpdateSwimmer は選手を更新する。
func (s *PostgresStore) UpdateSwimmer(ctx context.Context, sw model.Swimmer) error {
	row := swimmerFromModel(sw)
	res := s.db.WithContext(ctx).Model(&SwimmerModel{}).Where("id = ?", sw.ID).
		Select("gender", "first_name", "last_name", "birth_year").Updates(&row)
	return affected("選手の更新に失敗", res)
}

// DeleteSwimmer は選手を削除する。
func (s *PostgresStore) DeleteSwimmer(ctx context.Context, id int64) error {
	return affected("選手の削除に失敗", s.db.WithContext(ctx).Delete(&SwimmerModel{}, id))
}

// ListMeets は全大会をID順に返す。
func (s *PostgresStore) ListMeets(ctx context.Context) ([]model.Meet, error) {
	var rows []MeetModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("大会一覧の取得に失敗: %w", err)
	}
	meets := make([]model.Meet, 0, len(rows))
	for _, r := range rows {
		meets = append(meets, r.toModel())
	}
	return meets, nil
}

// GetMeet はIDで大会を取得する。
func (s *PostgresStore) GetMeet(ctx context.Context, id int64) (model.Meet, error) {
	var row MeetModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Meet{}, wrapGormError("大会の取得に失敗", err)
	}
	return row.toModel(), nil
}

// CreateMeet は大会を登録する。
func (s *PostgresStore) CreateMeet(ctx context.Context, m model.Meet) (int64, error) {
	row := meetFromModel(m)
	if err := s.create(ctx, &row, row.TableName(), m.ID != 0); err != nil {
		return 0, wrapGormError("大会の登録に失敗", err)
	}
	return row.ID, nil
}

// UpdateMeet は大会を更新する。
func (s *PostgresStore) UpdateMeet(ctx context.Context, m model.Meet) error {
	row := meetFromModel(m)
	res := s.db.WithContext(ctx).Model(&MeetModel{}).Where("id = ?", m.ID).
		Select("name", "start_date", "end_date", "city", "country").Updates(&row)
	return affected("大会の更新に失敗", res)
}

// DeleteMeet は大会を削除する。
func (s *PostgresStore) DeleteMeet(ctx context.Context, id int64) error {
	return affected("大会の削除に失敗", s.db.WithContext(ctx).Delete(&MeetModel{}, id))
}

// ListResults は全記録をID順に返す。
func (s *PostgresStore) ListResults(ctx context.Context) ([]model.Result, error) {
	return s.findResults(s.db.WithContext(ctx))
}

// ListResultsBySwimmer は選手の記録をID順に返す。
func (s *PostgresStore) ListResultsBySwimmer(ctx context.Context, swimmerID int64) ([]model.Result, error) {
	if _, err := s.GetSwimmer(ctx, swimmerID); err != nil {
		return nil, err
	}
	return s.findResults(s.db.WithContext(ctx).Where("swimmer_id = ?", swimmerID))
}

// ListResultsByMeet は大会の記録をID順に返す。
func (s *PostgresStore) ListResultsByMeet(ctx context.Context, meetID int64) ([]model.Result, error) {
	if _, err := s.GetMeet(ctx, meetID); err != nil {
		return nil, err
	}
	return s.findResults(s.db.WithContext(ctx).Where("meet_id = ?", meetID))
}

// CreateResult は記録を登録する。
func (s *PostgresStore) CreateResult(ctx context.Context, r model.Result) (int64, error) {
	row := ResultModel{
		ID:         r.ID,
		SwimmerID:  r.SwimmerID,
		MeetID:     r.MeetID,
		Course:     string(r.Course),
		Distance:   r.Distance,
		Stroke:     string(r.Stroke),
		TimeCentis: int64(r.Time),
	}
	if err := s.create(ctx, &row, row.TableName(), r.ID != 0); err != nil {
		return 0, wrapGormError("記録の登録に失敗", err)
	}
	return row.ID, nil
}

// DeleteResult は記録を削除する。
func (s *PostgresStore) DeleteResult(ctx context.Context, id int64) error {
	return affected("記録の削除に失敗", s.db.WithContext(ctx).Delete(&ResultModel{}, id))
}

// create は行を登録する。IDを指定した場合はシーケンスを最大IDまで進め、
// 以降の自動採番と衝突しないようにする。
func (s *PostgresStore) create(ctx context.Context, row any, table string, explicitID bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if !explicitID {
			return nil
		}
		return tx.Exec(fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))", table,
		)).Error
	})
}

func (s *PostgresStore) findResults(q *gorm.DB) ([]model.Result, error) {
	var rows []ResultModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("記録の取得に失敗: %w", err)
	}
	results := make([]model.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, model.Result{
			ID:        r.ID,
			SwimmerID: r.SwimmerID,
			MeetID:    r.MeetID,
			Course:    model.Course(r.Course),
			Distance:  r.Distance,
			Stroke:    model.Stroke(r.Stroke),
			Time:      model.RaceTime(r.TimeCentis),
		})
	}
	return results, nil
}

func (r SwimmerModel) toModel() model.Swimmer {
	return model.Swimmer{
		ID:        r.ID,
		Gender:    model.Gender(r.Gender),
		FirstName: r.FirstName,
		LastName:  r.LastName,
		BirthYear: r.BirthYear,
	}
}

func swimmerFromModel(sw model.Swimmer) SwimmerModel {
	return SwimmerModel{
		ID:        sw.ID,
		Gender:    string(sw.Gender),
		FirstName: sw.FirstName,
		LastName:  sw.LastName,
		BirthYear: sw.BirthYear,
	}
}

func (r MeetModel) toModel() model.Meet {
	m := model.Meet{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: dateOnly(r.StartDate),
		EndDate:   dateOnly(r.EndDate),
	}
	if r.City != nil {
		m.City = *r.City
	}
	if r.Country != nil {
		m.Country = *r.Country
	}
	return m
}

func meetFromModel(m model.Meet) MeetModel {
	row := MeetModel{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}
	if m.City != "" {
		row.City = &m.City
	}
	if m.Country != "" {
		row.Country = &m.Country
	}
	return row
}

// dateOnly はタイムゾーンに依存しないようUTCの0時に揃える。
func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// affected は更新・削除の結果を確認し、対象が存在しなかった場合にErrNotFoundを返す。
func affected(msg string, res *gorm.DB) error {
	if res.Error != nil {
		return wrapGormError(msg, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// wrapGormError はgormのエラーをストアのセンチネルに変換する。
func wrapGormError(msg string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w: %v", msg, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
