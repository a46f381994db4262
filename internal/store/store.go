// Package store は選手・大会・記録の永続化を提供する。
//
// SQLite（database/sql + modernc.org/sqlite）とPostgreSQL（gorm）の2つの実装を持ち、
// 接続先URLによって切り替える。
package store

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/nao1215/swimresults/internal/model"
)

var (
	// ErrNotFound は指定したIDのレコードが存在しないことを表す。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrConflict は一意制約や外部キー制約に違反したことを表す。
	ErrConflict = errors.New("制約違反")
)

// Store は永続化層のインターフェース。
type Store interface {
	ListSwimmers(ctx context.Context) ([]model.Swimmer, error)
	GetSwimmer(ctx context.Context, id int64) (model.Swimmer, error)
	// CreateSwimmer は選手を登録し、IDを返す。s.IDが0の場合は採番する。
	CreateSwimmer(ctx context.Context, s model.Swimmer) (int64, error)
	UpdateSwimmer(ctx context.Context, s model.Swimmer) error
	// DeleteSwimmer は選手とその記録を削除する。
	DeleteSwimmer(ctx context.Context, id int64) error

	ListMeets(ctx context.Context) ([]model.Meet, error)
	GetMeet(ctx context.Context, id int64) (model.Meet, error)
	CreateMeet(ctx context.Context, m model.Meet) (int64, error)
	UpdateMeet(ctx context.Context, m model.Meet) error
	// DeleteMeet は大会とその記録を削除する。
	DeleteMeet(ctx context.Context, id int64) error

	ListResults(ctx context.Context) ([]model.Result, error)
	ListResultsBySwimmer(ctx context.Context, swimmerID int64) ([]model.Result, error)
	ListResultsByMeet(ctx context.Context, meetID int64) ([]model.Result, error)
	// CreateResult は記録を登録する。存在しない選手・大会を参照した場合はErrConflictを返す。
	CreateResult(ctx context.Context, r model.Result) (int64, error)
	DeleteResult(ctx context.Context, id int64) error

	// Ping はデータベースへの疎通を確認する。
	Ping(ctx context.Context) error
	// Close は接続を閉じる。
	Close() error
}

// Open は接続先URLに応じたStoreを開く。
// "postgres://" または "postgresql://" で始まる場合はPostgreSQL、それ以外はSQLiteのファイルパスとして扱う。
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		log.Printf("[Store] PostgreSQLに接続します")
		s, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	log.Printf("[Store] SQLiteデータベース %s を使用します", databaseURL)
	s, err := OpenSQLite(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}
