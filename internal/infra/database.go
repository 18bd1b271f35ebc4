// Package infra は外部サービスとの接続を提供する。
package infra

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// sqlitePrefix はSQLiteを使う場合のDATABASE_URLの接頭辞。ローカル開発用。
const sqlitePrefix = "sqlite://"

// NewDB はgormによるデータベース接続を初期化する。
// 一意制約違反はgorm.ErrDuplicatedKeyに変換される。
// tracingが有効な場合はクエリのスパンを記録する。
func NewDB(dsn string, withTracing bool) (*gorm.DB, error) {
	isSQLite := strings.HasPrefix(dsn, sqlitePrefix)

	dialector := mysql.Open(dsn)
	if isSQLite {
		dialector = sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, sqlitePrefix)))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if withTracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("registering tracing plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 接続プール設定
	if isSQLite {
		// :memory: は接続ごとに別DBになるため1接続に固定する
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// sqliteDSN は外部キー制約を有効にしたDSNを返す。
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}
