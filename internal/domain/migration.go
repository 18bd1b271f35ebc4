package domain

import "time"

// MigrationStatus はマイグレーションの適用状態。
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// Dialect はマイグレーションSQLの方言。gormのDialector名と一致させる。
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// Migration は方言ディレクトリ内の1ファイル分のスキーマ変更。
type Migration struct {
	Version    string
	Name       string
	Dialect    Dialect
	Path       string // 読み込み元FS内のパス
	Statements []string
	Status     MigrationStatus
	AppliedAt  *time.Time
}
