package domain

import "errors"

var (
	// ErrUserNotFound は指定されたユーザーが存在しない場合のエラー。
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists はユーザー名またはメールアドレスが既に使われている場合のエラー。
	ErrUserAlreadyExists = errors.New("username or email already taken")

	// ErrInvalidCredentials はユーザー名またはパスワードが一致しない場合のエラー。
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnknownRole は未知のロールが指定された場合のエラー。
	ErrUnknownRole = errors.New("unknown role")

	// ErrBranchNotFound は指定された店舗が存在しない場合のエラー。
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchAlreadyExists は同じ名前または住所の店舗が既に存在する場合のエラー。
	ErrBranchAlreadyExists = errors.New("branch already exists")

	// ErrServiceNotFound は指定されたサービスが存在しない場合のエラー。
	ErrServiceNotFound = errors.New("service not found")

	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrMigrationFileNotFound はマイグレーションファイルが見つからない場合のエラー。
	ErrMigrationFileNotFound = errors.New("migration file not found")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)
