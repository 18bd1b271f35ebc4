// Package migrations は方言ごとのスキーマ定義SQLを提供する。
//
// ファイルは {dialect}/{version}_{name}.sql に置く。dialectはgormのDialector名
// （mysql, sqlite）と一致させる。
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed mysql/*.sql sqlite/*.sql
var files embed.FS

// Source はマイグレーションの読み込み元を返す。
// dirが空の場合はバイナリに埋め込まれたファイルを使う。
func Source(dir string) fs.FS {
	if dir == "" {
		return files
	}
	return os.DirFS(dir)
}
