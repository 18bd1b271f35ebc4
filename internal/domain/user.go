// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import (
	"fmt"
	"time"
)

// Role はユーザーの権限レベルを表す。
type Role string

const (
	// RoleAdmin は管理者を表す。
	RoleAdmin Role = "ADMIN"
	// RoleCustomer は一般顧客を表す。
	RoleCustomer Role = "CUSTOMER"
)

// Valid は既知のロールかどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

// ParseRole は文字列をロールに変換する。
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// UnmarshalText は未知のロールを拒否する。
// JSONデコード時（トークンのクレーム等）にも適用される。
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User はユーザーエンティティを表す。
type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string // 決定的暗号化済みのパスワード
	Gender    string
	Domicile  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は認証済みユーザーの識別情報（トークンのクレーム）を表す。
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
