package domain

import "time"

// Branch は店舗エンティティを表す。
type Branch struct {
	ID           string
	Name         string
	Address      string
	ContactPhone string
	ContactEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Service は店舗で提供されるサービス（メニュー）を表す。
type Service struct {
	ID          string
	BranchID    string
	Name        string
	Price       string
	Duration    int // 分
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
