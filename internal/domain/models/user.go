package models

import "time"

// User представляет учетную запись покупателя или администратора
type User struct {
	ID        int64
	Name      string
	Email     string // уникальный
	Phone     string
	Address   string // адрес доставки
	IsAdmin   bool
	PassHash  []byte // bcrypt, в открытом виде пароль нигде не хранится
	CreatedAt time.Time
}

// ListFilter общий фильтр для постраничных списков
type ListFilter struct {
	Query  string // подстрока имени, без учета регистра
	Offset int
	Limit  int
}
