// Package storage содержит общие для всех хранилищ ошибки.
package storage

import "errors"

var (
	// ErrNotFound запись не найдена или принадлежит другому пользователю.
	ErrNotFound = errors.New("not found")
	// ErrUnknownReference подписка ссылается на несуществующую категорию или компанию.
	ErrUnknownReference = errors.New("unknown category or company")
)
