// Package models содержит доменные сущности comments-сервиса.
package models

import "time"

// Comment — внутренняя доменная модель комментария (MongoDB).
// Важно:
//   - ID — ObjectID MongoDB. Наружу/вовнутрь конвертируется в string.
//   - Username/Text — уже прошедшие модерацию значения (в хранилище попадает
//     только санитизированный текст).
//   - Likes — зарезервированный счётчик, операции инкремента нет.
//   - IPAddress — адрес автора, только для модерации; в HTTP-ответы не попадает.
//   - CreatedAt — назначается хранилищем при вставке, единственный ключ сортировки
//     (DESC = новые первыми, при равенстве — по _id).
type Comment struct {
	ID        string
	Username  string
	Text      string
	Likes     int64
	IPAddress string
	CreatedAt time.Time
}

// ListParams — параметры offset-пагинации.
type ListParams struct {
	Offset int64
	Limit  int64
}

// Page — результат постраничной выдачи: срез и точный общий счётчик.
type Page struct {
	Items      []Comment
	TotalCount int64
}
