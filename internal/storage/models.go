// Package storage содержит модели и логику работы с SQLite базой данных.
package storage

import "time"

// JobStatus определяет статус записи в истории.
type JobStatus string

const (
	// StatusInProgress - задача выполняется.
	StatusInProgress JobStatus = "in_progress"
	// StatusCompleted - задача успешно завершена.
	StatusCompleted JobStatus = "completed"
	// StatusFailed - задача завершилась с ошибкой.
	StatusFailed JobStatus = "failed"
	// StatusCancelled - задача прервана пользователем.
	StatusCancelled JobStatus = "cancelled"
)

// Job - запись истории конвертации.
type Job struct {
	// ID - уникальный идентификатор записи.
	ID int64

	// BatchID - идентификатор пакета (uuid).
	BatchID string

	// SrcPath - абсолютный путь к исходному файлу.
	SrcPath string

	// SrcSize - размер исходного файла в байтах.
	SrcSize int64

	// Category - категория файла (image, video, audio, document).
	Category string

	// Preset - имя применённого пресета.
	Preset string

	// DstPath - путь к выходному файлу (пусто, если не создан).
	DstPath string

	// Status - статус задачи.
	Status JobStatus

	// Error - сообщение об ошибке (если есть).
	Error string

	// Duration - время конвертации.
	Duration time.Duration

	// StartedAt - время начала обработки.
	StartedAt time.Time

	// FinishedAt - время завершения (нулевое, если не завершена).
	FinishedAt time.Time
}

// Stats содержит агрегированную статистику истории.
type Stats struct {
	Total      int64
	Completed  int64
	Failed     int64
	Cancelled  int64
	InProgress int64

	// ByCategory - количество успешных конвертаций по категориям.
	ByCategory map[string]int64
}
