// Package storage содержит миграции SQLite базы данных.
package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: Таблица истории конвертаций
	`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		src_path TEXT NOT NULL,
		src_size INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL,
		preset TEXT NOT NULL,
		dst_path TEXT,
		status TEXT NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);`,

	// Миграция 2: Индекс для быстрого поиска по статусу
	`CREATE INDEX IF NOT EXISTS ix_jobs_status ON jobs (status);`,

	// Миграция 3: Индекс для выборки пакета
	`CREATE INDEX IF NOT EXISTS ix_jobs_batch ON jobs (batch_id);`,

	// Миграция 4: Таблица метаданных для версионирования схемы
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	// Миграция 5: Запись версии схемы
	`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', '1');`,
}

// GetMigrations возвращает список SQL-миграций.
func GetMigrations() []string {
	return migrations
}

/*
Возможные расширения:
- Таблица с размерами выходных файлов для статистики экономии
- Поддержка отката миграций (down migrations)
*/
