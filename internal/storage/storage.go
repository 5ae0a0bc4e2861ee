// Package storage содержит логику работы с SQLite базой данных.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage хранит историю конвертаций.
type Storage struct {
	db *sql.DB
}

// New создаёт новое подключение к SQLite и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	// Создаём директорию для БД, если не существует
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	// Открываем/создаём БД с параметрами для concurrent доступа
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// SQLite не поддерживает concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// migrate выполняет все SQL-миграции.
func (s *Storage) migrate() error {
	for i, m := range GetMigrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("миграция %d: %w", i+1, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartJob создаёт запись со статусом in_progress и возвращает её ID.
func (s *Storage) StartJob(batchID, srcPath, category, presetName string) (int64, error) {
	var size int64
	if info, err := os.Stat(srcPath); err == nil {
		size = info.Size()
	}

	result, err := s.db.Exec(`
		INSERT INTO jobs (batch_id, src_path, src_size, category, preset, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, srcPath, size, category, presetName, StatusInProgress, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать запись: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("не удалось получить ID записи: %w", err)
	}
	return id, nil
}

// FinishJob фиксирует итог задачи.
// Для completed сообщение не сохраняется, для остальных статусов это текст ошибки.
func (s *Storage) FinishJob(id int64, dstPath, status, message string, duration time.Duration) error {
	st := JobStatus(status)
	switch st {
	case StatusCompleted, StatusFailed, StatusCancelled:
	default:
		return fmt.Errorf("недопустимый финальный статус: %s", status)
	}

	var errMsg, dst *string
	if st != StatusCompleted && message != "" {
		errMsg = &message
	}
	if dstPath != "" {
		dst = &dstPath
	}

	result, err := s.db.Exec(
		"UPDATE jobs SET status = ?, dst_path = ?, error = ?, duration_ms = ?, finished_at = ? WHERE id = ?",
		st, dst, errMsg, duration.Milliseconds(), time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить статус записи: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("запись %d не найдена", id)
	}
	return nil
}

// GetStats возвращает статистику по истории.
func (s *Storage) GetStats() (*Stats, error) {
	st := &Stats{ByCategory: make(map[string]int64)}

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("не удалось получить статистику: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status JobStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st.Total += n
		switch status {
		case StatusCompleted:
			st.Completed = n
		case StatusFailed:
			st.Failed = n
		case StatusCancelled:
			st.Cancelled = n
		case StatusInProgress:
			st.InProgress = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := s.db.Query("SELECT category, COUNT(*) FROM jobs WHERE status = ? GROUP BY category", StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить статистику по категориям: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var cat string
		var n int64
		if err := catRows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		st.ByCategory[cat] = n
	}

	return st, catRows.Err()
}

// Recent возвращает последние записи, новые первыми.
func (s *Storage) Recent(limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, batch_id, src_path, src_size, category, preset, dst_path, status, error,
		       duration_ms, started_at, finished_at
		FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать историю: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			j          Job
			dst, errS  sql.NullString
			durationMs int64
			started    int64
			finished   sql.NullInt64
		)
		if err := rows.Scan(&j.ID, &j.BatchID, &j.SrcPath, &j.SrcSize, &j.Category, &j.Preset,
			&dst, &j.Status, &errS, &durationMs, &started, &finished); err != nil {
			return nil, err
		}
		j.DstPath = dst.String
		j.Error = errS.String
		j.Duration = time.Duration(durationMs) * time.Millisecond
		j.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			j.FinishedAt = time.Unix(finished.Int64, 0)
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// CleanupInProgress переводит записи in_progress в failed.
// Вызывается при старте для очистки после аварийного завершения.
func (s *Storage) CleanupInProgress() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE jobs SET status = ?, error = ?, finished_at = ? WHERE status = ?",
		StatusFailed, "прервано при предыдущем запуске", time.Now().Unix(), StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить in_progress: %w", err)
	}
	return result.RowsAffected()
}

// Prune удаляет записи старше указанного возраста.
func (s *Storage) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	result, err := s.db.Exec("DELETE FROM jobs WHERE started_at < ? AND status != ?", cutoff, StatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить историю: %w", err)
	}
	return result.RowsAffected()
}

/*
Возможные расширения:
- Экспорт истории в JSON
- Повтор failed задач из истории
*/
