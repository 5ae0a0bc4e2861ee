package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Profile - сохранённый именованный набор настроек.
type Profile struct {
	// Name - имя профиля.
	Name string
	// Path - путь к файлу профиля.
	Path string
	// Config - содержимое профиля (nil, если файл не читается).
	Config *FileConfig
}

// GetProfilesDir возвращает директорию для хранения профилей.
func GetProfilesDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles"), nil
}

// GetProfilePath возвращает путь к файлу профиля по имени.
func GetProfilePath(name string) (string, error) {
	dir, err := GetProfilesDir()
	if err != nil {
		return "", err
	}

	// Очищаем имя от небезопасных символов
	safeName := sanitizeProfileName(name)
	if safeName == "" {
		return "", fmt.Errorf("некорректное имя профиля: %s", name)
	}

	return filepath.Join(dir, safeName+".yaml"), nil
}

// sanitizeProfileName оставляет только буквы, цифры, дефисы и подчёркивания.
func sanitizeProfileName(name string) string {
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SaveProfile сохраняет настройки как именованный профиль.
func SaveProfile(name string, cfg *Config) (string, error) {
	path, err := GetProfilePath(name)
	if err != nil {
		return "", err
	}

	if err := FromConfig(cfg).SaveToFile(path); err != nil {
		return "", fmt.Errorf("не удалось сохранить профиль: %w", err)
	}

	return path, nil
}

// LoadProfile загружает именованный профиль.
func LoadProfile(name string) (*FileConfig, string, error) {
	path, err := GetProfilePath(name)
	if err != nil {
		return nil, "", err
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось загрузить профиль '%s': %w", name, err)
	}
	if fc == nil {
		return nil, "", fmt.Errorf("профиль '%s' не найден", name)
	}

	return fc, path, nil
}

// ListProfiles возвращает список сохранённых профилей, отсортированный по имени.
func ListProfiles() ([]Profile, error) {
	dir, err := GetProfilesDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Profile{}, nil
		}
		return nil, fmt.Errorf("не удалось прочитать директорию профилей: %w", err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		fc, _ := LoadFromFile(path)

		profiles = append(profiles, Profile{
			Name:   strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"),
			Path:   path,
			Config: fc,
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

// DeleteProfile удаляет именованный профиль.
func DeleteProfile(name string) error {
	path, err := GetProfilePath(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("профиль '%s' не найден", name)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("не удалось удалить профиль: %w", err)
	}

	return nil
}
