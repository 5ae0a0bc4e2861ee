package worker

import (
	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/preset"
)

// Status - состояние задачи.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal сообщает, что статус финальный и больше не меняется.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Сообщения статусов, видимые пользователю.
const (
	MessageInvalidPreset = "Invalid Preset"
	MessageCompleted     = "Completed"
	MessageCancelled     = "Cancelled"
	MessageUnsupported   = "Unsupported file type"
)

// Job - запрос на конвертацию одного файла.
type Job struct {
	// Path - исходный файл.
	Path string

	// PresetName - имя пресета; пустое имя означает первый пресет категории.
	PresetName string

	// Override заменяет поиск в каталоге (пользовательские настройки).
	Override *preset.Preset
}

// JobState - состояние задачи внутри пакета.
type JobState struct {
	Path       string
	OutputPath string
	Category   filetype.Category
	Preset     string
	Status     Status
	Message    string
}

// EventKind - тип события раннера.
type EventKind int

const (
	// EventProgress - процент выполнения текущей задачи.
	EventProgress EventKind = iota
	// EventFinished - задача завершилась (успешно, с ошибкой или отменой).
	EventFinished
	// EventAllFinished - пакет завершён. Отправляется ровно один раз.
	EventAllFinished
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	case EventAllFinished:
		return "all_finished"
	default:
		return "unknown"
	}
}

// Event - уведомление о ходе пакета.
type Event struct {
	Kind EventKind

	// Path - исходный файл (для progress/finished).
	Path string

	// Percent - 0..100 (для progress).
	Percent int

	// Success, Status, Message, OutputPath заполняются для finished.
	Success    bool
	Status     Status
	Message    string
	OutputPath string

	// Stats - итог пакета (для all_finished).
	Stats Stats
}
