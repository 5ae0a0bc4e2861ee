// Package worker содержит последовательный раннер задач конвертации.
package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artemshloyda/fileconverter/internal/converter"
	"github.com/artemshloyda/fileconverter/internal/filetype"
	"github.com/artemshloyda/fileconverter/internal/outpath"
	"github.com/artemshloyda/fileconverter/internal/preset"
)

// ErrAlreadyRunning возвращается при попытке запустить второй пакет.
var ErrAlreadyRunning = errors.New("пакет уже выполняется")

// eventBuffer - размер буфера канала событий.
const eventBuffer = 64

// PresetSource находит пресет по категории и имени.
// Пустое имя означает пресет по умолчанию. Реализуется *preset.Catalog.
type PresetSource interface {
	Resolve(cat filetype.Category, name string) (preset.Preset, error)
}

// Recorder сохраняет историю задач. Реализуется *storage.Storage.
type Recorder interface {
	StartJob(batchID, srcPath, category, presetName string) (int64, error)
	FinishJob(id int64, dstPath, status, message string, duration time.Duration) error
}

// Option настраивает Runner.
type Option func(*Runner)

// WithLogger задаёт логгер.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRecorder включает запись истории.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithTracker задаёт трекер процессов.
func WithTracker(t *converter.ProcessTracker) Option {
	return func(r *Runner) { r.tracker = t }
}

// Runner выполняет задачи пакета строго по одной, в порядке списка.
// Отмена безопасна из любой горутины: останавливает очередь и убивает
// текущий внешний процесс.
type Runner struct {
	presets  PresetSource
	engines  map[filetype.Category]converter.Engine
	logger   zerolog.Logger
	recorder Recorder
	tracker  *converter.ProcessTracker

	// running сбрасывается отменой.
	running atomic.Bool

	mu      sync.Mutex
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
	batchID string
	states  []JobState
	stats   Stats
}

// New создаёт Runner с движками по категориям.
func New(presets PresetSource, engines map[filetype.Category]converter.Engine, opts ...Option) *Runner {
	r := &Runner{
		presets: presets,
		engines: engines,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracker == nil {
		r.tracker = converter.NewProcessTracker()
	}
	return r
}

// Start запускает пакет в отдельной горутине.
// Канал событий закрывается после EventAllFinished; его нужно читать до конца.
func (r *Runner) Start(ctx context.Context, jobs []Job) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return nil, ErrAlreadyRunning
	}

	batchCtx, cancel := context.WithCancel(ctx)
	r.active = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.batchID = uuid.NewString()
	r.stats = Stats{Total: len(jobs)}
	r.states = make([]JobState, len(jobs))
	for i, j := range jobs {
		r.states[i] = JobState{
			Path:     j.Path,
			Category: filetype.Classify(j.Path),
			Preset:   j.PresetName,
			Status:   StatusPending,
		}
	}
	r.running.Store(true)

	events := make(chan Event, eventBuffer)
	go r.loop(batchCtx, jobs, events, r.done)

	r.logger.Info().Str("batch", r.batchID).Int("jobs", len(jobs)).Msg("пакет запущен")
	return events, nil
}

// Cancel останавливает пакет. Идемпотентна.
func (r *Runner) Cancel() {
	r.running.Store(false)

	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := r.tracker.Kill(); err != nil {
		r.logger.Warn().Err(err).Msg("не удалось остановить процесс")
	}
}

// Wait блокируется до завершения текущего пакета.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Running сообщает, выполняется ли пакет и не был ли он отменён.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active && r.running.Load()
}

// BatchID возвращает идентификатор последнего пакета.
func (r *Runner) BatchID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batchID
}

// States возвращает снимок состояний задач.
func (r *Runner) States() []JobState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]JobState, len(r.states))
	copy(out, r.states)
	return out
}

// Stats возвращает статистику последнего пакета.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Runner) loop(ctx context.Context, jobs []Job, events chan<- Event, done chan struct{}) {
	resolver := outpath.NewResolver()

	for i, job := range jobs {
		if !r.running.Load() || ctx.Err() != nil {
			break
		}
		if stop := r.runJob(ctx, i, job, resolver, events); stop {
			break
		}
	}

	r.mu.Lock()
	stats := r.stats
	r.cancel()
	r.mu.Unlock()

	events <- Event{Kind: EventAllFinished, Stats: stats}
	close(events)

	r.logger.Info().
		Int("completed", stats.Completed).
		Int("failed", stats.Failed).
		Int("cancelled", stats.Cancelled).
		Int("pending", stats.Pending()).
		Msg("пакет завершён")

	r.mu.Lock()
	r.active = false
	r.running.Store(false)
	r.mu.Unlock()
	close(done)
}

// runJob выполняет одну задачу. Возвращает true, если пакет нужно остановить.
func (r *Runner) runJob(ctx context.Context, i int, job Job, resolver *outpath.Resolver, events chan<- Event) bool {
	cat := filetype.Classify(job.Path)
	log := r.logger.With().Str("path", job.Path).Str("category", cat.String()).Logger()

	p, msg, ok := r.resolvePreset(cat, job)
	if !ok {
		log.Warn().Str("preset", job.PresetName).Msg(msg)
		r.finishJob(i, 0, job.Path, "", StatusFailed, msg, 0, events)
		return false
	}

	engine, ok := r.engines[cat]
	if !ok {
		log.Warn().Msg("нет движка для категории")
		r.finishJob(i, 0, job.Path, "", StatusFailed, MessageUnsupported, 0, events)
		return false
	}

	out := resolver.Resolve(job.Path, p)

	r.mu.Lock()
	r.states[i].Status = StatusRunning
	r.states[i].OutputPath = out
	r.states[i].Preset = p.Name
	batchID := r.batchID
	r.mu.Unlock()

	var recID int64
	if r.recorder != nil {
		id, err := r.recorder.StartJob(batchID, job.Path, cat.String(), p.Name)
		if err != nil {
			log.Warn().Err(err).Msg("не удалось записать задачу в историю")
		}
		recID = id
	}

	log.Debug().Str("preset", p.Name).Str("output", out).Str("engine", engine.Name()).Msg("конвертация")
	events <- Event{Kind: EventProgress, Path: job.Path, Percent: 0}

	progress := make(chan int)
	resCh := make(chan *converter.Result, 1)
	go func() {
		resCh <- engine.Convert(ctx, converter.Request{
			InputPath:  job.Path,
			OutputPath: out,
			Preset:     p,
			Progress:   progress,
			Tracker:    r.tracker,
		})
	}()

	last := 0
	var res *converter.Result
	for res == nil {
		select {
		case pct := <-progress:
			if pct > last {
				last = pct
				events <- Event{Kind: EventProgress, Path: job.Path, Percent: pct}
			}
		case got := <-resCh:
			res = got
			if res == nil {
				res = &converter.Result{Err: errors.New("движок не вернул результат")}
			}
		}
	}

	switch {
	case res.Success:
		if last < 100 {
			events <- Event{Kind: EventProgress, Path: job.Path, Percent: 100}
		}
		r.addSizes(job.Path, res.OutputPath)
		log.Info().Str("output", res.OutputPath).Dur("duration", res.Duration).Msg("готово")
		r.finishJob(i, recID, job.Path, res.OutputPath, StatusCompleted, MessageCompleted, res.Duration, events)
		return false

	case res.Cancelled() || !r.running.Load():
		resolver.Release(out)
		log.Info().Msg("отменено")
		r.finishJob(i, recID, job.Path, "", StatusCancelled, MessageCancelled, res.Duration, events)
		return true

	default:
		log.Error().Err(res.Err).Int("exit_code", res.ExitCode).Msg("ошибка конвертации")
		r.finishJob(i, recID, job.Path, "", StatusFailed, res.Message(), res.Duration, events)
		return false
	}
}

// resolvePreset выбирает пресет: override, затем имя, затем первый в категории.
func (r *Runner) resolvePreset(cat filetype.Category, job Job) (preset.Preset, string, bool) {
	if job.Override != nil {
		if cat == filetype.Unknown {
			return preset.Preset{}, MessageUnsupported, false
		}
		if err := job.Override.Validate(); err != nil {
			return preset.Preset{}, MessageInvalidPreset, false
		}
		return *job.Override, "", true
	}

	if r.presets == nil || cat == filetype.Unknown {
		return preset.Preset{}, MessageInvalidPreset, false
	}

	p, err := r.presets.Resolve(cat, job.PresetName)
	if err != nil {
		return preset.Preset{}, MessageInvalidPreset, false
	}
	return p, "", true
}

func (r *Runner) finishJob(i int, recID int64, path, out string, status Status, msg string, d time.Duration, events chan<- Event) {
	r.mu.Lock()
	st := &r.states[i]
	st.Status = status
	st.Message = msg
	st.OutputPath = out
	switch status {
	case StatusCompleted:
		r.stats.Completed++
	case StatusFailed:
		r.stats.Failed++
	case StatusCancelled:
		r.stats.Cancelled++
	}
	r.mu.Unlock()

	if r.recorder != nil && recID > 0 {
		if err := r.recorder.FinishJob(recID, out, string(status), msg, d); err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("не удалось обновить историю")
		}
	}

	events <- Event{
		Kind:       EventFinished,
		Path:       path,
		Success:    status == StatusCompleted,
		Status:     status,
		Message:    msg,
		OutputPath: out,
	}
}

func (r *Runner) addSizes(src, dst string) {
	in, err := os.Stat(src)
	if err != nil {
		return
	}
	out, err := os.Stat(dst)
	if err != nil {
		return
	}

	r.mu.Lock()
	r.stats.InputBytes += in.Size()
	r.stats.OutputBytes += out.Size()
	r.mu.Unlock()
}

/*
Возможные расширения:
- Параллельное выполнение для задач разных категорий
- Повтор задач со статусом failed
- Таймаут на задачу
*/
