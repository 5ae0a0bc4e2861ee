package preset

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/fileconverter/internal/filetype"
)

// defaultDocument - встроенный документ пресетов.
//
//go:embed presets.yaml
var defaultDocument []byte

// Catalog - каталог пресетов, загружаемый из документа.
// Загрузка выполняется один раз: явно через Load или лениво
// при первом обращении к PresetsFor / Lookup.
type Catalog struct {
	path   string
	logger zerolog.Logger

	mu        sync.RWMutex
	sets      map[filetype.Category]*Set
	order     []filetype.Category
	loaded    bool
	attempted bool
}

// NewCatalog создаёт каталог. Пустой path означает встроенный документ.
func NewCatalog(path string, logger zerolog.Logger) *Catalog {
	return &Catalog{
		path:   path,
		logger: logger,
		sets:   make(map[filetype.Category]*Set),
	}
}

// Source возвращает путь к документу или "builtin".
func (c *Catalog) Source() string {
	if c.path == "" {
		return "builtin"
	}
	return c.path
}

// Load читает и разбирает документ пресетов.
// После успешной загрузки повторные вызовы ничего не делают.
// При ошибке каталог остаётся пустым.
func (c *Catalog) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}
	c.attempted = true

	data, err := c.read()
	if err != nil {
		c.reset()
		c.logger.Error().Err(err).Str("source", c.Source()).Msg("не удалось прочитать пресеты")
		return fmt.Errorf("не удалось прочитать пресеты: %w", err)
	}

	sets, order, err := parseDocument(data, c.logger)
	if err != nil {
		c.reset()
		c.logger.Error().Err(err).Str("source", c.Source()).Msg("не удалось разобрать пресеты")
		return fmt.Errorf("не удалось разобрать пресеты %s: %w", c.Source(), err)
	}

	c.sets = sets
	c.order = order
	c.loaded = true

	c.logger.Debug().
		Str("source", c.Source()).
		Int("categories", len(order)).
		Msg("пресеты загружены")

	return nil
}

// PresetsFor возвращает набор пресетов категории.
// Для неизвестной категории или пустого каталога возвращается пустой набор.
func (c *Catalog) PresetsFor(cat filetype.Category) *Set {
	c.ensureLoaded()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.sets[cat]; ok {
		return s
	}
	return newSet()
}

// Lookup возвращает пресет по категории и имени.
func (c *Catalog) Lookup(cat filetype.Category, name string) (Preset, error) {
	p, ok := c.PresetsFor(cat).Get(name)
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s/%s", ErrPresetNotFound, cat, name)
	}
	return p, nil
}

// Resolve возвращает пресет по имени, а при пустом имени - первый пресет категории.
func (c *Catalog) Resolve(cat filetype.Category, name string) (Preset, error) {
	if name != "" {
		return c.Lookup(cat, name)
	}
	p, ok := c.PresetsFor(cat).Default()
	if !ok {
		return Preset{}, fmt.Errorf("%w: нет пресетов для %s", ErrPresetNotFound, cat)
	}
	return p, nil
}

// Categories возвращает категории в порядке документа.
func (c *Catalog) Categories() []filetype.Category {
	c.ensureLoaded()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]filetype.Category, len(c.order))
	copy(out, c.order)
	return out
}

// ensureLoaded выполняет ленивую загрузку, если её ещё не пытались сделать.
func (c *Catalog) ensureLoaded() {
	c.mu.RLock()
	attempted := c.attempted
	c.mu.RUnlock()

	if !attempted {
		_ = c.Load()
	}
}

func (c *Catalog) read() ([]byte, error) {
	if c.path == "" {
		return defaultDocument, nil
	}
	return os.ReadFile(c.path)
}

func (c *Catalog) reset() {
	c.sets = make(map[filetype.Category]*Set)
	c.order = nil
}

// rawPreset - запись пресета в документе.
type rawPreset struct {
	Action  string `yaml:"action"`
	Format  string `yaml:"format"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Quality string `yaml:"quality"`
}

// parseDocument разбирает документ вида {CATEGORY: {name: {action: ...}}}.
// Порядок ключей сохраняется через yaml.Node. Некорректные записи
// пропускаются с предупреждением.
func parseDocument(data []byte, logger zerolog.Logger) (map[filetype.Category]*Set, []filetype.Category, error) {
	sets := make(map[filetype.Category]*Set)
	var order []filetype.Category

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}

	// Пустой документ - пустой каталог.
	if root.Kind == 0 || len(root.Content) == 0 {
		return sets, order, nil
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("корень документа должен быть объектом (строка %d)", doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]

		cat := filetype.ParseCategory(key.Value)
		if cat == filetype.Unknown {
			logger.Warn().Str("category", key.Value).Int("line", key.Line).Msg("неизвестная категория пресетов, пропуск")
			continue
		}
		if val.Kind != yaml.MappingNode {
			logger.Warn().Str("category", key.Value).Int("line", val.Line).Msg("категория должна быть объектом, пропуск")
			continue
		}

		set, ok := sets[cat]
		if !ok {
			set = newSet()
			sets[cat] = set
			order = append(order, cat)
		}

		for j := 0; j+1 < len(val.Content); j += 2 {
			nameNode, body := val.Content[j], val.Content[j+1]

			var raw rawPreset
			if err := body.Decode(&raw); err != nil {
				logger.Warn().Err(err).Str("preset", nameNode.Value).Msg("некорректный пресет, пропуск")
				continue
			}

			p := Preset{
				Name:    nameNode.Value,
				Action:  Action(raw.Action),
				Format:  normalizeFormat(raw.Format),
				Width:   raw.Width,
				Height:  raw.Height,
				Quality: raw.Quality,
			}
			if err := p.Validate(); err != nil {
				logger.Warn().Err(err).Str("preset", p.Name).Msg("некорректный пресет, пропуск")
				continue
			}

			set.add(p)
		}
	}

	return sets, order, nil
}
