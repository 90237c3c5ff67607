package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads per-framework prompt packs from user-editable files
// on disk. Each framework is a directory holding prompts.yaml and
// taxonomy.yaml.
//
// The store uses lazy initialisation - default packs are only written on
// first access, not in the constructor. This makes testing easier and
// avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]*promptPack
	initOnce  sync.Once
	initErr   error
}

// promptPack is one framework's loaded configuration.
type promptPack struct {
	overarching string
	sections    []domain.SectionDirective
	taxonomy    *domain.Taxonomy
}

// promptsFile is the on-disk YAML shape of prompts.yaml.
type promptsFile struct {
	Overarching string        `yaml:"overarching"`
	Sections    []sectionItem `yaml:"sections"`
}

// sectionItem mirrors domain.SectionDirective with Enabled defaulting to
// true when the key is absent.
type sectionItem struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Position int    `yaml:"position"`
	Prompt   string `yaml:"default_prompt"`
	Enabled  *bool  `yaml:"enabled"`
}

// seededFrameworks are the packs written on first use.
var seededFrameworks = []string{"osfi_b13", "osfi_b10", "occ", "seal"}

// defaultSections is the generic section outline seeded for every
// framework that has no pack of its own yet.
var defaultSections = []sectionItem{
	{ID: "exec_summary", Name: "Executive Summary", Position: 1,
		Prompt: "Write a concise executive summary tailored to the client and scope."},
	{ID: "governance", Name: "Governance and Risk Management", Position: 2,
		Prompt: "Summarize governance, leadership accountability, risk appetite, and oversight."},
	{ID: "tech_ops", Name: "Technology Operations and Resilience", Position: 3,
		Prompt: "Summarize IT operations, change/patch, asset, continuity, DR/BCP posture."},
	{ID: "cyber", Name: "Cyber Security", Position: 4,
		Prompt: "Summarize threat detection, defense controls, data protection, and monitoring."},
	{ID: "third_party", Name: "Third-Party and Outsourcing Oversight", Position: 5,
		Prompt: "Summarize third-party risk management and contractual controls."},
	{ID: "maturity", Name: "Maturity Assessment and Gap Summary", Position: 6,
		Prompt: "Provide maturity scores, key gaps, and benchmark context."},
	{ID: "recs", Name: "Recommendations", Position: 7,
		Prompt: "Prioritized recommendations with effort/impact and timeline."},
	{ID: "conclusion", Name: "Conclusion", Position: 8,
		Prompt: "Close with overall compliance posture and next steps."},
}

// defaultOverarching is the seeded operator guidance.
const defaultOverarching = "Write in a formal audit register. Ground every claim in the " +
	"retrieved evidence and cite sources as [document p.N]. Flag gaps explicitly."

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.reportgen/frameworks/.
//
// The constructor does not perform any I/O - directory creation and
// default pack writes happen lazily on first access.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".reportgen", "frameworks")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]*promptPack),
	}, nil
}

// Dir returns the prompt pack directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Sections returns the framework's section directives ordered by
// ascending position.
func (s *PromptStore) Sections(framework string) ([]domain.SectionDirective, error) {
	pack, err := s.load(framework)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SectionDirective, len(pack.sections))
	copy(out, pack.sections)
	return out, nil
}

// Overarching returns the framework's operator guidance text.
func (s *PromptStore) Overarching(framework string) (string, error) {
	pack, err := s.load(framework)
	if err != nil {
		return "", err
	}
	return pack.overarching, nil
}

// Taxonomy returns the framework's requirement catalogue.
func (s *PromptStore) Taxonomy(framework string) (*domain.Taxonomy, error) {
	pack, err := s.load(framework)
	if err != nil {
		return nil, err
	}
	return pack.taxonomy, nil
}

// Frameworks lists the configured framework keys, sorted.
func (s *PromptStore) Frameworks() ([]string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return nil, s.initErr
	}

	entries, err := os.ReadDir(s.promptDir)
	if err != nil {
		return nil, fmt.Errorf("read framework directory: %w", err)
	}

	var frameworks []string
	for _, entry := range entries {
		if entry.IsDir() {
			frameworks = append(frameworks, entry.Name())
		}
	}
	sort.Strings(frameworks)
	return frameworks, nil
}

// Reload clears the pack cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]*promptPack)
	s.mu.Unlock()
}

// load returns the cached pack for a framework, reading it from disk on
// first use.
func (s *PromptStore) load(framework string) (*promptPack, error) {
	if framework == "" {
		return nil, fmt.Errorf("%w: empty framework key", domain.ErrInvalidInput)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return nil, fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if pack, ok := s.cache[framework]; ok {
		s.mu.RUnlock()
		return pack, nil
	}
	s.mu.RUnlock()

	pack, err := s.loadFromDisk(framework)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[framework]; ok {
		pack = cached
	} else {
		s.cache[framework] = pack
	}
	s.mu.Unlock()

	return pack, nil
}

// loadFromDisk reads and normalizes one framework's pack.
func (s *PromptStore) loadFromDisk(framework string) (*promptPack, error) {
	dir := filepath.Join(s.promptDir, framework)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownFramework, framework)
	}

	pack := &promptPack{taxonomy: &domain.Taxonomy{}}

	data, err := os.ReadFile(filepath.Join(dir, "prompts.yaml"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read prompts for %s: %w", framework, err)
	}
	if err == nil {
		var raw promptsFile
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse prompts for %s: %w", framework, err)
		}
		pack.overarching = strings.TrimSpace(raw.Overarching)
		pack.sections = normalizeSections(raw.Sections)
	}

	taxData, err := os.ReadFile(filepath.Join(dir, "taxonomy.yaml"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read taxonomy for %s: %w", framework, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(taxData, pack.taxonomy); err != nil {
			return nil, fmt.Errorf("parse taxonomy for %s: %w", framework, err)
		}
	}

	return pack, nil
}

// normalizeSections fills defaulted fields and sorts by position.
func normalizeSections(items []sectionItem) []domain.SectionDirective {
	sections := make([]domain.SectionDirective, 0, len(items))
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = strings.ReplaceAll(strings.ToLower(item.Name), " ", "_")
		}
		prompt := item.Prompt
		if prompt == "" {
			prompt = fmt.Sprintf("Write the %q section.", item.Name)
		}
		enabled := true
		if item.Enabled != nil {
			enabled = *item.Enabled
		}
		sections = append(sections, domain.SectionDirective{
			ID:       id,
			Name:     item.Name,
			Position: item.Position,
			Prompt:   prompt,
			Enabled:  enabled,
		})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})
	return sections
}

// initialise creates the pack directory and seeds default packs.
// Called once on first access.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create framework directory: %w", err)
		return
	}

	defaults, err := yaml.Marshal(promptsFile{
		Overarching: defaultOverarching,
		Sections:    defaultSections,
	})
	if err != nil {
		s.initErr = fmt.Errorf("render default pack: %w", err)
		return
	}

	for _, framework := range seededFrameworks {
		dir := filepath.Join(s.promptDir, framework)
		if err := os.MkdirAll(dir, 0700); err != nil {
			s.initErr = fmt.Errorf("create pack for %s: %w", framework, err)
			return
		}

		path := filepath.Join(dir, "prompts.yaml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, defaults, 0600); err != nil {
				s.initErr = fmt.Errorf("seed pack for %s: %w", framework, err)
				return
			}
		}
	}
}
