// Package organize sorts loose files into folders named for their
// category, keeping file names collision-free.
package organize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CategoryOther is the catch-all category for unmatched extensions.
const CategoryOther = "Other"

// Category pairs a folder name with the extensions it claims.
type Category struct {
	Name       string
	Extensions []string
}

// Rules is an ordered category table. Order matters: the first category
// claiming an extension wins, and the catch-all stays last.
type Rules []Category

// DefaultRules returns the built-in category table.
func DefaultRules() Rules {
	return Rules{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico", ".heic"}},
		{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xls", ".xlsx", ".ppt", ".pptx", ".csv"}},
		{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz"}},
		{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".h", ".json", ".xml", ".yaml", ".yml"}},
		{Name: "Executables", Extensions: []string{".exe", ".msi", ".dmg", ".app", ".deb", ".rpm"}},
		{Name: CategoryOther, Extensions: nil},
	}
}

// CategoryFor returns the category claiming ext, matching case-insensitively.
func (r Rules) CategoryFor(ext string) string {
	ext = strings.ToLower(ext)
	for _, c := range r {
		for _, e := range c.Extensions {
			if e == ext {
				return c.Name
			}
		}
	}
	return CategoryOther
}

// Move describes one planned file relocation.
type Move struct {
	Source   string
	Dest     string
	Category string
}

// Plan is the ordered list of moves one pass over a directory produces.
type Plan []Move

// Stats counts applied (or planned) moves per category.
type Stats struct {
	PerCategory map[string]int
	Total       int
}

// Organizer plans and applies category moves for a directory.
type Organizer struct {
	rules  Rules
	settle time.Duration
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithRules replaces the built-in category table.
func WithRules(rules Rules) Option {
	return func(o *Organizer) {
		if len(rules) > 0 {
			o.rules = rules
		}
	}
}

// WithSettleDelay sets how long watch mode waits after a file appears
// before moving it, giving the writer time to finish.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Organizer) {
		if d > 0 {
			o.settle = d
		}
	}
}

// New creates an Organizer with the default category table.
func New(opts ...Option) *Organizer {
	o := &Organizer{
		rules:  DefaultRules(),
		settle: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rules returns the active category table.
func (o *Organizer) Rules() Rules {
	return o.rules
}

// Plan lists the moves that would organize dir. Subdirectories and
// hidden files are left alone. Planned destinations are collision-free
// against both the disk and each other.
func (o *Organizer) Plan(dir string) (Plan, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("organize %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("organize %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("organize %s: %w", dir, err)
	}

	taken := make(map[string]bool)
	var plan Plan
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		category := o.rules.CategoryFor(filepath.Ext(entry.Name()))
		dest := uniqueDest(filepath.Join(dir, category, entry.Name()), taken)
		taken[dest] = true
		plan = append(plan, Move{
			Source:   filepath.Join(dir, entry.Name()),
			Dest:     dest,
			Category: category,
		})
	}
	return plan, nil
}

// Apply executes a plan. Category folders are created on demand and
// destinations are re-checked against the disk, so a plan stays safe to
// apply even if the directory changed since planning. Failed moves are
// collected rather than aborting the pass.
func (o *Organizer) Apply(plan Plan) (Stats, error) {
	stats := Stats{PerCategory: make(map[string]int)}
	var errs []error
	for _, mv := range plan {
		if err := os.MkdirAll(filepath.Dir(mv.Dest), 0o755); err != nil {
			errs = append(errs, fmt.Errorf("organize %s: %w", mv.Source, err))
			continue
		}
		dest := uniqueDest(mv.Dest, nil)
		if err := os.Rename(mv.Source, dest); err != nil {
			errs = append(errs, fmt.Errorf("organize %s: %w", mv.Source, err))
			continue
		}
		stats.PerCategory[mv.Category]++
		stats.Total++
	}
	return stats, errors.Join(errs...)
}

// Organize plans and, unless dryRun is set, applies in one call.
func (o *Organizer) Organize(dir string, dryRun bool) (Plan, Stats, error) {
	plan, err := o.Plan(dir)
	if err != nil {
		return nil, Stats{}, err
	}
	if dryRun {
		return plan, planStats(plan), nil
	}
	stats, err := o.Apply(plan)
	return plan, stats, err
}

func planStats(plan Plan) Stats {
	stats := Stats{PerCategory: make(map[string]int)}
	for _, mv := range plan {
		stats.PerCategory[mv.Category]++
		stats.Total++
	}
	return stats
}

// uniqueDest returns dest if free, otherwise the first name_1.ext,
// name_2.ext, ... candidate not on disk and not in taken.
func uniqueDest(dest string, taken map[string]bool) string {
	if !fileExists(dest) && !taken[dest] {
		return dest
	}
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !fileExists(candidate) && !taken[candidate] {
			return candidate
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
