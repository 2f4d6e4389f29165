package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ErrUnsupportedBank is returned for a bank name with no registered parser.
var ErrUnsupportedBank = errors.New("unsupported bank name")

// Parser converts one bank's statement export into raw rows. Rows keep the
// bank's own date and amount text; amounts must already be inflow-positive.
type Parser interface {
	Parse(r io.Reader) ([]model.RawRow, error)
	Bank() string
}

// Registry holds parsers keyed by bank name.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate bank name.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Bank())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser for bank: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for bank, or nil.
func (r *Registry) Get(bank string) Parser {
	return r.parsers[strings.ToLower(strings.TrimSpace(bank))]
}

// Banks returns the registered bank names, sorted.
func (r *Registry) Banks() []string {
	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.Bank())
	}
	slices.Sort(names)
	return names
}

// ParseFile opens path and parses it with the parser registered for bank.
func (r *Registry) ParseFile(path, bank string) ([]model.RawRow, error) {
	p := r.Get(bank)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBank, bank)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement %s: %w", p.Bank(), filepath.Base(path), err)
	}
	return rows, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&BankOfAmericaParser{})
	r.Register(&WellsFargoParser{})
	r.Register(&AmericanExpressParser{})
	r.Register(&ChaseParser{})
	return r
}

// importDir is the book subdirectory for statements waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported statements.
const processedDir = "import/processed"

var statementExts = []string{".csv", ".txt"}

// Scan returns statement files in <bookRoot>/import/, sorted by name.
func Scan(bookRoot string) ([]FileInfo, error) {
	dir := filepath.Join(bookRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !slices.Contains(statementExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(bookRoot, fileName string) error {
	src := filepath.Join(bookRoot, importDir, fileName)
	dstDir := filepath.Join(bookRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
