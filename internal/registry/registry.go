// Package registry persists the id → name identity table shared by the
// enrollment and recognition commands.
//
// The on-disk format is a flat CSV file with an "id,name" header and one
// unquoted "id,name" line per record. Names are written verbatim: a name that
// contains a newline corrupts the file. Existing registry files depend on
// this, so no quoting is added.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Header is the first line of every registry file.
const Header = "id,name"

var logf = log.Printf

var (
	// ErrMalformedLine is matched by every *LineError.
	ErrMalformedLine = errors.New("malformed registry line")

	// ErrEmpty is returned when a registry has no usable records.
	ErrEmpty = errors.New("no valid ID-name pairs")
)

// Record is a single enrolled identity.
type Record struct {
	ID   int
	Name string
}

// LineError describes a registry line that could not be parsed.
type LineError struct {
	Line   int    // 1-based line number in the file
	Text   string // raw line content
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}

// Registry is an ordered list of identity records. Order is enrollment order.
// IDs are not required to be unique; see Append.
type Registry struct {
	records []Record
}

// New returns a registry holding the given records in order.
func New(records ...Record) *Registry {
	r := &Registry{}
	r.records = append(r.records, records...)
	return r
}

// Records returns a copy of the records in enrollment order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Find returns the first record with the given ID.
func (r *Registry) Find(id int) (Record, bool) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Append adds a record at the end of the registry. Duplicate IDs are not
// rejected; Find keeps returning the first one.
func (r *Registry) Append(rec Record) {
	r.records = append(r.records, rec)
}

// set replaces the name of the first record with rec.ID, or appends rec.
func (r *Registry) set(rec Record) {
	for i := range r.records {
		if r.records[i].ID == rec.ID {
			r.records[i].Name = rec.Name
			return
		}
	}
	r.records = append(r.records, rec)
}

// parseLine splits a registry line on its first comma.
func parseLine(n int, line string) (Record, *LineError) {
	idStr, name, ok := strings.Cut(line, ",")
	if !ok {
		return Record{}, &LineError{Line: n, Text: line, Reason: "missing comma"}
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil {
		return Record{}, &LineError{Line: n, Text: line, Reason: "invalid ID " + strconv.Quote(idStr)}
	}
	return Record{ID: id, Name: name}, nil
}

// Parse reads a registry strictly: the first line is skipped as the header
// and the first malformed line aborts the parse. No partial registry is
// returned on error.
func Parse(rd io.Reader) (*Registry, error) {
	reg := &Registry{}
	scanner := bufio.NewScanner(rd)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if n == 1 || line == "" {
			continue
		}
		rec, lerr := parseLine(n, line)
		if lerr != nil {
			return nil, lerr
		}
		reg.records = append(reg.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return reg, nil
}

// ParseLenient reads a registry line by line, skipping anything it cannot
// use. The header line is skipped wherever it appears; lines without a
// comma, non-integer IDs and empty names are returned as LineErrors. A
// repeated ID overwrites the earlier name.
func ParseLenient(rd io.Reader) (*Registry, []*LineError, error) {
	reg := &Registry{}
	var skipped []*LineError
	scanner := bufio.NewScanner(rd)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || line == Header {
			continue
		}
		rec, lerr := parseLine(n, line)
		if lerr != nil {
			skipped = append(skipped, lerr)
			continue
		}
		if rec.Name == "" {
			skipped = append(skipped, &LineError{Line: n, Text: line, Reason: fmt.Sprintf("empty name for ID %d", rec.ID)})
			continue
		}
		reg.set(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read registry: %w", err)
	}
	return reg, skipped, nil
}

// Load reads the registry at path with the strict parser. When the file does
// not exist an empty registry is returned together with an error matching
// fs.ErrNotExist.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Registry{}, fmt.Errorf("failed to open registry: %w", err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry %s: %w", path, err)
	}
	return reg, nil
}

// LoadLenient reads the registry at path with the tolerant parser and logs
// every skipped line.
func LoadLenient(path string) (*Registry, []*LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer f.Close()

	reg, skipped, err := ParseLenient(f)
	for _, s := range skipped {
		logf("WARNING: skipping registry line in %s: %v", path, s)
	}
	if err != nil {
		return nil, skipped, err
	}
	return reg, skipped, nil
}

// WriteTo writes the header and all records to w.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	n, err := bw.WriteString(Header + "\n")
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, rec := range r.records {
		n, err := fmt.Fprintf(bw, "%d,%s\n", rec.ID, rec.Name)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// Save overwrites the file at path with the full registry.
func (r *Registry) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create registry %s: %w", path, err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write registry %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close registry %s: %w", path, err)
	}
	return nil
}

// SaveAll writes the registry to every path in order, stopping at the first
// failure. The copies are independent files; nothing keeps them in sync
// beyond this call.
func (r *Registry) SaveAll(paths ...string) error {
	for _, p := range paths {
		if err := r.Save(p); err != nil {
			return err
		}
	}
	return nil
}
