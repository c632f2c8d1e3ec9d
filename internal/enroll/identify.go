// Package enroll implements the interactive enrollment flow: identify the
// user against the registry, then capture face samples from the camera.
package enroll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"strings"

	"github.com/kozaktomas/facereg/internal/constants"
	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/registry"
)

var (
	// ErrInvalidID is returned when the entered ID is not a positive integer.
	ErrInvalidID = errors.New("ID must be a positive integer")
	// ErrEmptyName is returned when a new user enters a blank name.
	ErrEmptyName = errors.New("name must not be empty")
)

// Identity is the result of the identify step.
type Identity struct {
	ID        int
	Name      string
	Returning bool
}

// OpenRegistry loads the working registry strictly. A missing file is
// replaced by a header-only one.
func OpenRegistry(path string) (*registry.Registry, error) {
	reg, err := registry.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := reg.Save(path); err != nil {
			return nil, err
		}
		return reg, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// readLine returns the next input line without its line ending.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", io.ErrUnexpectedEOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Identify asks for an ID and, for new users, a name. New users get a sample
// directory and a registry record, and the registry is saved to every path
// in registryPaths.
func Identify(in *bufio.Reader, out io.Writer, reg *registry.Registry, store *facesample.Store, registryPaths ...string) (Identity, error) {
	fmt.Fprint(out, "Welcome!\n\nPlease put in your ID.\n")
	fmt.Fprintf(out, "If this is your first time, choose a random ID between %d-%d\n", constants.MinID, constants.MaxSuggestedID)
	fmt.Fprint(out, "ID: ")

	line, err := readLine(in)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read ID: %w", err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || id < constants.MinID {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidID, line)
	}

	if rec, ok := reg.Find(id); ok {
		fmt.Fprintf(out, "Welcome Back %s!!\n", rec.Name)
		return Identity{ID: rec.ID, Name: rec.Name, Returning: true}, nil
	}

	fmt.Fprint(out, "Please Enter your name: ")
	line, err = readLine(in)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read name: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return Identity{}, ErrEmptyName
	}
	if strings.Contains(name, ",") {
		log.Printf("WARNING: name %q contains a comma; tools splitting the registry on every comma will misread it", name)
	}

	if err := store.CreateIdentityDir(id); err != nil {
		return Identity{}, err
	}

	reg.Append(registry.Record{ID: id, Name: name})
	if err := reg.SaveAll(registryPaths...); err != nil {
		return Identity{}, fmt.Errorf("failed to save registry: %w", err)
	}
	return Identity{ID: id, Name: name}, nil
}
