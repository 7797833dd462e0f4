package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/anirudhraja/pureproto/schema"
	"github.com/anirudhraja/pureproto/wkt"
)

// ErrNotFound is returned when no message or enum has the requested name.
var ErrNotFound = errors.New("registry: not found")

// Registry allows us to store the schema of the protobuf messages. We look
// this up when we need to parse or marshal a message. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	messages   map[string]*schema.Type // fully qualified name -> message
	enums      map[string]*schema.Enum // fully qualified name -> enum
	files      map[string]struct{}     // absolute paths of loaded .proto files
	protoPaths []string
	log        zerolog.Logger
}

type Option func(*Registry)

// WithLogger sets the logger used to report loaded files and types.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithProtoPaths sets the directories imports are resolved against, like
// protoc's -I flag.
func WithProtoPaths(dirs ...string) Option {
	return func(r *Registry) { r.protoPaths = append(r.protoPaths, dirs...) }
}

// NewRegistry returns a registry holding the well-known types.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		messages: make(map[string]*schema.Type),
		enums:    make(map[string]*schema.Enum),
		files:    make(map[string]struct{}),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range wkt.Types() {
		r.messages[t.Name()] = t
	}
	for _, e := range wkt.Enums() {
		r.enums[e.Name()] = e
	}
	return r
}

// Register adds a built message type under its name.
func (r *Registry) Register(t *schema.Type) error {
	if t == nil || !t.Built() {
		return fmt.Errorf("%w: register needs a built type", schema.ErrIncorrectAnnotation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.messages[t.Name()]; ok && existing != t {
		return fmt.Errorf("message %s is already registered", t.Name())
	}
	r.messages[t.Name()] = t
	return nil
}

// RegisterEnum adds an enum under its name.
func (r *Registry) RegisterEnum(e *schema.Enum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.enums[e.Name()]; ok && existing != e {
		return fmt.Errorf("enum %s is already registered", e.Name())
	}
	r.enums[e.Name()] = e
	return nil
}

// LoadSchema loads a .proto file, or every .proto file under a directory.
// A directory is also added to the import paths.
func (r *Registry) LoadSchema(protoPath string) error {
	info, err := os.Stat(protoPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	if !info.IsDir() {
		if !strings.HasSuffix(protoPath, ".proto") {
			return fmt.Errorf("file %s is not a .proto file", protoPath)
		}
		return r.LoadProto(protoPath)
	}

	var files []string
	err = filepath.WalkDir(protoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".proto") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	r.mu.Lock()
	r.protoPaths = append(r.protoPaths, protoPath)
	r.mu.Unlock()
	return r.LoadProto(files...)
}

// LoadProto parses the given .proto files and everything they import, then
// registers their messages and enums. Files are looked up as given first and
// then under the import paths. Imports of google/protobuf files resolve to
// the built-in well-known types.
func (r *Registry) LoadProto(files ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, err := r.getAllProtoInfo(files)
	if err != nil {
		return err
	}
	if len(parsed) == 0 {
		return nil
	}

	c := newCompiler(r)
	if err := c.compile(parsed); err != nil {
		return err
	}
	for _, f := range parsed {
		r.files[f.path] = struct{}{}
	}
	r.log.Debug().
		Int("files", len(parsed)).
		Int("messages", len(c.types)).
		Int("enums", len(c.enums)).
		Msg("registered proto types")
	return nil
}

// GetMessage retrieves a message definition by fully qualified name, or by
// a name that is a dotted suffix of exactly one registered name.
func (r *Registry) GetMessage(name string) (*schema.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := lookup(r.messages, name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: message %s", ErrNotFound, name)
}

// GetEnum retrieves an enum definition by name, like GetMessage.
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := lookup(r.enums, name); ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: enum %s", ErrNotFound, name)
}

// ListMessages returns all registered message names, sorted.
func (r *Registry) ListMessages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.messages)
}

// ListEnums returns all registered enum names, sorted.
func (r *Registry) ListEnums() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.enums)
}

func lookup[T any](m map[string]T, name string) (T, bool) {
	name = strings.TrimPrefix(name, ".")
	if v, ok := m[name]; ok {
		return v, true
	}
	var (
		found T
		hits  int
	)
	for fullName, v := range m {
		if strings.HasSuffix(fullName, "."+name) {
			found = v
			hits++
		}
	}
	return found, hits == 1
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
