// Package assets holds raw asset bytes by logical path.
package assets

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/binzume/gltfmodel/model"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotFound  = errors.New("assets: not found")
	ErrNoDecoder = errors.New("assets: no image decoder")
)

type ImageDecoder interface {
	Decode(name string, data []byte) (*model.Texture2D, error)
}

// Store is safe for concurrent use. Keys are slash separated, cleaned and
// NFC normalized, so "a/./b.png" and "a/b.png" name the same entry.
type Store struct {
	mu      sync.Mutex
	entries map[string][]byte
	decoder ImageDecoder
}

// NewStore returns an empty store. decoder may be nil, in which case
// Deserialize fails with ErrNoDecoder.
func NewStore(decoder ImageDecoder) *Store {
	return &Store{entries: map[string][]byte{}, decoder: decoder}
}

func Key(p string) string {
	if IsDataURL(p) {
		return p
	}
	p = norm.NFC.String(filepath.ToSlash(p))
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (s *Store) Insert(p string, data []byte) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key(p)] = data
	return s
}

// Get returns the bytes without consuming them. Data-URLs are decoded.
func (s *Store) Get(p string) ([]byte, error) {
	if IsDataURL(p) {
		return DecodeDataURL(p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[Key(p)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, p)
	}
	return data, nil
}

// Remove returns the bytes and drops the entry.
func (s *Store) Remove(p string) ([]byte, error) {
	if IsDataURL(p) {
		return DecodeDataURL(p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := Key(p)
	data, ok := s.entries[k]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, p)
	}
	delete(s.entries, k)
	return data, nil
}

// Deserialize decodes the image at p. The entry stays in the store so that
// textures shared by several materials resolve more than once.
func (s *Store) Deserialize(p string) (*model.Texture2D, error) {
	if s.decoder == nil {
		return nil, errors.Wrap(ErrNoDecoder, p)
	}
	data, err := s.Get(p)
	if err != nil {
		return nil, err
	}
	return s.decoder.Decode(p, data)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadFile reads a file from disk and inserts it under its own path.
func (s *Store) LoadFile(p string) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return errors.Wrap(err, "assets: load")
	}
	s.Insert(p, data)
	return nil
}

// Load reads every path, skipping data-URLs which need no fetch.
func Load(decoder ImageDecoder, paths ...string) (*Store, error) {
	s := NewStore(decoder)
	for _, p := range paths {
		if IsDataURL(p) {
			continue
		}
		if err := s.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}
