package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store holds the four independent already-notified key sets. A listing
// counts as already sent when ANY of its keys is present — union, not
// intersection: one matching signal is enough evidence of recurrence.
// Entries never expire; unbounded growth is accepted.
type Store struct {
	ids      map[string]struct{}
	urls     map[string]struct{}
	pathSigs map[string]struct{}
	content  map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		ids:      map[string]struct{}{},
		urls:     map[string]struct{}{},
		pathSigs: map[string]struct{}{},
		content:  map[string]struct{}{},
	}
}

// Seen reports whether any non-empty key is already recorded. Empty keys
// are never inserted, so looking them up is safely false.
func (s *Store) Seen(k Keys) bool {
	_, id := s.ids[k.ID]
	_, u := s.urls[k.CanonicalURL]
	_, p := s.pathSigs[k.PathSig]
	_, c := s.content[k.ContentSig]
	return id || u || p || c
}

// MarkSent records each non-empty key. Call only after the notification
// was confirmed delivered; marking earlier would silently lose a listing
// on a transient delivery failure.
func (s *Store) MarkSent(k Keys) {
	if k.ID != "" {
		s.ids[k.ID] = struct{}{}
	}
	if k.CanonicalURL != "" {
		s.urls[k.CanonicalURL] = struct{}{}
	}
	if k.PathSig != "" {
		s.pathSigs[k.PathSig] = struct{}{}
	}
	if k.ContentSig != "" {
		s.content[k.ContentSig] = struct{}{}
	}
}

// Size is the total number of recorded keys across all four sets.
func (s *Store) Size() int {
	return len(s.ids) + len(s.urls) + len(s.pathSigs) + len(s.content)
}

// storeFile is the on-disk shape: four named collections, each kept sorted
// so consecutive saves diff cleanly.
type storeFile struct {
	IDs               []string `json:"ids"`
	URLs              []string `json:"urls"`
	URLSignatures     []string `json:"urlSignatures"`
	ContentSignatures []string `json:"contentSignatures"`
}

// Load reads the store from path. A missing file is an empty store. The
// legacy format — a bare JSON array of signatures, as the first bot
// versions wrote — is imported into the content-signature set.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sent store: %w", err)
	}

	s := NewStore()

	var f storeFile
	if err := json.Unmarshal(b, &f); err == nil {
		fill(s.ids, f.IDs)
		fill(s.urls, f.URLs)
		fill(s.pathSigs, f.URLSignatures)
		fill(s.content, f.ContentSignatures)
		return s, nil
	}

	var legacy []string
	if err := json.Unmarshal(b, &legacy); err == nil {
		fill(s.content, legacy)
		return s, nil
	}

	return nil, fmt.Errorf("sent store %s: unrecognized format", path)
}

// JSON renders the store in its on-disk shape, every set sorted.
func (s *Store) JSON() ([]byte, error) {
	f := storeFile{
		IDs:               sortedKeys(s.ids),
		URLs:              sortedKeys(s.urls),
		URLSignatures:     sortedKeys(s.pathSigs),
		ContentSignatures: sortedKeys(s.content),
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Save writes the store atomically (tmp + rename).
func (s *Store) Save(path string) error {
	b, err := s.JSON()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func fill(m map[string]struct{}, keys []string) {
	for _, k := range keys {
		if k != "" {
			m[k] = struct{}{}
		}
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
