package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/result"
)

const (
	membersFile = "members.json"
	dirPerm     = 0o755
	filePerm    = 0o644
)

// JSONStore keeps one JSON file per record under
// <root>/<group>/<user>/<period>.json. Writes replace the whole file.
type JSONStore struct {
	root string
	opts *options
	mu   sync.RWMutex
}

// NewJSONStore returns a store rooted at dir. The directory is created on
// first write.
func NewJSONStore(dir string, opts ...Option) *JSONStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &JSONStore{root: dir, opts: o}
}

func checkKey(parts ...string) error {
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, p)
		}
	}
	return nil
}

// writeFile replaces path atomically by renaming a sibling temp file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save implements Store.
func (s *JSONStore) Save(ctx context.Context, group, user string, rec result.Record) (err error) {
	start := time.Now()
	defer func() { observeWrite(start, err) }()

	if err = checkKey(group, user); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.root, group, user, strconv.Itoa(rec.Period)+".json")
	if err = writeFile(path, data); err != nil {
		return fmt.Errorf("save %s/%s/%d: %w", group, user, rec.Period, err)
	}
	return nil
}

func (s *JSONStore) fetch(_ context.Context, group, user string, p int) (*result.Record, error) {
	data, err := os.ReadFile(filepath.Join(s.root, group, user, strconv.Itoa(p)+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s/%d: %w", group, user, p, err)
	}
	var rec result.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s/%d: %w", group, user, p, err)
	}
	return &rec, nil
}

// Load implements Store.
func (s *JSONStore) Load(ctx context.Context, group string, users []string, periods []int) ([]result.UserResults, error) {
	if err := checkKey(group); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := checkKey(u); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return assemble(ctx, s, s.opts, s.fetch, group, users, periods)
}

// Users implements Store. Must be safe to call with s.mu held for reading.
func (s *JSONStore) Users(_ context.Context, group string) ([]string, error) {
	if err := checkKey(group); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, group))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list group %s: %w", group, err)
	}
	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			users = append(users, e.Name())
		}
	}
	sort.Strings(users)
	return users, nil
}

func (s *JSONStore) readMembers(group string) (map[string]string, error) {
	members := map[string]string{}
	data, err := os.ReadFile(filepath.Join(s.root, group, membersFile))
	if errors.Is(err, fs.ErrNotExist) {
		return members, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decode members of %s: %w", group, err)
	}
	return members, nil
}

// SaveMember implements Store.
func (s *JSONStore) SaveMember(_ context.Context, group, user, name string) error {
	if err := checkKey(group, user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.readMembers(group)
	if err != nil {
		return err
	}
	if members[user] == name {
		return nil
	}
	members[user] = name
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.root, group, membersFile), data)
}

// MemberName implements Store.
func (s *JSONStore) MemberName(_ context.Context, group, user string) (string, error) {
	if err := checkKey(group, user); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, err := s.readMembers(group)
	if err != nil {
		return "", err
	}
	name, ok := members[user]
	if !ok {
		return "", fmt.Errorf("member %s in %s: %w", user, group, ErrNotFound)
	}
	return name, nil
}

// Close implements Store. The JSON store holds no open handles.
func (s *JSONStore) Close() error { return nil }
