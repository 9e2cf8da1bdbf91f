package db

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"yuvai/internal/models"
)

// document is the single JSON file holding every list.
type document struct {
	Users       []models.Account      `json:"users"`
	History     []models.HistoryEntry `json:"history"`
	Corrections []models.Correction   `json:"corrections"`
}

// FileStore keeps all state in one JSON document that is read and rewritten
// wholesale on every mutation. The mutex serialises read-modify-write cycles
// within this process only.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the data file if it does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save(&document{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// load reads the document. A missing or corrupt file yields an empty document.
func (s *FileStore) load() *document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("File store: failed to read %s: %v", s.path, err)
		}
		return &document{}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("File store: %s is corrupt, starting empty: %v", s.path, err)
		return &document{}
	}
	return &doc
}

func (s *FileStore) save(doc *document) error {
	if doc.Users == nil {
		doc.Users = []models.Account{}
	}
	if doc.History == nil {
		doc.History = []models.HistoryEntry{}
	}
	if doc.Corrections == nil {
		doc.Corrections = []models.Correction{}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".yuvai-db-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetAccount scans the account list for username.
func (s *FileStore) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.load().Users {
		if u.Username == username {
			acct := u
			return &acct, nil
		}
	}
	return nil, ErrAccountNotFound
}

// PutAccount appends a new account after a full scan for the username.
func (s *FileStore) PutAccount(ctx context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for _, u := range doc.Users {
		if u.Username == acct.Username {
			return ErrDuplicateUsername
		}
	}

	stampTime(&acct.CreatedAt)
	if acct.Role == "" {
		acct.Role = models.RoleUser
	}
	doc.Users = append(doc.Users, *acct)
	return s.save(doc)
}

// CountAccounts returns the number of stored accounts.
func (s *FileStore) CountAccounts(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.load().Users), nil
}

// AppendHistory records a completed analysis.
func (s *FileStore) AppendHistory(ctx context.Context, e *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stampTime(&e.CreatedAt)

	doc := s.load()
	doc.History = append(doc.History, *e)
	return s.save(doc)
}

// ListHistory returns a user's most recent analyses, newest first.
func (s *FileStore) ListHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.HistoryEntry
	for _, e := range s.load().History {
		if e.Username == username {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneHistory deletes entries created before the cutoff.
func (s *FileStore) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	kept := doc.History[:0]
	for _, e := range doc.History {
		if !e.CreatedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(doc.History) - len(kept))
	if removed == 0 {
		return 0, nil
	}
	doc.History = kept
	return removed, s.save(doc)
}

// AddCorrection stores a user-submitted correction.
func (s *FileStore) AddCorrection(ctx context.Context, c *models.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stampTime(&c.CreatedAt)

	doc := s.load()
	doc.Corrections = append(doc.Corrections, *c)
	return s.save(doc)
}

// ListCorrections returns the most recent corrections, newest first.
func (s *FileStore) ListCorrections(ctx context.Context, limit int) ([]models.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.load().Corrections
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping checks the data file's directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// Close is a no-op; the file is not held open.
func (s *FileStore) Close() error {
	return nil
}
