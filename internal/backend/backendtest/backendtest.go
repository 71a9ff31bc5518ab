// Package backendtest provides in-memory implementations of the backend
// contracts with failure injection, for handler and service tests.
package backendtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/models"
)

// New returns a client wired to fresh in-memory services
func New() (*backend.Client, *Auth, *Store, *Tables) {
	auth := NewAuth()
	store := NewStore()
	tables := NewTables()
	return &backend.Client{Auth: auth, Storage: store, Tables: tables}, auth, store, tables
}

// Auth accepts a fixed set of credentials
type Auth struct {
	mu        sync.Mutex
	users     map[string]string
	active    map[string]*models.User
	SignInErr error
	// DropSessions makes GetSession report no session even for valid tokens
	DropSessions bool
	seq          int
}

func NewAuth() *Auth {
	return &Auth{users: map[string]string{}, active: map[string]*models.User{}}
}

// AddUser registers credentials
func (a *Auth) AddUser(email, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[email] = password
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.SignInErr != nil {
		return nil, a.SignInErr
	}
	if pw, ok := a.users[email]; !ok || pw != password {
		return nil, errors.New("Invalid login credentials")
	}
	a.seq++
	token := "token-" + strconv.Itoa(a.seq)
	user := &models.User{ID: "user-" + email, Email: email}
	a.active[token] = user
	return &models.Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		User:         user,
		CreatedAt:    time.Now(),
	}, nil
}

func (a *Auth) GetSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if session == nil || a.DropSessions {
		return nil, nil
	}
	user, ok := a.active[session.AccessToken]
	if !ok {
		return nil, nil
	}
	out := *session
	out.User = user
	return &out, nil
}

func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.active, accessToken)
	return nil
}

// Store keeps uploaded objects in memory
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	// FailBucket makes every upload into that bucket fail
	FailBucket string
	RemoveErr  error
	Removed    []string
	uploads    int
}

func NewStore() *Store {
	return &Store{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *Store) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket == s.FailBucket {
		return errors.New("Bucket not found")
	}
	id := bucket + "/" + key
	if _, exists := s.objects[id]; exists {
		return errors.New("The resource already exists")
	}
	s.objects[id] = data
	s.types[id] = contentType
	s.uploads++
	return nil
}

func (s *Store) PublicURL(bucket, key string) string {
	return "https://storage.test/" + bucket + "/" + key
}

func (s *Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	for _, k := range keys {
		id := bucket + "/" + k
		delete(s.objects, id)
		s.Removed = append(s.Removed, id)
	}
	return nil
}

// Objects returns the ids (bucket/key) currently stored, sorted
func (s *Store) Objects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Object returns the stored bytes of bucket/key
func (s *Store) Object(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[id]
	return data, ok
}

// Uploads counts successful uploads
func (s *Store) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// Tables keeps rows as JSON objects per table
type Tables struct {
	mu    sync.Mutex
	rows  map[string][]map[string]any
	seq   int
	clock time.Time
	// Fail makes the named operation ("select", "insert", "update", "delete") fail
	Fail   map[string]error
	Writes int
}

func NewTables() *Tables {
	return &Tables{
		rows:  map[string][]map[string]any{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Fail:  map[string]error{},
	}
}

func (t *Tables) Select(ctx context.Context, table string, order backend.Order, dest any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Fail["select"]; err != nil {
		return err
	}
	rows := append([]map[string]any(nil), t.rows[table]...)
	if order.Field != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fmt.Sprint(rows[i][order.Field]), fmt.Sprint(rows[j][order.Field])
			if order.Ascending {
				return a < b
			}
			return a > b
		})
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return remarshal(rows, dest)
}

func (t *Tables) SelectByID(ctx context.Context, table, idField, id string, dest any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Fail["select"]; err != nil {
		return err
	}
	for _, row := range t.rows[table] {
		if fmt.Sprint(row[idField]) == id {
			return remarshal(row, dest)
		}
	}
	return backend.ErrNotFound
}

func (t *Tables) Insert(ctx context.Context, table string, row any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Fail["insert"]; err != nil {
		return err
	}
	var m map[string]any
	if err := remarshal(row, &m); err != nil {
		return err
	}
	t.seq++
	// int8 primary key, as the hosted tables use
	m["id"] = t.seq
	m["created_at"] = t.clock.Add(time.Duration(t.seq) * time.Minute).Format(time.RFC3339)
	t.rows[table] = append(t.rows[table], m)
	t.Writes++
	return nil
}

func (t *Tables) Update(ctx context.Context, table, idField, id string, row any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Fail["update"]; err != nil {
		return err
	}
	var patch map[string]any
	if err := remarshal(row, &patch); err != nil {
		return err
	}
	for _, existing := range t.rows[table] {
		if fmt.Sprint(existing[idField]) == id {
			for k, v := range patch {
				existing[k] = v
			}
		}
	}
	t.Writes++
	return nil
}

func (t *Tables) Delete(ctx context.Context, table, idField, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Fail["delete"]; err != nil {
		return err
	}
	kept := t.rows[table][:0]
	for _, row := range t.rows[table] {
		if fmt.Sprint(row[idField]) != id {
			kept = append(kept, row)
		}
	}
	t.rows[table] = kept
	return nil
}

// Count returns the number of rows in table
func (t *Tables) Count(table string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows[table])
}

func remarshal(src, dest any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(src); err != nil {
		return err
	}
	return json.NewDecoder(&buf).Decode(dest)
}
