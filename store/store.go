// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store keeps the records behind dynamic QR codes: the data a
// code's identifier currently stands for and its label.
//
// Records live in process memory.  Identifiers are allocated from 1 up
// and never reused; records are never deleted.
package store // import "github.com/unixdj/dynqr/store"

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrInvalidInput = errors.New("store: no data provided")
	ErrNotFound     = errors.New("store: record not found")
)

// A Record is a snapshot of the data behind an identifier.
type Record struct {
	ID      int       `json:"id"`
	Data    string    `json:"data"`
	Label   string    `json:"label"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// A Store is a collection of records safe for concurrent use.
// The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex
	last int
	recs map[int]*Record
	now  func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{recs: make(map[int]*Record), now: time.Now}
}

// Create stores data and label under a new identifier and returns it.
func (s *Store) Create(data, label string) (int, error) {
	if data == "" {
		return 0, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	t := s.now()
	s.recs[s.last] = &Record{ID: s.last, Data: data, Label: label,
		Created: t, Updated: t}
	return s.last, nil
}

// Get returns the record with the given identifier.
func (s *Store) Get(id int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return *r, nil
}

// Update replaces the data and label of an existing record and returns
// the new record.  Empty data is rejected before the record is looked
// up.
func (s *Store) Update(id int, data, label string) (Record, error) {
	if data == "" {
		return Record{}, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	r.Data, r.Label, r.Updated = data, label, s.now()
	return *r, nil
}

// List returns all records ordered by identifier.
func (s *Store) List() []Record {
	s.mu.Lock()
	l := make([]Record, 0, len(s.recs))
	for _, r := range s.recs {
		l = append(l, *r)
	}
	s.mu.Unlock()
	sort.Slice(l, func(i, j int) bool { return l[i].ID < l[j].ID })
	return l
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}
