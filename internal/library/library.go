// Package library keeps the session-lifetime collection of reusable visual
// elements: saved scenes, models, garments, and locations. Storage is in
// memory only and does not survive a restart.
package library

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no element exists for the given identifier.
var ErrNotFound = errors.New("library element not found")

// Kind categorizes a saved element.
type Kind string

const (
	KindScene    Kind = "scene"
	KindModel    Kind = "model"
	KindObject   Kind = "object"
	KindLocation Kind = "location"
)

// Valid reports whether the kind is one of the known categories.
func (k Kind) Valid() bool {
	switch k {
	case KindScene, KindModel, KindObject, KindLocation:
		return true
	}
	return false
}

// Element is one saved entry. ImageURL is a data URI so saved previews stay
// self-contained.
type Element struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Library is a concurrency-safe in-memory element store.
type Library struct {
	mu       sync.RWMutex
	elements map[string]Element
}

func New() *Library {
	return &Library{elements: make(map[string]Element)}
}

// Save stores a new element and returns it with its generated identifier.
func (l *Library) Save(kind Kind, name, imageURL string) Element {
	element := Element{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.elements[element.ID] = element
	l.mu.Unlock()

	return element
}

// Get returns the element for the given identifier.
func (l *Library) Get(id string) (Element, error) {
	l.mu.RLock()
	element, ok := l.elements[id]
	l.mu.RUnlock()
	if !ok {
		return Element{}, ErrNotFound
	}
	return element, nil
}

// List returns all elements, newest first. An empty kind lists everything.
func (l *Library) List(kind Kind) []Element {
	l.mu.RLock()
	out := make([]Element, 0, len(l.elements))
	for _, element := range l.elements {
		if kind == "" || element.Kind == kind {
			out = append(out, element)
		}
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes the element for the given identifier.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.elements[id]; !ok {
		return ErrNotFound
	}
	delete(l.elements, id)
	return nil
}
