package entities

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PersistenceError reports a failed snapshot write. The in-memory state
// has already been mutated when this is returned; memory is ahead of
// disk until the next successful write.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist books to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Book represents a book in the catalog. ID is assigned by the store and
// never changes after creation. Fields outside the fixed schema are kept
// in Extra as raw JSON so caller-supplied attributes survive a snapshot
// round-trip untouched.
type Book struct {
	ID     int
	Author string
	Title  string
	Extra  map[string]json.RawMessage
}

// reserved keys handled by the fixed fields above
const (
	keyID     = "id"
	keyAuthor = "author"
	keyTitle  = "title"
)

// MarshalJSON flattens the fixed fields and Extra into one object.
func (b Book) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b.Extra)+3)
	for k, v := range b.Extra {
		out[k] = v
	}

	id, err := json.Marshal(b.ID)
	if err != nil {
		return nil, err
	}
	author, err := json.Marshal(b.Author)
	if err != nil {
		return nil, err
	}
	title, err := json.Marshal(b.Title)
	if err != nil {
		return nil, err
	}

	out[keyID] = id
	out[keyAuthor] = author
	out[keyTitle] = title

	return json.Marshal(out)
}

// UnmarshalJSON splits an object into the fixed fields and Extra. A
// missing or null id decodes to 0, which the store treats as unassigned.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book{}

	if v, ok := raw[keyID]; ok {
		if err := json.Unmarshal(v, &b.ID); err != nil {
			return fmt.Errorf("invalid book id: %w", err)
		}
		delete(raw, keyID)
	}
	if v, ok := raw[keyAuthor]; ok {
		if err := json.Unmarshal(v, &b.Author); err != nil {
			return fmt.Errorf("invalid book author: %w", err)
		}
		delete(raw, keyAuthor)
	}
	if v, ok := raw[keyTitle]; ok {
		if err := json.Unmarshal(v, &b.Title); err != nil {
			return fmt.Errorf("invalid book title: %w", err)
		}
		delete(raw, keyTitle)
	}

	if len(raw) > 0 {
		b.Extra = raw
	}

	return nil
}

// Clone returns a deep copy. Extra maps are copied so callers cannot
// mutate stored state through a returned book.
func (b Book) Clone() Book {
	out := b
	if b.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(b.Extra))
		for k, v := range b.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}
