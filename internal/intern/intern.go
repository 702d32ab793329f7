// Package intern deduplicates identifier and string text into small,
// comparable handles, and defines the byte-offset spans used throughout
// the compiler pipeline.
package intern

import "sync"

// ID is a stable handle for an interned string. The zero value is never
// produced by Interner.Intern; it is reserved to mean "absent".
type ID uint32

// Span is a half-open byte range [Start, End) over a source buffer.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 { return s.End - s.Start }

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool { return s.Start == s.End }

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Interner is a process-wide deduplicating string table. Handles are
// Copy, hashable, and print back as the original text via Lookup.
type Interner struct {
	mu     sync.RWMutex
	byText map[string]ID
	byID   []string // index 0 unused, so ID 0 stays reserved
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{
		byText: make(map[string]ID),
		byID:   []string{""}, // index 0 is the reserved empty slot
	}
}

// Intern returns the stable handle for text, allocating a new one if this
// is the first time this exact text has been seen.
func (in *Interner) Intern(text string) ID {
	in.mu.RLock()
	if id, ok := in.byText[text]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check: another goroutine may have interned it while we waited
	// for the write lock.
	if id, ok := in.byText[text]; ok {
		return id
	}
	id := ID(len(in.byID))
	in.byID = append(in.byID, text)
	in.byText[text] = id
	return id
}

// Lookup returns the original text for id. It panics if id was never
// produced by Intern on this interner, since that indicates a handle
// crossed between two interner instances.
func (in *Interner) Lookup(id ID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.byID) {
		panic("intern: handle from a different interner")
	}
	return in.byID[id]
}

// global is the process-wide interner used by default across the
// pipeline. Tests that need isolation construct their own via New.
var global = New()

// Global returns the process-wide interner.
func Global() *Interner { return global }
