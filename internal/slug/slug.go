// Package slug derives URL-safe article identifiers and resolves collisions
// against the article store.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrTaken is returned by an insert func passed to Create when the slug was
// claimed between the existence probe and the insert.
var ErrTaken = errors.New("slug taken")

// ErrExhausted is returned when no free candidate was found within the
// attempt budget.
var ErrExhausted = errors.New("slug candidates exhausted")

const (
	maxLen      = 96
	maxAttempts = 1000
)

var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")

// Derive turns a title into a lowercase, hyphen-separated ASCII slug.
// Apostrophes are dropped so "Didn't" becomes "didnt"; accented letters are
// folded to their base letter. The result may be empty.
func Derive(title string) string {
	s := apostrophes.Replace(title)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	out := b.String()
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	return out
}

// Checker reports whether a slug is already used by an article.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Allocator finds the first free slug among candidate, candidate-1,
// candidate-2, ... probing one candidate at a time.
type Allocator struct {
	store Checker
}

// NewAllocator creates an Allocator backed by store.
func NewAllocator(store Checker) *Allocator {
	return &Allocator{store: store}
}

// Allocate returns the first candidate not present in the store. An empty
// candidate is replaced by a random one.
func (a *Allocator) Allocate(ctx context.Context, candidate string) (string, error) {
	s, _, err := a.allocateFrom(ctx, base(candidate), 0)
	return s, err
}

// Create allocates a slug and hands it to insert. When insert reports
// ErrTaken (a concurrent writer claimed the slug after the probe) allocation
// resumes at the next suffix. Any other insert error is returned as is.
func (a *Allocator) Create(ctx context.Context, candidate string, insert func(ctx context.Context, slug string) error) (string, error) {
	b := base(candidate)
	next := 0
	for next < maxAttempts {
		s, n, err := a.allocateFrom(ctx, b, next)
		if err != nil {
			return "", err
		}
		err = insert(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrTaken) {
			return "", err
		}
		next = n + 1
	}
	return "", ErrExhausted
}

func (a *Allocator) allocateFrom(ctx context.Context, b string, start int) (string, int, error) {
	for n := start; n < maxAttempts; n++ {
		s := Candidate(b, n)
		exists, err := a.store.SlugExists(ctx, s)
		if err != nil {
			return "", 0, fmt.Errorf("check slug %q: %w", s, err)
		}
		if !exists {
			return s, n, nil
		}
	}
	return "", 0, ErrExhausted
}

// Candidate returns the n-th candidate for base: base itself for n == 0,
// base-n otherwise.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func base(candidate string) string {
	if candidate == "" {
		return "article-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	return candidate
}
