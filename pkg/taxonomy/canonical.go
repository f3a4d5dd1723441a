package taxonomy

import "sort"

// Canonicalizer interns structurally equal items so that the first
// instance seen stands in for every later equal one. It is not safe for
// concurrent use; each worker owns its own.
type Canonicalizer struct {
	items []Item // sorted by Compare
}

// NewCanonicalizer returns an empty canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Intern returns the canonical instance equal to item. The boolean
// reports whether an equal item was already known.
func (c *Canonicalizer) Intern(item Item) (Item, bool, error) {
	var searchErr error
	i := sort.Search(len(c.items), func(i int) bool {
		cmp, err := Compare(c.items[i], item)
		if err != nil && searchErr == nil {
			searchErr = err
		}
		return cmp >= 0
	})
	if searchErr != nil {
		return nil, false, searchErr
	}
	if i < len(c.items) {
		cmp, err := Compare(c.items[i], item)
		if err != nil {
			return nil, false, err
		}
		if cmp == 0 {
			return c.items[i], true, nil
		}
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = item
	return item, false, nil
}

// Len returns the number of distinct items interned.
func (c *Canonicalizer) Len() int {
	return len(c.items)
}
