package registry

// catalog is an insertion-ordered map. It is not safe for concurrent use;
// the Registry lock guards every catalog.
type catalog[T any] struct {
	items map[string]T
	order []string
}

func newCatalog[T any]() *catalog[T] {
	return &catalog[T]{items: make(map[string]T)}
}

func (c *catalog[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *catalog[T]) has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// put inserts or replaces. Replacing keeps the original position.
func (c *catalog[T]) put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *catalog[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *catalog[T]) len() int {
	return len(c.items)
}

// each visits entries in insertion order
func (c *catalog[T]) each(fn func(id string, v T)) {
	for _, id := range c.order {
		fn(id, c.items[id])
	}
}
