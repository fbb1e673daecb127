package timeline

// DefaultPageSize is the number of entries revealed per page.
const DefaultPageSize = 20

// Cursor is a growing window over a sorted entry list: the first
// pageSize*pageCount entries are visible.
type Cursor struct {
	pageSize  int
	pageCount int
	// nearEnd remembers the last sentinel signal for edge detection.
	nearEnd bool
}

// NewCursor returns a cursor on the first page. A non-positive page size
// falls back to DefaultPageSize.
func NewCursor(pageSize int) *Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor{pageSize: pageSize, pageCount: 1}
}

// PageSize returns the fixed page size.
func (c *Cursor) PageSize() int { return c.pageSize }

// PageCount returns the number of pages revealed so far.
func (c *Cursor) PageCount() int { return c.pageCount }

func (c *Cursor) limit() int { return c.pageSize * c.pageCount }

// Visible returns the revealed prefix of sorted.
func (c *Cursor) Visible(sorted []Entry) []Entry {
	if n := c.limit(); n < len(sorted) {
		return sorted[:n]
	}
	return sorted
}

// HasMore reports whether entries remain beyond the window.
func (c *Cursor) HasMore(sorted []Entry) bool {
	return c.limit() < len(sorted)
}

// Advance reveals one more page. It is a no-op returning false when
// nothing remains.
func (c *Cursor) Advance(sorted []Entry) bool {
	if !c.HasMore(sorted) {
		return false
	}
	c.pageCount++
	return true
}

// Reset returns to the first page. Call it whenever the filter changes.
func (c *Cursor) Reset() {
	c.pageCount = 1
	c.nearEnd = false
}

// Trigger feeds the "near end of visible list" signal. It advances only on
// the rising edge of nearEnd. Signals arriving while loading are ignored, so
// the first one after loading completes can still fire.
func (c *Cursor) Trigger(sorted []Entry, nearEnd, loading bool) bool {
	if loading {
		return false
	}
	rising := nearEnd && !c.nearEnd
	c.nearEnd = nearEnd
	if !rising {
		return false
	}
	return c.Advance(sorted)
}
