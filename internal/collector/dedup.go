package collector

// Deduplicator remembers which repository identifiers have been seen.
// It is not safe for concurrent use; the collector fetches sequentially.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit registers id and reports true the first time it is seen.
func (d *Deduplicator) Admit(id string) bool {
	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

// Len is the number of distinct identifiers admitted.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
