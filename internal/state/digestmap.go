package state

// Entry is one path and its recorded digest.
type Entry struct {
	Path   string
	Digest string
}

// DigestMap maps file paths to digests. Iteration follows the order in which
// paths were first set.
type DigestMap struct {
	paths   []string
	digests map[string]string
}

// NewDigestMap returns an empty map.
func NewDigestMap() *DigestMap {
	return &DigestMap{digests: make(map[string]string)}
}

// Set records digest for path, replacing any earlier value.
func (m *DigestMap) Set(path, digest string) {
	if m.digests == nil {
		m.digests = make(map[string]string)
	}
	if _, ok := m.digests[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.digests[path] = digest
}

// Get returns the digest recorded for path.
func (m *DigestMap) Get(path string) (string, bool) {
	if m == nil {
		return "", false
	}
	d, ok := m.digests[path]
	return d, ok
}

// Len returns the number of paths in the map.
func (m *DigestMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paths)
}

// Entries returns the map contents in insertion order.
func (m *DigestMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	entries := make([]Entry, 0, len(m.paths))
	for _, p := range m.paths {
		entries = append(entries, Entry{Path: p, Digest: m.digests[p]})
	}
	return entries
}

// Merge applies every entry of other on top of m.
func (m *DigestMap) Merge(other *DigestMap) {
	for _, e := range other.Entries() {
		m.Set(e.Path, e.Digest)
	}
}
