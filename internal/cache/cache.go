package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/prbot/internal/providers"
)

// Entry is one cached provider response.
type Entry struct {
	Key        string    `json:"key"`
	Provider   string    `json:"provider"`
	Content    string    `json:"content"`
	TokensUsed int       `json:"tokensUsed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Cache stores entries as one JSON file per key under a directory.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// Open creates dir if needed. A zero ttl keeps entries forever.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the live entry for key.
func (c *Cache) Get(key string) (Entry, bool) {
	entry, err := c.read(c.entryPath(key))
	if err != nil || c.expired(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Put stores entry under entry.Key, replacing any previous one.
func (c *Cache) Put(entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	path := c.entryPath(entry.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	names, err := c.entries()
	if err != nil {
		return 0, err
	}
	var removed int
	for _, name := range names {
		if err := os.Remove(filepath.Join(c.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// Stats walks the cache directory.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	names, err := c.entries()
	if err != nil {
		return stats, err
	}
	for _, name := range names {
		path := filepath.Join(c.dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		if entry, err := c.read(path); err == nil && c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Key hashes everything that determines a provider's answer.
func Key(provider, model string, req providers.Request) string {
	material, _ := json.Marshal(struct {
		Provider  string
		Model     string
		System    string
		Messages  []providers.Message
		MaxTokens int
	}{provider, model, req.System, req.Messages, req.MaxTokens})
	sum := sha256.Sum256(material)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) read(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (c *Cache) expired(entry Entry) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}

func (c *Cache) entries() ([]string, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	var names []string
	for _, e := range dirEntries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// entryPath maps a key to its file. Keys produced by Key are already hex,
// anything else is hashed first.
func (c *Cache) entryPath(key string) string {
	if _, err := hex.DecodeString(key); err != nil || len(key) != sha256.Size*2 {
		sum := sha256.Sum256([]byte(key))
		key = hex.EncodeToString(sum[:])
	}
	return filepath.Join(c.dir, key+".json")
}
