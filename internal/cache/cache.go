// Package cache keeps finished translations keyed by the content of the
// netlist that produced them, so an unchanged netlist tree is not read
// again. Entries live in memory for the process and, when a directory is
// configured, on disk as msgpack.
package cache

import (
	"strconv"
	"sync"
)

// Payload is one cached translation.
type Payload struct {
	Schema uint16

	Top    string
	Input  string
	Output string

	// Files are the input files read, with the hash they had.
	Files      []string
	FileHashes []Digest

	Outputs     []OutputFile
	Diagnostics []Diagnostic
}

// OutputFile is one translated file.
type OutputFile struct {
	Path string
	Text string
}

// Diagnostic is the printable part of a diagnostic; spans are not cached.
type Diagnostic struct {
	Severity uint8
	Code     uint16
	Path     string
	Line     uint32
	Message  string
}

// Options are the translation settings that change the output and so take
// part in the key.
type Options struct {
	Input        string
	Output       string
	OutputPath   string
	CombinePrint bool
	Contexts     bool
	Strict       bool
	Tool         string
}

// Key derives the cache key of translating top with opts.
func Key(top string, content Digest, opts Options) Digest {
	return Combine(content, top, opts.Input, opts.Output, opts.OutputPath,
		strconv.FormatBool(opts.CombinePrint), strconv.FormatBool(opts.Contexts),
		strconv.FormatBool(opts.Strict), opts.Tool)
}

// Cache layers an in-memory map over an optional DiskCache.
type Cache struct {
	mu   sync.RWMutex
	mem  map[Digest]*Payload
	disk *DiskCache
}

func New(disk *DiskCache) *Cache {
	return &Cache{mem: make(map[Digest]*Payload), disk: disk}
}

// Lookup returns the payload for key when every file it was built from
// still has the recorded content.
func (c *Cache) Lookup(key Digest) (*Payload, bool, error) {
	c.mu.RLock()
	p, ok := c.mem[key]
	c.mu.RUnlock()
	if !ok {
		var disk Payload
		found, err := c.disk.Get(key, &disk)
		if err != nil || !found {
			return nil, false, err
		}
		p = &disk
	}
	if !Fresh(p) {
		return nil, false, nil
	}
	if !ok {
		c.mu.Lock()
		c.mem[key] = p
		c.mu.Unlock()
	}
	return p, true, nil
}

// Store records p under key in memory and on disk.
func (c *Cache) Store(key Digest, p *Payload) error {
	c.mu.Lock()
	c.mem[key] = p
	c.mu.Unlock()
	return c.disk.Put(key, p)
}

// Fresh reports whether every input file of p still hashes as recorded.
func Fresh(p *Payload) bool {
	if len(p.Files) != len(p.FileHashes) {
		return false
	}
	for i, f := range p.Files {
		d, err := HashFile(f)
		if err != nil || d != p.FileHashes[i] {
			return false
		}
	}
	return true
}
