// Package zimpath holds the canonical-path data type shared by the
// canonicalizer, the rewriters and the entry sink.
package zimpath

import "strings"

// Path is a canonical path: host, path and (optionally) query, percent
// decoded and joined without a scheme. It is the address of an entry in
// the bundle.
type Path string

// ReservedStaticPrefix is the path prefix under which the Dynamic Rewriter
// Helper assets live. No record is ever allowed to canonicalize into it.
const ReservedStaticPrefix = "_zim_static/"

// IsReserved reports whether p falls under the reserved static prefix.
func (p Path) IsReserved() bool {
	return strings.HasPrefix(string(p), ReservedStaticPrefix)
}

func (p Path) String() string { return string(p) }

// Segments splits the path portion (before any "?") into "/"-separated
// segments, dropping the empty leading segment produced by a leading "/".
func (p Path) Segments() []string {
	pathOnly := string(p)
	if idx := strings.IndexByte(pathOnly, '?'); idx >= 0 {
		pathOnly = pathOnly[:idx]
	}
	parts := strings.Split(pathOnly, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Set is the known-path set populated during pass 1 and consulted,
// read-only, during pass 2. It is a plain in-memory set: the resource
// contract rules out a temporary-file-backed database.
type Set struct {
	paths map[Path]struct{}
}

// NewSet creates an empty known-path set.
func NewSet() *Set {
	return &Set{paths: make(map[Path]struct{})}
}

// Add records p as known.
func (s *Set) Add(p Path) {
	s.paths[p] = struct{}{}
}

// Has reports whether p was recorded by pass 1.
func (s *Set) Has(p Path) bool {
	_, ok := s.paths[p]
	return ok
}

// Len reports the number of known paths.
func (s *Set) Len() int {
	return len(s.paths)
}
