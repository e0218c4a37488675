// Package mmapfile provides a writable, growable memory-mapped file.
//
// Unlike a read-only mapping, a File here is opened PROT_READ|PROT_WRITE /
// MAP_SHARED so writes land directly in the page cache, and it supports
// Grow, which unmaps, truncates (zero-filling the new tail) and remaps the
// file. Any slice obtained from Bytes before a Grow call must not be used
// afterwards — growth invalidates it.
package mmapfile
