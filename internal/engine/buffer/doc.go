// Package buffer provides a thread-safe text buffer built on top of the piece
// table. It serves as the primary interface for text manipulation.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Undo and redo of every edit, with grouping
//   - Coordinate conversion between offsets and line/column positions
//   - Read-only snapshots for concurrent access
//   - Optional line ending and Unicode normalization of incoming text
//   - Revision tracking for change management
//
// All positions and lengths are counted in runes.
//
// Basic usage:
//
//	// Create a buffer with some text
//	buf, err := buffer.NewBufferFromString("Hello, World!")
//
//	// Insert text
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//
//	// Delete text
//	buf.Delete(0, 7)  // "Beautiful World!"
//
//	// Take it back
//	buf.Undo()  // "Hello, Beautiful World!"
//
//	// Get a snapshot for concurrent reading
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text()
//	    // Process text...
//	}()
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations take the read lock only
// long enough to capture the current piece tree; the tree is persistent, so
// reading it needs no lock at all. Use Snapshot() to obtain a consistent
// read-only view across several reads.
package buffer
