package main

// snapshot.go persists fetched stats snapshots to disk. Writes go
// through natefinch/atomic so a watcher tailing the save path (or a
// crash mid-write) never observes a half-written JSON file — the same
// rename-into-place guarantee the teacher's config writers rely on.
//
// © 2025 linecache authors. MIT License.

import (
	"bytes"
	"encoding/json"

	atomicfile "github.com/natefinch/atomic"
)

// saveSnapshot marshals data as indented JSON and atomically replaces
// path's contents.
func saveSnapshot(path string, data any) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, bytes.NewReader(buf))
}
