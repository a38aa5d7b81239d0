//go:build !linux

package camerathread

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentThreadID falls back to the goroutine id where no OS thread id is available. The loop
// goroutine is locked to its thread, so the two identify the same executor.
func currentThreadID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// The trace starts with "goroutine <id> [".
	field := bytes.Fields(bytes.TrimPrefix(buf[:n], []byte("goroutine ")))[0]
	id, err := strconv.ParseInt(string(field), 10, 64)
	if err != nil {
		return -2
	}
	return id
}
