package ddbg

import (
	"path/filepath"
	"runtime"
	"strconv"
)

// formatLine builds the one line a debug call emits:
//
//	[<file>:<line>] <message>\n
//
// The message arrives already rendered; this only prefixes the source
// location and terminates the line.
func formatLine(file string, line int, message string) []byte {
	b := make([]byte, 0, len(file)+len(message)+16)
	b = append(b, '[')
	b = append(b, file...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(line), 10)
	b = append(b, ']', ' ')
	b = append(b, message...)
	b = append(b, '\n')
	return b
}

// caller returns the base file name and line of the caller skip+1 frames up.
// The full path would differ between build machines, so only the base name is
// tagged, matching what log.Lshortfile does.
func caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???", 0
	}
	return filepath.Base(file), line
}
