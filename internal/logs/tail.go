// Package logs reads the daemon's log file for the CLI: the last N
// lines on demand, with optional follow mode that streams new lines as
// maestrod appends them.
package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Options control how much of the file is read and whether the reader
// keeps following it.
type Options struct {
	// Last is how many trailing lines to emit before following. Zero
	// emits nothing and starts at the end of the file.
	Last int
	// Follow keeps reading until the context is cancelled.
	Follow bool
	// Poll is the follow-mode re-read cadence. Defaults to 250ms.
	Poll time.Duration
}

// Tail emits log lines to fn. Without Follow it returns after the
// trailing lines; with Follow it blocks until ctx is done, which it
// reports as nil since cancellation is the normal way to stop a tail.
func Tail(ctx context.Context, path string, opts Options, fn func(line string)) error {
	if fn == nil {
		return errors.New("line callback is required")
	}
	if opts.Poll <= 0 {
		opts.Poll = 250 * time.Millisecond
	}

	lines, offset, err := lastLines(path, opts.Last)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fn(line)
	}
	if !opts.Follow {
		return nil
	}

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		fresh, next, err := readFrom(path, offset)
		if err != nil {
			return err
		}
		// A shrunk file means rotation; start over from the top.
		if next < offset {
			next = 0
		}
		offset = next
		for _, line := range fresh {
			fn(line)
		}
	}
}

// lastLines returns up to limit trailing lines and the end-of-file
// offset. A missing file is an empty tail, not an error; the daemon may
// simply not have logged yet.
func lastLines(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, offset, nil
	}

	scanner := newLineScanner(file)
	ring := make([]string, limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// readFrom returns the complete lines appended after offset and the new
// offset.
func readFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := newLineScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, newOffset, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
