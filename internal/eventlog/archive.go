package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// RotateThreshold is the line count past which Rotate will archive the
// active segment. It is a knob, not a read-path concern: ReadSince and
// Append only ever touch the active segment.
const RotateThreshold = 50_000

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
)

func getEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil)
	})
	return encoder
}

// lineCount returns the number of newline-terminated lines in path.
func lineCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n, nil
}

// Rotate archives threadID's active journal segment to a
// zstd-compressed file and truncates the active segment to empty,
// if it has grown past RotateThreshold lines. The archived segment
// plays no part in ReadSince or Append; it exists purely for
// out-of-band audit and disk-usage control on long-lived threads.
func (s *Store) Rotate(threadID string) error {
	lock := s.lockFor(threadID)
	lock.Lock()
	defer lock.Unlock()

	active := s.journalPath(threadID)
	n, err := lineCount(active)
	if err != nil {
		return fmt.Errorf("count lines: %w", err)
	}
	if n <= RotateThreshold {
		return nil
	}

	data, err := os.ReadFile(active)
	if err != nil {
		return fmt.Errorf("read active segment: %w", err)
	}

	segment := nextSegmentPath(s.dir, threadID)
	compressed := getEncoder().EncodeAll(data, nil)
	if err := os.WriteFile(segment, compressed, 0o640); err != nil {
		return fmt.Errorf("write archive segment: %w", err)
	}

	if err := os.WriteFile(active, nil, 0o640); err != nil {
		return fmt.Errorf("truncate active segment: %w", err)
	}
	return nil
}

func nextSegmentPath(dataDir, threadID string) string {
	dir := filepath.Join(dataDir, "threads")
	n := 1
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s.%d.jsonl.zst", threadID, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		n++
	}
}

// DecompressSegment reads and decompresses an archived segment,
// returning its raw JSONL bytes. Used only by offline tooling/tests;
// never on the hot read/append path.
func DecompressSegment(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.DecodeAll(data, nil)
}
