package reconcile

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"refbuild/internal/logging"
	"refbuild/internal/services"
)

// Membership answers whether a sequence identifier is part of the assembly.
type Membership interface {
	Contains(id string) bool
}

// Stats summarises one reconciliation pass.
type Stats struct {
	Read       int
	Kept       int
	Unplaced   int
	Mismatched int
}

// Dropped reports rows removed for any reason.
func (s Stats) Dropped() int {
	return s.Read - s.Kept
}

const maxLine = 16 << 20

// FilterByPrimaryAssembly copies tab-separated rows from r to w when the
// field at column names a sequence in set. Rows with an empty chromosome are
// dropped silently. Rows too short to carry the column are logged as an
// annotation mismatch and dropped. Row order and duplicates are preserved.
func FilterByPrimaryAssembly(ctx context.Context, r io.Reader, w io.Writer, set Membership, column int, logger *slog.Logger) (Stats, error) {
	if column < 0 {
		return Stats{}, services.Wrap(services.ErrValidation, "metadata", "reconcile", fmt.Sprintf("invalid column %d", column), nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	out := bufio.NewWriter(w)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Read++

		chrom, ok := field(line, '\t', column)
		if !ok {
			stats.Mismatched++
			mismatch := services.Wrap(services.ErrAnnotationMismatch, "metadata", "reconcile",
				fmt.Sprintf("line %d has fewer than %d columns", lineNo, column+1), nil)
			logging.WarnWithContext(logger, "annotation row dropped", "annotation_mismatch",
				logging.Int("line", lineNo),
				logging.Error(mismatch),
			)
			continue
		}
		if len(chrom) == 0 {
			stats.Unplaced++
			continue
		}
		if !set.Contains(string(chrom)) {
			continue
		}
		stats.Kept++
		if _, err := out.Write(line); err != nil {
			return stats, err
		}
		if err := out.WriteByte('\n'); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, services.Wrap(services.ErrAnnotationMismatch, "metadata", "reconcile", "read rows", err)
	}
	return stats, out.Flush()
}

// field returns the index'th sep-delimited field of line without allocating.
func field(line []byte, sep byte, index int) ([]byte, bool) {
	for i := 0; i < index; i++ {
		cut := bytes.IndexByte(line, sep)
		if cut < 0 {
			return nil, false
		}
		line = line[cut+1:]
	}
	if cut := bytes.IndexByte(line, sep); cut >= 0 {
		line = line[:cut]
	}
	return bytes.TrimSuffix(line, []byte{'\r'}), true
}
