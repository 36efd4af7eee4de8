package reconcile

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"refbuild/internal/logging"
	"refbuild/internal/services"
)

// GTFStats summarises a GTF filtering pass.
type GTFStats struct {
	Headers  int
	Features int
	Kept     int
}

// FilterGTF drops "#" header lines and keeps only features whose seqname
// (first column) is in set.
func FilterGTF(ctx context.Context, r io.Reader, w io.Writer, set Membership, logger *slog.Logger) (GTFStats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var stats GTFStats
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
		if line[0] == '#' {
			stats.Headers++
			continue
		}
		stats.Features++
		seqname, _ := field(line, '\t', 0)
		if !set.Contains(string(seqname)) {
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
		return stats, services.Wrap(services.ErrMalformedReference, "annotation", "filter gtf", "read features", err)
	}
	if err := out.Flush(); err != nil {
		return stats, err
	}
	logger.Debug("gtf filtered",
		logging.Int("headers", stats.Headers),
		logging.Int("features", stats.Features),
		logging.Int("kept", stats.Kept),
	)
	return stats, nil
}
