package fasta

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"refbuild/internal/services"
)

// Extension is appended to every per-sequence file name.
const Extension = ".fa"

// Split reads one FASTA stream and writes every record to <dir>/<id>.fa.
// The identifier is the header token up to the first whitespace, so
// ">1 dna:chromosome chromosome:GRCm38:1:1:195471971:1 REF" becomes ">1".
// Body lines are copied unchanged. Identifiers are returned in input order.
//
// Files are written through temporaries and renamed once complete; when
// Split fails every file it produced is removed again.
func Split(ctx context.Context, src io.Reader, dir string) (ids []string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "split", "create directory", dir, err)
	}

	s := &splitter{dir: dir, seen: make(map[string]struct{})}
	defer func() {
		if err != nil {
			s.discard()
			ids = nil
		}
	}()

	reader := bufio.NewReaderSize(src, 1<<20)
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if err := s.consume(ctx, line, lineNo); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, services.Wrap(services.ErrFilesystem, "split", "read fasta", "stream read failed", readErr)
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}
	if len(s.ids) == 0 {
		return nil, services.Wrap(services.ErrMalformedReference, "split", "read fasta", "no sequence records in input", nil)
	}
	return s.ids, nil
}

type splitter struct {
	dir     string
	seen    map[string]struct{}
	ids     []string
	written []string

	current *os.File
	buf     *bufio.Writer
	target  string
}

func (s *splitter) consume(ctx context.Context, line []byte, lineNo int) error {
	if line[0] == '>' {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := headerID(line)
		if id == "" {
			return services.Wrap(services.ErrMalformedReference, "split", "parse header",
				fmt.Sprintf("line %d: empty sequence identifier", lineNo), nil)
		}
		if _, dup := s.seen[id]; dup {
			return services.Wrap(services.ErrMalformedReference, "split", "parse header",
				fmt.Sprintf("line %d: duplicate sequence identifier %q", lineNo, id), nil)
		}
		if err := s.finish(); err != nil {
			return err
		}
		s.seen[id] = struct{}{}
		return s.open(id)
	}

	if s.current == nil {
		if len(bytes.TrimSpace(line)) == 0 {
			return nil
		}
		return services.Wrap(services.ErrMalformedReference, "split", "parse body",
			fmt.Sprintf("line %d: sequence data before first header", lineNo), nil)
	}
	if _, err := s.buf.Write(line); err != nil {
		return services.Wrap(services.ErrFilesystem, "split", "write sequence", s.target, err)
	}
	return nil
}

func (s *splitter) open(id string) error {
	tmp, err := os.CreateTemp(s.dir, "."+id+".*.tmp")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "split", "create sequence file", id, err)
	}
	s.current = tmp
	s.buf = bufio.NewWriterSize(tmp, 1<<16)
	s.target = filepath.Join(s.dir, id+Extension)
	s.ids = append(s.ids, id)
	if _, err := s.buf.WriteString(">" + id + "\n"); err != nil {
		return services.Wrap(services.ErrFilesystem, "split", "write header", id, err)
	}
	return nil
}

// finish flushes and renames the record in progress, if any.
func (s *splitter) finish() error {
	if s.current == nil {
		return nil
	}
	tmp := s.current
	s.current = nil
	flushErr := s.buf.Flush()
	closeErr := tmp.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return services.Wrap(services.ErrFilesystem, "split", "close sequence file", s.target, err)
	}
	if err := os.Rename(tmp.Name(), s.target); err != nil {
		_ = os.Remove(tmp.Name())
		return services.Wrap(services.ErrFilesystem, "split", "rename sequence file", s.target, err)
	}
	s.written = append(s.written, s.target)
	return nil
}

func (s *splitter) discard() {
	if s.current != nil {
		_ = s.current.Close()
		_ = os.Remove(s.current.Name())
		s.current = nil
	}
	for _, path := range s.written {
		_ = os.Remove(path)
	}
	s.written = nil
}

func headerID(line []byte) string {
	fields := bytes.Fields(line[1:])
	if len(fields) == 0 {
		return ""
	}
	return string(fields[0])
}
