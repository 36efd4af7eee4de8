package fasta

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"refbuild/internal/fileutil"
	"refbuild/internal/services"
)

// SequenceSet is the set of sequence identifiers present in a split
// directory.
type SequenceSet map[string]struct{}

// Contains reports exact, case-sensitive membership.
func (s SequenceSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the identifiers in lexical order.
func (s SequenceSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// NewSequenceSet builds a set from explicit identifiers.
func NewSequenceSet(ids ...string) SequenceSet {
	set := make(SequenceSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ReadSequenceSet lists dir and strips the final extension from every
// regular file name. Hidden files are ignored.
func ReadSequenceSet(dir string) (SequenceSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "split", "list sequences", dir, err)
	}
	set := make(SequenceSet, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		set[strings.TrimSuffix(name, filepath.Ext(name))] = struct{}{}
	}
	return set, nil
}

// Concatenate writes the per-sequence files for ids, in order, into dst.
func Concatenate(dir string, ids []string, dst string) error {
	return fileutil.WriteAtomic(dst, func(w io.Writer) error {
		for _, id := range ids {
			if err := appendFile(w, filepath.Join(dir, id+Extension)); err != nil {
				return services.Wrap(services.ErrFilesystem, "split", "concatenate", fmt.Sprintf("sequence %s", id), err)
			}
		}
		return nil
	})
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
