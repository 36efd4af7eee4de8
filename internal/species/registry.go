package species

import (
	"fmt"
	"sort"
	"strings"

	"refbuild/internal/services"
)

// AssemblyKind selects which Ensembl FASTA variant is downloaded. The value is
// also used verbatim in directory and file names of the bundle.
type AssemblyKind string

const (
	PrimaryAssembly AssemblyKind = "primary_assembly"
	TopLevel        AssemblyKind = "toplevel"
)

func (k AssemblyKind) String() string { return string(k) }

// AssemblySpan names an assembly that was current up to and including
// LastRelease.
type AssemblySpan struct {
	Name        string
	LastRelease int
}

// Record describes one registered species.
type Record struct {
	Key            string
	ScientificName string
	// AssemblyName is the assembly current at the newest supported release.
	AssemblyName string
	// History lists superseded assemblies in ascending LastRelease order.
	History []AssemblySpan
	// PinnedRelease, when non-zero, is the only release whose annotation and
	// sequence files exist for this species.
	PinnedRelease int
}

// AssemblyFor returns the assembly name Ensembl used for the release.
func (r Record) AssemblyFor(release int) string {
	for _, span := range r.History {
		if release <= span.LastRelease {
			return span.Name
		}
	}
	return r.AssemblyName
}

var registry = map[string]Record{
	"human": {
		Key:            "human",
		ScientificName: "homo_sapiens",
		AssemblyName:   "GRCh38",
		History:        []AssemblySpan{{Name: "GRCh37", LastRelease: 75}},
	},
	"mouse": {
		Key:            "mouse",
		ScientificName: "mus_musculus",
		AssemblyName:   "GRCm39",
		History: []AssemblySpan{
			{Name: "NCBIM37", LastRelease: 67},
			{Name: "GRCm38", LastRelease: 102},
		},
	},
	"castaneus": {
		Key:            "castaneus",
		ScientificName: "mus_musculus_casteij",
		AssemblyName:   "CAST_EiJ_v1",
		PinnedRelease:  86,
	},
	"rat": {
		Key:            "rat",
		ScientificName: "rattus_norvegicus",
		AssemblyName:   "mRatBN7.2",
		History: []AssemblySpan{
			{Name: "RGSC3.4", LastRelease: 69},
			{Name: "Rnor_5.0", LastRelease: 79},
			{Name: "Rnor_6.0", LastRelease: 104},
		},
	},
	"zebrafish": {
		Key:            "zebrafish",
		ScientificName: "danio_rerio",
		AssemblyName:   "GRCz11",
		History: []AssemblySpan{
			{Name: "Zv9", LastRelease: 79},
			{Name: "GRCz10", LastRelease: 91},
		},
	},
}

// primaryAssemblySpecies have a curated primary assembly FASTA; everything
// else is built from the toplevel FASTA.
var primaryAssemblySpecies = map[string]struct{}{
	"human": {},
	"mouse": {},
}

// Resolve returns the registry record for key.
func Resolve(key string) (Record, error) {
	key = strings.TrimSpace(key)
	rec, ok := registry[key]
	if !ok {
		return Record{}, services.Wrap(
			services.ErrUnknownSpecies, "registry", "resolve",
			fmt.Sprintf("species %q is not registered (known: %s)", key, strings.Join(Keys(), ", ")),
			nil,
		)
	}
	return rec, nil
}

// DeriveAssemblyKind classifies a species key into the FASTA variant to use.
func DeriveAssemblyKind(key string) AssemblyKind {
	if _, ok := primaryAssemblySpecies[strings.TrimSpace(key)]; ok {
		return PrimaryAssembly
	}
	return TopLevel
}

// Keys returns the registered species keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns every record ordered by key.
func All() []Record {
	keys := Keys()
	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, registry[key])
	}
	return out
}
