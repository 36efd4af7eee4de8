package species

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileStem returns the scientific name as Ensembl spells it in FTP file names,
// with only the genus capitalised ("Mus_musculus_casteij").
func (r Record) FileStem() string {
	genus, rest, found := strings.Cut(r.ScientificName, "_")
	genus = cases.Title(language.Und).String(genus)
	if !found {
		return genus
	}
	return genus + "_" + rest
}

// Binomial returns the human readable scientific name ("Mus musculus").
func (r Record) Binomial() string {
	return strings.ReplaceAll(r.FileStem(), "_", " ")
}

// CommonName returns the registry key formatted for display.
func (r Record) CommonName() string {
	return cases.Title(language.English).String(r.Key)
}
