package ensembl

import (
	"fmt"
	"sort"

	"refbuild/internal/services"
)

// releaseHosts maps each supported release to the archive host that was
// canonical when it was published.
var releaseHosts = map[int]string{
	67:  "may2012.archive.ensembl.org",
	68:  "jul2012.archive.ensembl.org",
	69:  "oct2012.archive.ensembl.org",
	70:  "jan2013.archive.ensembl.org",
	71:  "apr2013.archive.ensembl.org",
	72:  "jun2013.archive.ensembl.org",
	73:  "sep2013.archive.ensembl.org",
	74:  "dec2013.archive.ensembl.org",
	75:  "feb2014.archive.ensembl.org",
	76:  "aug2014.archive.ensembl.org",
	77:  "oct2014.archive.ensembl.org",
	78:  "dec2014.archive.ensembl.org",
	79:  "mar2015.archive.ensembl.org",
	80:  "may2015.archive.ensembl.org",
	81:  "jul2015.archive.ensembl.org",
	82:  "sep2015.archive.ensembl.org",
	83:  "dec2015.archive.ensembl.org",
	84:  "mar2016.archive.ensembl.org",
	85:  "jul2016.archive.ensembl.org",
	86:  "oct2016.archive.ensembl.org",
	87:  "dec2016.archive.ensembl.org",
	88:  "mar2017.archive.ensembl.org",
	89:  "may2017.archive.ensembl.org",
	90:  "aug2017.archive.ensembl.org",
	91:  "dec2017.archive.ensembl.org",
	92:  "apr2018.archive.ensembl.org",
	93:  "jul2018.archive.ensembl.org",
	94:  "oct2018.archive.ensembl.org",
	95:  "jan2019.archive.ensembl.org",
	96:  "apr2019.archive.ensembl.org",
	97:  "jul2019.archive.ensembl.org",
	98:  "sep2019.archive.ensembl.org",
	99:  "jan2020.archive.ensembl.org",
	100: "apr2020.archive.ensembl.org",
	101: "aug2020.archive.ensembl.org",
	102: "nov2020.archive.ensembl.org",
	103: "feb2021.archive.ensembl.org",
	104: "may2021.archive.ensembl.org",
	105: "dec2021.archive.ensembl.org",
	106: "apr2022.archive.ensembl.org",
	107: "jul2022.archive.ensembl.org",
	108: "oct2022.archive.ensembl.org",
	109: "feb2023.archive.ensembl.org",
	110: "jul2023.archive.ensembl.org",
}

// ResolveEndpoint returns the archived BioMart host for release. Releases
// without an exact mapping are rejected; there is no nearest-release fallback.
func ResolveEndpoint(release int) (string, error) {
	host, ok := releaseHosts[release]
	if !ok {
		first, last := ReleaseRange()
		return "", services.Wrap(
			services.ErrUnsupportedRelease, "resolver", "endpoint",
			fmt.Sprintf("release %d has no archive host (supported: %d..%d)", release, first, last),
			nil,
		)
	}
	return host, nil
}

// Releases returns every supported release in ascending order.
func Releases() []int {
	out := make([]int, 0, len(releaseHosts))
	for release := range releaseHosts {
		out = append(out, release)
	}
	sort.Ints(out)
	return out
}

// ReleaseRange returns the oldest and newest supported releases.
func ReleaseRange() (int, int) {
	releases := Releases()
	return releases[0], releases[len(releases)-1]
}
