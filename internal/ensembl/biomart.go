package ensembl

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"refbuild/internal/species"
)

const xmlPreamble = `<?xml version="1.0" encoding="UTF-8"?><!DOCTYPE Query>`

// Column positions of chromosome_name in the gene and transcript tables.
const (
	GeneChromosomeColumn       = 1
	TranscriptChromosomeColumn = 1
)

// Filter is a single BioMart filter. Boolean filters carry no value and are
// sent as excluded="0".
type Filter struct {
	Name    string
	Value   string
	Boolean bool
}

// Query is a BioMart martservice request against one dataset.
type Query struct {
	Dataset    string
	Filters    []Filter
	Attributes []string
}

type xmlQuery struct {
	XMLName              xml.Name   `xml:"Query"`
	VirtualSchemaName    string     `xml:"virtualSchemaName,attr"`
	Formatter            string     `xml:"formatter,attr"`
	Header               string     `xml:"header,attr"`
	UniqueRows           string     `xml:"uniqueRows,attr"`
	DatasetConfigVersion string     `xml:"datasetConfigVersion,attr"`
	Dataset              xmlDataset `xml:"Dataset"`
}

type xmlDataset struct {
	Name       string         `xml:"name,attr"`
	Interface  string         `xml:"interface,attr"`
	Filters    []xmlFilter    `xml:"Filter"`
	Attributes []xmlAttribute `xml:"Attribute"`
}

type xmlFilter struct {
	Name     string `xml:"name,attr"`
	Value    string `xml:"value,attr,omitempty"`
	Excluded string `xml:"excluded,attr,omitempty"`
}

type xmlAttribute struct {
	Name string `xml:"name,attr"`
}

// XML renders the query document. Results are requested as headerless TSV
// with duplicate rows preserved.
func (q Query) XML() (string, error) {
	doc := xmlQuery{
		VirtualSchemaName:    "default",
		Formatter:            "TSV",
		Header:               "0",
		UniqueRows:           "0",
		DatasetConfigVersion: "0.6",
		Dataset: xmlDataset{
			Name:      q.Dataset,
			Interface: "default",
		},
	}
	for _, f := range q.Filters {
		entry := xmlFilter{Name: f.Name, Value: f.Value}
		if f.Boolean {
			entry.Value = ""
			entry.Excluded = "0"
		}
		doc.Dataset.Filters = append(doc.Dataset.Filters, entry)
	}
	for _, attr := range q.Attributes {
		doc.Dataset.Attributes = append(doc.Dataset.Attributes, xmlAttribute{Name: attr})
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal biomart query: %w", err)
	}
	return xmlPreamble + string(body), nil
}

// URL returns the martservice GET URL on host carrying the encoded query.
func (q Query) URL(host string) (string, error) {
	doc, err := q.XML()
	if err != nil {
		return "", err
	}
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return "", fmt.Errorf("biomart host required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/biomart/martservice?query=" + url.QueryEscape(doc), nil
}

// GeneQuery requests the gene table for target at release.
func GeneQuery(target species.Record, release int) Query {
	return Query{
		Dataset: Dataset(target),
		Attributes: []string{
			"ensembl_gene_id",
			"chromosome_name",
			"description",
			GeneNameAttribute(release),
			EntrezAttribute(release),
			"gene_biotype",
		},
	}
}

// TranscriptQuery requests the transcript table for target.
func TranscriptQuery(target species.Record) Query {
	return Query{
		Dataset: Dataset(target),
		Attributes: []string{
			"ensembl_transcript_id",
			"chromosome_name",
			"transcript_biotype",
			"ensembl_gene_id",
		},
	}
}

// OrthologRequest describes one ortholog table download.
type OrthologRequest struct {
	Partner species.Record
	Filter  string
	Query   Query
}

// OrthologQuery builds the request for genes of target that have an ortholog
// in partner. The homology filter is evaluated server side, so exactly three
// attributes are requested and nothing is filtered locally.
func OrthologQuery(target, partner species.Record, release int) OrthologRequest {
	filter := BuildFilterName(partner, release)
	short := ShortName(partner.ScientificName)
	return OrthologRequest{
		Partner: partner,
		Filter:  filter,
		Query: Query{
			Dataset: Dataset(target),
			Filters: []Filter{{Name: filter, Boolean: true}},
			Attributes: []string{
				"ensembl_gene_id",
				short + "_homolog_ensembl_gene",
				short + "_homolog_orthology_type",
			},
		},
	}
}

// Partners returns the configured partner keys with target and duplicates
// removed, preserving order. A species is never queried against itself.
func Partners(target string, configured []string) []string {
	seen := map[string]struct{}{target: {}}
	out := make([]string, 0, len(configured))
	for _, key := range configured {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
