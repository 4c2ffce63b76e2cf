package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ElectionRecord is one row of a candidate's other-elections table.
type ElectionRecord struct {
	Election       string `json:"Election"`
	DeclaredAssets string `json:"DeclaredAssets"`
	DeclaredCases  string `json:"DeclaredCases"`
	DetailsURL     string `json:"DetailsURL,omitempty"`
}

// ProfileRecord is the assembled public-record profile for one individual.
// A record is owned by the build that produced it.
type ProfileRecord struct {
	ID                string
	Fields            *FieldBag
	ConvictionSummary ConvictionSummary
	CriminalSummary   CriminalSummary
	OtherElections    []ElectionRecord
	SourcesUsed       SourcesUsed
	SourceURL         string
	PageTitle         string
	ElectionYear      string
	ScrapedAt         time.Time
}

// NewProfileRecord creates an empty record for sourceURL.
func NewProfileRecord(sourceURL string, scrapedAt time.Time) *ProfileRecord {
	return &ProfileRecord{
		Fields:    NewFieldBag(),
		SourceURL: sourceURL,
		ScrapedAt: scrapedAt.UTC(),
	}
}

// Name returns the profile subject's name, if resolved.
func (p *ProfileRecord) Name() string {
	return p.Fields.Value("Name")
}

// Metadata keys written alongside the fields.
const (
	metaID               = "_id"
	metaSourceURL        = "_source_url"
	metaScrapedAt        = "_scraped_at"
	metaPageTitle        = "_page_title"
	metaElectionYear     = "_election_year"
	metaConviction       = "_conviction_summary"
	metaEnhancedCriminal = "_enhanced_criminal_cases"
	metaOtherElections   = "_other_elections"
	metaDataSources      = "_data_sources"
)

type metaMember struct {
	key   string
	value any
	skip  bool
}

// MarshalJSON writes fields first, in insertion order, followed by the
// record metadata. Output is deterministic for a given record.
func (p *ProfileRecord) MarshalJSON() ([]byte, error) {
	elections := p.OtherElections
	if elections == nil {
		elections = []ElectionRecord{}
	}
	members := []metaMember{
		{key: metaID, value: p.ID, skip: p.ID == ""},
		{key: metaSourceURL, value: p.SourceURL},
		{key: metaScrapedAt, value: p.ScrapedAt.UTC().Format(time.RFC3339)},
		{key: metaPageTitle, value: p.PageTitle, skip: p.PageTitle == ""},
		{key: metaElectionYear, value: p.ElectionYear, skip: p.ElectionYear == ""},
		{key: metaConviction, value: p.ConvictionSummary},
		{key: metaEnhancedCriminal, value: p.CriminalSummary},
		{key: metaOtherElections, value: elections},
		{key: metaDataSources, value: p.SourcesUsed},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := p.Fields
	if fields == nil {
		fields = NewFieldBag()
	}
	if err := fields.writeMembers(&buf, false); err != nil {
		return nil, err
	}
	first := fields.Len() == 0
	for _, m := range members {
		if m.skip {
			continue
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, eris.Wrapf(err, "model: marshal %s", m.key)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(m.key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reverses MarshalJSON.
func (p *ProfileRecord) UnmarshalJSON(data []byte) error {
	*p = ProfileRecord{Fields: NewFieldBag()}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		if !strings.HasPrefix(key, MetaPrefix) {
			var f Field
			if err := json.Unmarshal(raw, &f); err != nil {
				return eris.Wrapf(err, "model: unmarshal field %s", key)
			}
			f.Key = key
			p.Fields.SetIfAbsent(f)
			return nil
		}

		var target any
		switch key {
		case metaID:
			target = &p.ID
		case metaSourceURL:
			target = &p.SourceURL
		case metaPageTitle:
			target = &p.PageTitle
		case metaElectionYear:
			target = &p.ElectionYear
		case metaConviction:
			target = &p.ConvictionSummary
		case metaEnhancedCriminal:
			target = &p.CriminalSummary
		case metaOtherElections:
			target = &p.OtherElections
		case metaDataSources:
			target = &p.SourcesUsed
		case metaScrapedAt:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return eris.Wrap(err, "model: unmarshal scraped_at")
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return eris.Wrap(err, "model: parse scraped_at")
			}
			p.ScrapedAt = t.UTC()
			return nil
		default:
			return nil
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return eris.Wrapf(err, "model: unmarshal %s", key)
		}
		return nil
	})
}
