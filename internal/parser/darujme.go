package parser

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"
)

// DarujmeRecord is one pledge from the darujme.cz read API. The portal
// serves the same records as XML (HTTP API) or JSON (file export).
type DarujmeRecord struct {
	RecordID   string         `xml:"id_daru" json:"id_daru"`
	ProjectID  string         `xml:"id_projektu" json:"id_projektu"`
	State      string         `xml:"stav_daru" json:"stav_daru"`
	Frequency  string         `xml:"cetnost" json:"cetnost"`
	RawAmount  string         `xml:"uvedena_castka" json:"uvedena_castka"`
	RawDate    string         `xml:"datum_daru" json:"datum_daru"`
	FirstName  string         `xml:"jmeno" json:"jmeno"`
	LastName   string         `xml:"prijmeni" json:"prijmeni"`
	Email      string         `xml:"email" json:"email"`
	Telephone  string         `xml:"telefon" json:"telefon"`
	Street     string         `xml:"ulice" json:"ulice"`
	City       string         `xml:"mesto" json:"mesto"`
	PostalCode string         `xml:"psc" json:"psc"`
	Payments   []DarujmeEntry `xml:"platby>platba" json:"platby"`
}

// DarujmeEntry is one realized payment nested under a pledge.
type DarujmeEntry struct {
	TransactionID string `xml:"transaction_id" json:"transaction_id"`
	RawDate       string `xml:"datum_platby" json:"datum_platby"`
	RawAmount     string `xml:"castka" json:"castka"`
}

// Amount returns the pledge amount rounded to whole currency units.
func (r *DarujmeRecord) Amount() (int64, error) {
	return parseAmount(r.RawAmount)
}

// Date returns the pledge date.
func (r *DarujmeRecord) Date() (time.Time, error) {
	return parseISODate(r.RawDate)
}

func (e *DarujmeEntry) Amount() (int64, error) {
	return parseAmount(e.RawAmount)
}

func (e *DarujmeEntry) Date() (time.Time, error) {
	return parseISODate(e.RawDate)
}

type darujmeDocument struct {
	XMLName xml.Name        `xml:"darujme_api"`
	Records []DarujmeRecord `xml:"zaznam"`
}

// ParseDarujme decodes a darujme.cz response, sniffing XML vs JSON from
// the first non-whitespace byte.
func ParseDarujme(data []byte) ([]DarujmeRecord, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("darujme document is empty")
	}
	switch trimmed[0] {
	case '<':
		var doc darujmeDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error decoding darujme XML: %w", err)
		}
		return doc.Records, nil
	case '[':
		var records []DarujmeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("error decoding darujme JSON: %w", err)
		}
		return records, nil
	case '{':
		var doc struct {
			Records []DarujmeRecord `json:"zaznamy"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error decoding darujme JSON: %w", err)
		}
		return doc.Records, nil
	default:
		return nil, fmt.Errorf("darujme document is neither XML nor JSON")
	}
}

var isoLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseISODate(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
