package okato

import "fmt"

// Column positions in the OKATO export.
const (
	RegionField   = 0
	AreaField     = 1
	PlaceField    = 2
	DistrictField = 3
	TitleField    = 5

	minFields = TitleField + 1
)

// DefaultCountry is stored on every imported place.
const DefaultCountry = "RU"

// Record is one row of the OKATO export.
type Record struct {
	Ordinal  int64
	Region   string
	Area     string
	Place    string
	District string
	Title    string
}

// ParseRecord maps positional CSV fields onto a Record. Rows shorter than
// six fields are rejected with ErrMalformedRecord.
func ParseRecord(fields []string, ordinal int64) (Record, error) {
	if len(fields) < minFields {
		return Record{}, &RecordError{
			Ordinal: ordinal,
			Kind:    ErrMalformedRecord,
			Err:     fmt.Errorf("got %d fields, want at least %d", len(fields), minFields),
		}
	}
	return Record{
		Ordinal:  ordinal,
		Region:   fields[RegionField],
		Area:     fields[AreaField],
		Place:    fields[PlaceField],
		District: fields[DistrictField],
		Title:    fields[TitleField],
	}, nil
}

// Key returns the hierarchical key of the record.
func (r Record) Key() string {
	return ComposeKey(r.Region, r.Area, r.Place, r.District)
}

// Place is an administrative unit as persisted in the places table.
type Place struct {
	ID                     int64   `json:"id"`
	Title                  string  `json:"title"`
	TitleWithPronunciation string  `json:"title_with_pronunciation"`
	CountryID              string  `json:"country_id"`
	ParentPlaceID          *int64  `json:"parent_place_id,omitempty"`
	OkatoCode              *string `json:"okato_code,omitempty"`
}
