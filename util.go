package RSClientGo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// platform date filters and aggregate ranges use plain dates
const RSDateLayout = "2006-01-02"

// 2024-08-12T10:57:20.192Z, 2024-08-12T10:57:20, or 2024-08-12
var rsTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999Z0700",
	RSDateLayout,
}

func (ct *RSTime) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		ct.Time = time.Time{}
		return
	}
	for _, layout := range rsTimeLayouts {
		ct.Time, err = time.Parse(layout, s)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse time %v: %w", s, err)
}

func (ct RSTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ct.Time.Format(time.RFC3339))
}

func FormatDate(t time.Time) string {
	return t.Format(RSDateLayout)
}

// RANGE filter values are "from,to" with either end optional
func DateRange(from, to time.Time) string {
	var f, t string
	if !from.IsZero() {
		f = FormatDate(from)
	}
	if !to.IsZero() {
		t = FormatDate(to)
	}
	return fmt.Sprintf("%v,%v", f, t)
}

// decodes the HAL envelope used by paged platform responses
// key selects the _embedded entry; when empty the single entry present is used
func decodeEmbedded(data []byte, key string, out interface{}) (PageInfo, error) {
	var envelope struct {
		Embedded map[string]json.RawMessage `json:"_embedded"`
		Page     PageInfo                   `json:"page"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return envelope.Page, err
	}

	raw, ok := envelope.Embedded[key]
	if !ok && key == "" {
		for _, v := range envelope.Embedded {
			raw = v
			ok = true
			break
		}
	}
	if !ok || len(raw) == 0 {
		return envelope.Page, nil
	}

	return envelope.Page, json.Unmarshal(raw, out)
}
