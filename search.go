package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

func (f Filter) String() string {
	if f.Exclusive {
		return fmt.Sprintf("NOT %v %v %v", f.Field, f.Operator, f.Value)
	}
	return fmt.Sprintf("%v %v %v", f.Field, f.Operator, f.Value)
}

func (f Finding) String() string {
	return fmt.Sprintf("[%d] %v (%v, %v)", f.FindingID, f.Title, f.SeverityGroup, f.State)
}

func (r *FilterRequest) Add(field, operator, value string, exclusive bool) {
	r.Filters = append(r.Filters, Filter{
		Field:     field,
		Operator:  operator,
		Value:     value,
		Exclusive: exclusive,
	})
}

// returns the number of findings matching the filter and one page of those findings
func (c RSClient) SearchFiltered(subject Subject, filter SearchFilter) (uint64, []Finding, error) {
	var findings []Finding

	if filter.Filters == nil {
		filter.Filters = []Filter{}
	}
	if filter.Projection == "" {
		filter.Projection = "basic"
	}
	jsonBody, err := json.Marshal(filter)
	if err != nil {
		return 0, findings, err
	}

	data, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/search/%v/search", subject), bytes.NewReader(jsonBody), nil)
	if err != nil {
		err = fmt.Errorf("failed to search %v: %s", subject, err)
		c.logger.Tracef("Error: %s", err)
		return 0, findings, err
	}

	page, err := decodeEmbedded(data, "", &findings)
	return page.TotalElements, findings, err
}

func (c RSClient) SearchAllFiltered(subject Subject, filter SearchFilter) (uint64, []Finding, error) {
	var findings []Finding

	count, fs, err := c.SearchFiltered(subject, filter)
	findings = fs

	for err == nil && filter.hasMore(count) {
		filter.Bump()
		_, fs, err = c.SearchFiltered(subject, filter)
		findings = append(findings, fs...)
	}

	return count, findings, err
}

func (c RSClient) SearchCount(subject Subject, filter FilterRequest) (uint64, error) {
	c.logger.Debugf("Get %v count matching %d filters", subject, len(filter.Filters))
	count, _, err := c.SearchFiltered(subject, SearchFilter{
		BaseFilter:    BaseFilter{Size: 1},
		FilterRequest: filter,
	})
	return count, err
}
