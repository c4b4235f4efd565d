package RSClientGo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// lists of filterable fields and predefined filters per subject

func (c RSClient) GetFilterFields(subject Subject) ([]FilterField, error) {
	c.logger.Debugf("Getting filter fields for %v", subject)
	var fields []FilterField

	data, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/search/%v/filter", subject), nil, http.Header{})
	if err != nil {
		c.logger.Tracef("Fetching filter fields failed: %s", err)
		return fields, err
	}

	err = json.Unmarshal(data, &fields)
	return fields, err
}

func (c RSClient) GetQuickFilters(subject Subject) ([]QuickFilter, error) {
	c.logger.Debugf("Getting quick filters for %v", subject)
	var filters []QuickFilter

	data, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/search/%v/quick-filter", subject), nil, http.Header{})
	if err != nil {
		c.logger.Tracef("Fetching quick filters failed: %s", err)
		return filters, err
	}

	err = json.Unmarshal(data, &filters)
	return filters, err
}

// case-insensitive match on the quick filter label or uid
func (c RSClient) GetQuickFilterByLabel(subject Subject, label string) (QuickFilter, error) {
	filters, err := c.GetQuickFilters(subject)
	if err != nil {
		return QuickFilter{}, err
	}

	for _, qf := range filters {
		if strings.EqualFold(qf.Label, label) || strings.EqualFold(qf.UID, label) {
			return qf, nil
		}
	}
	return QuickFilter{}, fmt.Errorf("no quick filter matching %v found for %v", label, subject)
}

func (f FilterField) SupportsOperator(operator string) bool {
	if len(f.Operators) == 0 {
		return true
	}
	for _, op := range f.Operators {
		if strings.EqualFold(op, operator) {
			return true
		}
	}
	return false
}
