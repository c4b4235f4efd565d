package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

func (g Group) String() string {
	return fmt.Sprintf("[%d] %v", g.GroupID, g.Name)
}

func (c RSClient) getGroupsPage(filter FilterRequest, page BaseFilter) (uint64, []Group, error) {
	var groups []Group

	if filter.Filters == nil {
		filter.Filters = []Filter{}
	}
	jsonBody, err := json.Marshal(map[string]interface{}{
		"filters":    filter.Filters,
		"projection": "basic",
		"page":       page.Page,
		"size":       page.Size,
	})
	if err != nil {
		return 0, groups, err
	}

	response, err := c.sendRequestClient(http.MethodPost, "/group/search", bytes.NewReader(jsonBody), nil)
	if err != nil {
		return 0, groups, err
	}

	p, err := decodeEmbedded(response, "groups", &groups)
	return p.TotalElements, groups, err
}

func (c RSClient) GetGroupsFiltered(filter FilterRequest) ([]Group, error) {
	page := BaseFilter{Size: c.pagination.Groups}

	count, groups, err := c.getGroupsPage(filter, page)
	for err == nil && page.hasMore(count) {
		page.Bump()
		var gs []Group
		_, gs, err = c.getGroupsPage(filter, page)
		groups = append(groups, gs...)
	}
	return groups, err
}

func (c RSClient) GetGroups() ([]Group, error) {
	c.logger.Debug("Get RiskSense Groups")
	return c.GetGroupsFiltered(FilterRequest{})
}

// case-sensitive exact match for a group name
func (c RSClient) GetGroupByName(name string) (Group, error) {
	c.logger.Debugf("Get RiskSense Group by name: %v", name)
	groups, err := c.GetGroupsFiltered(FilterRequest{
		Filters: []Filter{{Field: "name", Operator: FilterOperatorExact, Value: name}},
	})
	if err != nil {
		return Group{}, err
	}

	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("no group matching %v found", name)
}
