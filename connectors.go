package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Connectors
func (c Connector) String() string {
	return fmt.Sprintf("[%d] %v (%v)", c.ConnectorID, c.Name, c.Type)
}

func (c RSClient) CreateConnector(request ConnectorRequest) (Connector, error) {
	c.logger.Debugf("Create Connector: %v", request.String())
	var connector Connector

	data, err := request.body(false)
	if err != nil {
		return connector, err
	}

	jsonBody, err := json.Marshal(data)
	if err != nil {
		return connector, err
	}

	response, err := c.sendRequestClient(http.MethodPost, "/connector", bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Error while creating connector %v: %s", request.Name, err)
		return connector, err
	}

	err = json.Unmarshal(response, &connector)
	return connector, err
}

func (c RSClient) GetConnectorByID(connectorID uint64) (Connector, error) {
	c.logger.Debugf("Getting Connector with ID %d...", connectorID)
	var connector Connector

	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/connector/%d", connectorID), nil, nil)
	if err != nil {
		return connector, fmt.Errorf("failed to fetch connector %d: %s", connectorID, err)
	}

	err = json.Unmarshal(response, &connector)
	return connector, err
}

// case-sensitive exact match for a connector name
func (c RSClient) GetConnectorByName(name string) (Connector, error) {
	c.logger.Debugf("Getting Connector with name %v...", name)
	_, connectors, err := c.GetAllConnectorsFiltered(ConnectorFilter{
		BaseFilter: BaseFilter{Size: c.pagination.Connectors},
		FilterRequest: FilterRequest{
			Filters: []Filter{{Field: "name", Operator: FilterOperatorExact, Value: name}},
		},
	})
	if err != nil {
		return Connector{}, err
	}

	for _, conn := range connectors {
		if conn.Name == name {
			return conn, nil
		}
	}

	return Connector{}, fmt.Errorf("no connector matching %v found", name)
}

func (c RSClient) GetAllConnectors() ([]Connector, error) {
	c.logger.Debug("Get All RiskSense Connectors")
	_, connectors, err := c.GetAllConnectorsFiltered(ConnectorFilter{
		BaseFilter: BaseFilter{Size: c.pagination.Connectors},
	})
	return connectors, err
}

// Returns the total number of matching connectors plus one page of results
func (c RSClient) GetConnectorsFiltered(filter ConnectorFilter) (uint64, []Connector, error) {
	var connectors []Connector

	if filter.Filters == nil {
		filter.Filters = []Filter{}
	}
	jsonBody, err := json.Marshal(map[string]interface{}{
		"filters":    filter.Filters,
		"projection": "basic",
		"sort":       []SortOrder{{Field: "id", Direction: "ASC"}},
		"page":       filter.Page,
		"size":       filter.Size,
	})
	if err != nil {
		return 0, connectors, err
	}

	response, err := c.sendRequestClient(http.MethodPost, "/connector/search", bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Failed to fetch connectors: %s", err)
		return 0, connectors, err
	}

	page, err := decodeEmbedded(response, "connectors", &connectors)
	return page.TotalElements, connectors, err
}

// Retrieves all connectors matching the filter
func (c RSClient) GetAllConnectorsFiltered(filter ConnectorFilter) (uint64, []Connector, error) {
	var connectors []Connector

	count, conns, err := c.GetConnectorsFiltered(filter)
	connectors = conns

	for err == nil && filter.hasMore(count) {
		filter.Bump()
		_, conns, err = c.GetConnectorsFiltered(filter)
		connectors = append(connectors, conns...)
	}

	return count, connectors, err
}

func (c RSClient) UpdateConnector(connectorID uint64, request ConnectorRequest) (Connector, error) {
	c.logger.Debugf("Update Connector %d: %v", connectorID, request.String())
	var connector Connector

	data, err := request.body(true)
	if err != nil {
		return connector, err
	}

	jsonBody, err := json.Marshal(data)
	if err != nil {
		return connector, err
	}

	response, err := c.sendRequestClient(http.MethodPut, fmt.Sprintf("/connector/%d", connectorID), bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Error while updating connector %d: %s", connectorID, err)
		return connector, err
	}

	err = json.Unmarshal(response, &connector)
	return connector, err
}

// changes only the schedule of an existing scanner connector
func (c RSClient) UpdateConnectorScheduleByID(connectorID uint64, schedule ConnectorSchedule) (Connector, error) {
	if err := schedule.Validate(); err != nil {
		return Connector{}, err
	}

	connector, err := c.GetConnectorByID(connectorID)
	if err != nil {
		return connector, err
	}
	request, err := PopulateConnectorRequest(connector)
	if err != nil {
		return connector, err
	}
	request.Schedule = schedule
	return c.UpdateConnector(connectorID, request)
}

func (c RSClient) DeleteConnectorByID(connectorID uint64, deleteAssociatedData bool) error {
	c.logger.Debugf("Deleting Connector %d (associated data: %v)", connectorID, deleteAssociatedData)
	params := url.Values{
		"deleteAssociatedData": {strconv.FormatBool(deleteAssociatedData)},
	}

	_, err := c.sendRequestClient(http.MethodDelete, fmt.Sprintf("/connector/%d?%v", connectorID, params.Encode()), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting connector %d failed: %s", connectorID, err)
	}
	return nil
}
