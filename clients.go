package RSClientGo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
)

// Clients (tenants) visible to the API key
func (c Client) String() string {
	return fmt.Sprintf("[%d] %v", c.ClientID, c.Name)
}

func (c RSClient) GetClientsFiltered(filter ClientFilter) (uint64, []Client, error) {
	params, _ := query.Values(filter)
	var clients []Client

	response, err := c.sendRequest(http.MethodGet, fmt.Sprintf("/client?%v", params.Encode()), nil, nil)
	if err != nil {
		return 0, clients, err
	}

	page, err := decodeEmbedded(response, "clients", &clients)
	return page.TotalElements, clients, err
}

func (c RSClient) GetClients() ([]Client, error) {
	c.logger.Debug("Getting RiskSense Clients")
	filter := ClientFilter{BaseFilter: BaseFilter{Size: c.pagination.Clients}}

	count, clients, err := c.GetClientsFiltered(filter)
	for err == nil && filter.hasMore(count) {
		filter.Bump()
		var cs []Client
		_, cs, err = c.GetClientsFiltered(filter)
		clients = append(clients, cs...)
	}

	c.logger.Tracef("Got %d clients", len(clients))
	return clients, err
}

func (c RSClient) GetClientByID(clientID uint64) (Client, error) {
	c.logger.Debugf("Getting client with ID %d", clientID)
	var client Client

	response, err := c.sendRequest(http.MethodGet, fmt.Sprintf("/client/%d", clientID), nil, nil)
	if err != nil {
		return client, err
	}

	err = json.Unmarshal(response, &client)
	return client, err
}

// case-insensitive match on the client name
func (c RSClient) GetClientByName(clientName string) (Client, error) {
	c.logger.Debugf("Getting client with name %v", clientName)

	clients, err := c.GetClients()
	if err != nil {
		return Client{}, err
	}

	for _, cl := range clients {
		if strings.EqualFold(cl.Name, clientName) {
			return cl, nil
		}
	}

	return Client{}, fmt.Errorf("no such client %v found", clientName)
}
