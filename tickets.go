package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/go-querystring/query"
)

func (f TicketFormField) String() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.FieldName
}

func (f TicketFormField) IsDropdown() bool {
	return f.FieldType == TicketFieldDropdown
}

// the field whose value selects this field's dropdown values, if any
func (f TicketFormField) DependsOn() string {
	if f.Dependency == nil {
		return ""
	}
	return f.Dependency.FieldRef
}

// the field this field copies its value from, if any
func (f TicketFormField) CopiesFrom() string {
	if f.Dependency == nil {
		return ""
	}
	return f.Dependency.SameAs
}

func (v TicketValidation) String() string {
	if v.Valid {
		return "valid"
	}
	str := fmt.Sprintf("%d invalid fields:", len(v.Errors))
	for _, e := range v.Errors {
		str += fmt.Sprintf(" %v (%v);", e.FieldName, e.Message)
	}
	return str
}

func (t Ticket) String() string {
	return fmt.Sprintf("ticket %v [%d] (%v)", t.TicketNumber, t.TicketID, t.Status)
}

func formValues(fields []TicketFormField) []map[string]string {
	values := make([]map[string]string, 0, len(fields))
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		values = append(values, map[string]string{
			"fieldName": f.FieldName,
			"value":     f.Value,
		})
	}
	return values
}

// the form schema for tickets created through the given ticketing connector
func (c RSClient) GetTicketFormFields(connectorID uint64) ([]TicketFormField, error) {
	c.logger.Debugf("Getting ticket form for connector %d", connectorID)
	var fields []TicketFormField

	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/ticket/connector/%d/fields", connectorID), nil, nil)
	if err != nil {
		c.logger.Tracef("Failed to get ticket form for connector %d: %s", connectorID, err)
		return fields, err
	}

	err = json.Unmarshal(response, &fields)
	return fields, err
}

// dropdown values for a field, given the values already chosen for the fields it depends on
func (c RSClient) GetTicketFieldValues(connectorID uint64, fieldName string, dependencies map[string]string) ([]TicketFieldValue, error) {
	c.logger.Debugf("Getting values for ticket field %v on connector %d", fieldName, connectorID)
	var values []TicketFieldValue

	if dependencies == nil {
		dependencies = map[string]string{}
	}
	jsonBody, err := json.Marshal(map[string]interface{}{
		"fieldName":       fieldName,
		"dependentValues": dependencies,
	})
	if err != nil {
		return values, err
	}

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/ticket/connector/%d/fieldValues", connectorID), bytes.NewReader(jsonBody), nil)
	if err != nil {
		return values, fmt.Errorf("failed to fetch values for ticket field %v: %s", fieldName, err)
	}

	err = json.Unmarshal(response, &values)
	return values, err
}

func (c RSClient) ValidateTicketForm(connectorID uint64, fields []TicketFormField) (TicketValidation, error) {
	c.logger.Debugf("Validating ticket form with %d fields on connector %d", len(fields), connectorID)
	var validation TicketValidation

	jsonBody, err := json.Marshal(map[string]interface{}{
		"fields": formValues(fields),
	})
	if err != nil {
		return validation, err
	}

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/ticket/connector/%d/validate", connectorID), bytes.NewReader(jsonBody), nil)
	if err != nil {
		return validation, fmt.Errorf("failed to validate ticket form: %s", err)
	}

	err = json.Unmarshal(response, &validation)
	return validation, err
}

// creates one ticket covering every finding matching the request filter
func (c RSClient) CreateTicket(subject Subject, request TicketRequest) (Ticket, error) {
	c.logger.Debugf("Creating ticket on connector %d for %v matching %d filters", request.ConnectorID, subject, len(request.FilterRequest.Filters))
	var ticket Ticket

	if request.ConnectorID == 0 {
		return ticket, fmt.Errorf("ticket request requires a connector id")
	}
	if len(request.FilterRequest.Filters) == 0 {
		return ticket, fmt.Errorf("ticket request requires at least one filter, refusing to ticket every %v", subject)
	}

	jsonBody, err := json.Marshal(map[string]interface{}{
		"connectorId":   request.ConnectorID,
		"filterRequest": request.FilterRequest,
		"fields":        formValues(request.Fields),
	})
	if err != nil {
		return ticket, err
	}

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/search/%v/ticket", subject), bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Error while creating ticket: %s", err)
		return ticket, err
	}

	err = json.Unmarshal(response, &ticket)
	return ticket, err
}

func (c RSClient) GetTicketsFiltered(filter TicketFilter) (uint64, []Ticket, error) {
	params, _ := query.Values(filter)
	var tickets []Ticket

	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/ticket?%v", params.Encode()), nil, nil)
	if err != nil {
		return 0, tickets, fmt.Errorf("failed to fetch tickets matching filter %v: %s", params.Encode(), err)
	}

	page, err := decodeEmbedded(response, "tickets", &tickets)
	return page.TotalElements, tickets, err
}

func (c RSClient) GetTicketsByConnectorID(connectorID uint64) ([]Ticket, error) {
	filter := TicketFilter{
		BaseFilter:  BaseFilter{Size: c.pagination.Tickets},
		ConnectorID: connectorID,
	}

	count, tickets, err := c.GetTicketsFiltered(filter)
	for err == nil && filter.hasMore(count) {
		filter.Bump()
		var ts []Ticket
		_, ts, err = c.GetTicketsFiltered(filter)
		tickets = append(tickets, ts...)
	}
	return tickets, err
}
