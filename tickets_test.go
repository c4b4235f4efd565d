package RSClientGo

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTicketFormFields(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("GET /api/v1/client/123/ticket/connector/9/fields", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"fieldName": "project", "displayName": "Project", "required": true, "fieldType": "DROPDOWN",
			 "values": [{"key": "SEC", "value": "Security"}]},
			{"fieldName": "issuetype", "required": true, "fieldType": "DROPDOWN", "dependency": {"FieldRef": "project"}},
			{"fieldName": "summary", "displayName": "Summary", "fieldType": "TEXT"},
			{"fieldName": "description", "fieldType": "TEXTAREA", "dependency": {"sameAs": "summary"}}
		]`))
	})
	client := newTestClient(t, mux)

	fields, err := client.GetTicketFormFields(9)
	require.NoError(t, err)
	require.Len(t, fields, 4)

	assert.True(t, fields[0].IsDropdown())
	assert.Equal(t, "Project", fields[0].String())
	assert.Equal(t, "", fields[0].DependsOn())

	assert.Equal(t, "issuetype", fields[1].String())
	assert.Equal(t, "project", fields[1].DependsOn())

	assert.False(t, fields[2].IsDropdown())
	assert.Equal(t, "summary", fields[3].CopiesFrom())
	assert.Equal(t, "", fields[3].DependsOn())
}

func TestGetTicketFieldValues(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/ticket/connector/9/fieldValues", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		switch body["fieldName"] {
		case "project":
			assert.Equal(t, map[string]interface{}{}, body["dependentValues"])
			writeJSON(t, w, []TicketFieldValue{{Key: "SEC", Value: "Security"}, {Key: "OPS", Value: "Operations"}})
		case "issuetype":
			assert.Equal(t, map[string]interface{}{"project": "SEC"}, body["dependentValues"])
			writeJSON(t, w, []TicketFieldValue{{Key: "10001", Value: "Bug"}})
		default:
			t.Errorf("unexpected field %v", body["fieldName"])
		}
	})
	client := newTestClient(t, mux)

	values, err := client.GetTicketFieldValues(9, "project", nil)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	values, err = client.GetTicketFieldValues(9, "issuetype", map[string]string{"project": "SEC"})
	require.NoError(t, err)
	assert.Equal(t, []TicketFieldValue{{Key: "10001", Value: "Bug"}}, values)
}

func TestValidateTicketForm(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/ticket/connector/9/validate", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, []interface{}{
			map[string]interface{}{"fieldName": "project", "value": "SEC"},
		}, body["fields"], "empty values are not sent")
		writeJSON(t, w, TicketValidation{Errors: []TicketFieldError{{FieldName: "summary", Message: "is required"}}})
	})
	client := newTestClient(t, mux)

	validation, err := client.ValidateTicketForm(9, []TicketFormField{
		{FieldName: "project", Value: "SEC"},
		{FieldName: "summary"},
	})
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.Equal(t, "1 invalid fields: summary (is required);", validation.String())
	assert.Equal(t, "valid", TicketValidation{Valid: true}.String())
}

func TestCreateTicket(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/hostFinding/ticket", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, float64(9), body["connectorId"])
		assert.Equal(t, map[string]interface{}{"filters": []interface{}{
			map[string]interface{}{"field": "severity_group", "exclusive": false, "operator": "EXACT", "value": "Critical"},
		}}, body["filterRequest"])
		assert.Equal(t, []interface{}{
			map[string]interface{}{"fieldName": "project", "value": "SEC"},
			map[string]interface{}{"fieldName": "summary", "value": "Patch criticals"},
		}, body["fields"])

		writeJSON(t, w, Ticket{TicketID: 77, ConnectorID: 9, TicketNumber: "SEC-1234", Status: "OPEN"})
	})
	client := newTestClient(t, mux)

	var filter FilterRequest
	filter.Add("severity_group", FilterOperatorExact, "Critical", false)
	ticket, err := client.CreateTicket(SubjectHostFinding, TicketRequest{
		ConnectorID:   9,
		FilterRequest: filter,
		Fields: []TicketFormField{
			{FieldName: "project", Value: "SEC"},
			{FieldName: "summary", Value: "Patch criticals"},
			{FieldName: "labels"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ticket SEC-1234 [77] (OPEN)", ticket.String())
}

func TestCreateTicketErrors(t *testing.T) {
	client := newTestClient(t, newMux(t))

	var filter FilterRequest
	filter.Add("severity_group", FilterOperatorExact, "Critical", false)

	_, err := client.CreateTicket(SubjectHostFinding, TicketRequest{FilterRequest: filter})
	assert.ErrorContains(t, err, "connector")

	_, err = client.CreateTicket(SubjectHostFinding, TicketRequest{ConnectorID: 9})
	assert.ErrorContains(t, err, "filter")
}

func TestGetTicketsByConnectorID(t *testing.T) {
	var pages []string
	mux := newMux(t)
	mux.HandleFunc("GET /api/v1/client/123/ticket", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "9", q.Get("connectorId"))
		assert.Equal(t, "1", q.Get("size"))
		assert.False(t, q.Has("status"))
		pages = append(pages, q.Get("page"))

		writeJSON(t, w, page("tickets", []Ticket{{TicketID: uint64(len(pages)), ConnectorID: 9}}, 2, 0, 1))
	})
	client := newTestClient(t, mux)
	settings := client.GetPaginationSettings()
	settings.Tickets = 1
	client.SetPaginationSettings(settings)

	tickets, err := client.GetTicketsByConnectorID(9)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
	assert.Equal(t, []string{"0", "1"}, pages)
}
