package RSClientGo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCredentials() ConnectorCredentials {
	return ConnectorCredentials{
		Username:     "svc-risksense",
		Password:     "hunter2",
		AccessKey:    "AKIA",
		SecretKey:    "s3cr3t",
		APIKey:       "api-key",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TenantID:     "tenant",
		Region:       "us-east-1",
		Organization: "acme",
	}
}

func testRequest(t ConnectorType) ConnectorRequest {
	return ConnectorRequest{
		Type:        t,
		Name:        string(t) + " connector",
		URL:         "https://scanner.example.com",
		Credentials: allCredentials(),
		Schedule:    DailySchedule(2),
	}
}

func TestConnectorTypes(t *testing.T) {
	types := ConnectorTypes()
	assert.Len(t, types, 25)
	for i := 1; i < len(types); i++ {
		assert.Less(t, string(types[i-1]), string(types[i]))
	}

	ticketing := 0
	for _, ct := range types {
		assert.True(t, ct.IsValid())
		assert.NotEmpty(t, ct.CredentialKeys(), ct)
		assert.NotEmpty(t, ct.AttributeKeys(), ct)
		if ct.IsTicketing() {
			ticketing++
		}
	}
	assert.Equal(t, 5, ticketing)

	assert.False(t, ConnectorType("QUALYS_PC").IsValid())
	assert.Empty(t, ConnectorType("QUALYS_PC").AttributeKeys())

	// callers get their own copy
	keys := ConnectorNessus.AttributeKeys()
	keys[0] = "changed"
	assert.Equal(t, "historicalDateFilter", ConnectorNessus.AttributeKeys()[0])
}

func TestConnectorBodyContainsExactlyTheTypeKeys(t *testing.T) {
	for _, ct := range ConnectorTypes() {
		t.Run(string(ct), func(t *testing.T) {
			body, err := testRequest(ct).body(false)
			require.NoError(t, err)

			connection := body["connection"].(map[string]interface{})
			assert.Equal(t, sorted(append(ct.CredentialKeys(), "url")), sortedKeys(connection))

			assert.Contains(t, body, "schedule")
			if ct.IsTicketing() {
				assert.NotContains(t, body, "attributes")
				assert.Equal(t, sorted(ct.AttributeKeys()), sortedKeys(body["connectorField"].(map[string]interface{})))
			} else {
				assert.NotContains(t, body, "connectorField")
				assert.Equal(t, sorted(ct.AttributeKeys()), sortedKeys(body["attributes"].(map[string]interface{})))
			}
		})
	}
}

func TestConnectorBodyKeys(t *testing.T) {
	tests := []struct {
		connectorType ConnectorType
		credentials   []string
		options       []string
	}{
		{ConnectorNessus, []string{"password", "url", "username"}, []string{"historicalDateFilter"}},
		{ConnectorTenableIO, []string{"accessKey", "secretKey", "url"}, []string{"assetTags", "historicalDateFilter", "severities"}},
		{ConnectorAWSInspector, []string{"accessKey", "region", "secretKey", "url"}, []string{"accountIds", "severities"}},
		{ConnectorMSDefenderATP, []string{"clientId", "clientSecret", "tenantId", "url"}, []string{"historicalDateFilter"}},
		{ConnectorSnyk, []string{"apiKey", "organization", "url"}, []string{"projectKeys"}},
		{ConnectorJira, []string{"password", "url", "username"}, []string{"assignee", "issueType", "projectKey"}},
		{ConnectorSNOWServiceRequest, []string{"password", "url", "username"}, []string{"assignmentGroup", "catalogItem"}},
		{ConnectorCherwell, []string{"clientId", "password", "url", "username"}, []string{"businessObject", "service", "team"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.connectorType), func(t *testing.T) {
			body, err := testRequest(tt.connectorType).body(false)
			require.NoError(t, err)

			assert.Equal(t, tt.credentials, sortedKeys(body["connection"].(map[string]interface{})))
			optionsKey := "attributes"
			if tt.connectorType.IsTicketing() {
				optionsKey = "connectorField"
			}
			assert.Equal(t, tt.options, sortedKeys(body[optionsKey].(map[string]interface{})))
		})
	}
}

func TestConnectorBodyValues(t *testing.T) {
	req := testRequest(ConnectorTenableSecurityCenter)
	req.Attributes.HistoricalDateFilter = 30
	req.AutoURBA = true

	body, err := req.body(false)
	require.NoError(t, err)

	data, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "TENABLE_SECURITY_CENTER",
		"name": "TENABLE_SECURITY_CENTER connector",
		"autoUrba": true,
		"connection": {"url": "https://scanner.example.com", "username": "svc-risksense", "password": "hunter2"},
		"schedule": {"type": "DAILY", "enabled": true, "hourOfDay": 2},
		"attributes": {"historicalDateFilter": 30, "severities": []}
	}`, string(data))
}

func TestConnectorBodyErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *ConnectorRequest)
	}{
		{name: "unknown type", modify: func(r *ConnectorRequest) { r.Type = "QUALYS_PC" }},
		{name: "missing name", modify: func(r *ConnectorRequest) { r.Name = "" }},
		{name: "missing url", modify: func(r *ConnectorRequest) { r.URL = "" }},
		{name: "url without scheme", modify: func(r *ConnectorRequest) { r.URL = "scanner" }},
		{name: "missing credential", modify: func(r *ConnectorRequest) { r.Credentials.Password = "" }},
		{name: "weekly schedule without days", modify: func(r *ConnectorRequest) { r.Schedule = WeeklySchedule(2) }},
		{name: "unrecognized frequency", modify: func(r *ConnectorRequest) { r.Schedule.Frequency = "HOURLY" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(ConnectorNessus)
			tt.modify(&req)
			_, err := req.body(false)
			assert.Error(t, err)
		})
	}
}

func TestConnectorUpdateBodyOmitsMissingSecrets(t *testing.T) {
	req := testRequest(ConnectorNessus)
	req.Credentials = ConnectorCredentials{Username: "svc-risksense"}

	_, err := req.body(false)
	assert.Error(t, err, "create requires the password")

	body, err := req.body(true)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"url":      "https://scanner.example.com",
		"username": "svc-risksense",
	}, body["connection"])

	req.Credentials = ConnectorCredentials{}
	_, err = req.body(true)
	assert.Error(t, err, "username is not a secret")
}

func TestTicketingConnectorSchedule(t *testing.T) {
	req := testRequest(ConnectorJira)
	req.Schedule = WeeklySchedule(6, 2)
	req.Fields = TicketingFields{ProjectKey: "SEC", IssueType: "Bug"}

	body, err := req.body(false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"projectKey": "SEC",
		"issueType":  "Bug",
		"assignee":   "",
	}, body["connectorField"])
	assert.Equal(t, map[string]interface{}{
		"type":       ScheduleWeekly,
		"enabled":    true,
		"hourOfDay":  6,
		"daysOfWeek": []int{2},
	}, body["schedule"])

	req.Schedule = ConnectorSchedule{Frequency: "HOURLY"}
	_, err = req.body(false)
	assert.ErrorContains(t, err, "HOURLY")
}

func TestTicketingConnectorMappings(t *testing.T) {
	req := testRequest(ConnectorSNOWIncident)
	req.Fields = TicketingFields{
		AssignmentGroup: "Vuln Mgmt",
		Mappings:        []FieldMapping{{RiskSenseField: "title", TicketField: "short_description"}},
	}

	body, err := req.body(false)
	require.NoError(t, err)

	data, err := json.Marshal(body["connectorField"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"assignmentGroup": "Vuln Mgmt",
		"category": "",
		"impact": "",
		"mappings": [{"riskSenseField": "title", "ticketField": "short_description"}]
	}`, string(data))

	populated, err := PopulateConnectorRequest(Connector{
		Type:           ConnectorSNOWIncident,
		ConnectorField: body["connectorField"].(map[string]interface{}),
	})
	require.NoError(t, err)
	assert.Equal(t, req.Fields, populated.Fields)
}

func TestPopulateConnectorRequest(t *testing.T) {
	connector := Connector{
		ConnectorID: 7,
		Type:        ConnectorTenableIO,
		Name:        "Tenable",
		Connection:  ConnectorConnection{URL: "https://cloud.tenable.com", AccessKey: "AKIA"},
		Schedule:    WeeklySchedule(4, 1, 5),
		Attributes: map[string]interface{}{
			"historicalDateFilter": float64(30),
			"severities":           []interface{}{"Critical", "High"},
			"assetTags":            []interface{}{},
		},
	}

	req, err := PopulateConnectorRequest(connector)
	require.NoError(t, err)
	assert.Equal(t, ConnectorTenableIO, req.Type)
	assert.Equal(t, "https://cloud.tenable.com", req.URL)
	assert.Equal(t, "AKIA", req.Credentials.AccessKey)
	assert.Equal(t, 30, req.Attributes.HistoricalDateFilter)
	assert.Equal(t, []string{"Critical", "High"}, req.Attributes.Severities)
	assert.Equal(t, []int{1, 5}, req.Schedule.DaysOfWeek)

	connector.Attributes["historicalDateFilter"] = "thirty"
	_, err = PopulateConnectorRequest(connector)
	assert.Error(t, err)
}
