package RSClientGo

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRequestAdd(t *testing.T) {
	var req FilterRequest
	req.Add("severity_group", FilterOperatorIn, "Critical,High", false)
	req.Add("generic_state", FilterOperatorExact, "Closed", true)

	assert.Equal(t, []Filter{
		{Field: "severity_group", Operator: FilterOperatorIn, Value: "Critical,High"},
		{Field: "generic_state", Operator: FilterOperatorExact, Value: "Closed", Exclusive: true},
	}, req.Filters)
	assert.Equal(t, "severity_group IN Critical,High", req.Filters[0].String())
	assert.Equal(t, "NOT generic_state EXACT Closed", req.Filters[1].String())
}

func TestFilterFieldsAndQuickFilters(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("GET /api/v1/client/123/search/hostFinding/filter", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []FilterField{
			{UID: "severity_group", Name: "Severity", Type: "STRING", Operators: []string{"EXACT", "IN"}},
			{UID: "title", Name: "Title", Type: "STRING"},
		})
	})
	mux.HandleFunc("GET /api/v1/client/123/search/hostFinding/quick-filter", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []QuickFilter{
			{UID: "open_critical", Label: "Open Criticals", Count: 4, FilterRequest: FilterRequest{
				Filters: []Filter{{Field: "severity_group", Operator: "EXACT", Value: "Critical"}},
			}},
			{UID: "kev", Label: "CISA KEV", Count: 9},
		})
	})
	client := newTestClient(t, mux)

	fields, err := client.GetFilterFields(SubjectHostFinding)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.True(t, fields[0].SupportsOperator("in"))
	assert.False(t, fields[0].SupportsOperator(FilterOperatorRange))
	assert.True(t, fields[1].SupportsOperator(FilterOperatorRange), "fields without operators accept any")

	qf, err := client.GetQuickFilterByLabel(SubjectHostFinding, "open criticals")
	require.NoError(t, err)
	assert.Equal(t, "Critical", qf.FilterRequest.Filters[0].Value)

	qf, err = client.GetQuickFilterByLabel(SubjectHostFinding, "KEV")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), qf.Count)

	_, err = client.GetQuickFilterByLabel(SubjectHostFinding, "ransomware")
	assert.Error(t, err)
}

func TestSearchCount(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/applicationFinding/search", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, float64(1), body["size"])
		assert.Equal(t, float64(0), body["page"])
		assert.Equal(t, "basic", body["projection"])
		assert.Len(t, body["filters"], 1)
		writeJSON(t, w, page("applicationFindings", []Finding{{FindingID: 1}}, 321, 0, 1))
	})
	client := newTestClient(t, mux)

	var filter FilterRequest
	filter.Add("severity_group", FilterOperatorExact, "High", false)
	count, err := client.SearchCount(SubjectApplicationFinding, filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(321), count)
}

func TestSearchAllFiltered(t *testing.T) {
	var pages []float64
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/hostFinding/search", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, []interface{}{}, body["filters"], "no filters are sent as an empty list")
		p := body["page"].(float64)
		pages = append(pages, p)

		findings := []Finding{{FindingID: uint64(p)*2 + 1}, {FindingID: uint64(p)*2 + 2}}
		if p == 2 {
			findings = findings[:1]
		}
		writeJSON(t, w, page("hostFindings", findings, 5, uint64(p), 2))
	})
	client := newTestClient(t, mux)

	count, findings, err := client.SearchAllFiltered(SubjectHostFinding, SearchFilter{BaseFilter: BaseFilter{Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
	assert.Len(t, findings, 5)
	assert.Equal(t, uint64(5), findings[4].FindingID)
	assert.Equal(t, []float64{0, 1, 2}, pages)
}

func TestSearchError(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/hostFinding/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"message": "Unknown field foo"})
	})
	client := newTestClient(t, mux)

	_, _, err := client.SearchFiltered(SubjectHostFinding, SearchFilter{BaseFilter: BaseFilter{Size: 10}})
	assert.ErrorContains(t, err, "Unknown field foo")
}
