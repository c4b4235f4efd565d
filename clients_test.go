package RSClientGo

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClients(t *testing.T) {
	all := []Client{
		{ClientID: 123, Name: "Acme", Active: true},
		{ClientID: 124, Name: "Acme Labs", Active: true},
		{ClientID: 125, Name: "Initech"},
	}

	mux := newMux(t)
	mux.HandleFunc("GET /api/v1/client", func(w http.ResponseWriter, r *http.Request) {
		p, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)
		assert.Equal(t, "2", r.URL.Query().Get("size"))

		end := min(p*2+2, len(all))
		writeJSON(t, w, page("clients", all[p*2:end], uint64(len(all)), uint64(p), 2))
	})
	mux.HandleFunc("GET /api/v1/client/125", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, all[2])
	})
	client := newTestClient(t, mux)
	settings := client.GetPaginationSettings()
	settings.Clients = 2
	client.SetPaginationSettings(settings)

	clients, err := client.GetClients()
	require.NoError(t, err)
	assert.Equal(t, all, clients)

	initech, err := client.GetClientByName("initech")
	require.NoError(t, err)
	assert.Equal(t, "[125] Initech", initech.String())

	_, err = client.GetClientByName("Globex")
	assert.Error(t, err)

	byID, err := client.GetClientByID(125)
	require.NoError(t, err)
	assert.False(t, byID.Active)
}

func TestGetGroups(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/group/search", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, "basic", body["projection"])
		assert.Equal(t, float64(1), body["size"])

		groups := []Group{{GroupID: 1, Name: "Default Group"}, {GroupID: 2, Name: "DMZ"}}
		if filters := body["filters"].([]interface{}); len(filters) > 0 {
			assert.Equal(t, "name", filters[0].(map[string]interface{})["field"])
			groups = groups[1:]
		}
		p := int(body["page"].(float64))
		if p >= len(groups) {
			writeJSON(t, w, page("groups", []Group{}, uint64(len(groups)), uint64(p), 1))
			return
		}
		writeJSON(t, w, page("groups", groups[p:p+1], uint64(len(groups)), uint64(p), 1))
	})
	client := newTestClient(t, mux)
	settings := client.GetPaginationSettings()
	settings.Groups = 1
	client.SetPaginationSettings(settings)

	groups, err := client.GetGroups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "[2] DMZ", groups[1].String())

	group, err := client.GetGroupByName("DMZ")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), group.GroupID)

	_, err = client.GetGroupByName("dmz")
	assert.Error(t, err)
}
