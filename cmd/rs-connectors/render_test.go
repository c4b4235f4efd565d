package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/risksense-community/RSClientGo"
	"github.com/stretchr/testify/assert"
)

func TestRenderConnectors(t *testing.T) {
	var out bytes.Buffer
	renderConnectors(&out, []RSClientGo.Connector{
		{ConnectorID: 1, Name: "Nessus", Type: RSClientGo.ConnectorNessus, Schedule: RSClientGo.DailySchedule(2),
			LastJob: &RSClientGo.ConnectorJob{Status: RSClientGo.JobStatusFailed}},
		{ConnectorID: 2, Name: "Jira", Type: RSClientGo.ConnectorJira},
	})

	text := out.String()
	assert.Contains(t, text, "daily at 02:00")
	assert.Contains(t, text, "FAILED")
	assert.Contains(t, text, "TICKETING")
}

func TestRenderJobs(t *testing.T) {
	var out bytes.Buffer
	started := RSClientGo.RSTime{Time: time.Date(2024, 8, 12, 10, 57, 0, 0, time.UTC)}
	renderJobs(&out, []RSClientGo.ConnectorJob{
		{JobID: 99, Status: RSClientGo.JobStatusRunning, StartedAt: started},
	})

	text := out.String()
	assert.Contains(t, text, "2024-08-12 10:57")
	assert.Contains(t, text, "RUNNING")
	assert.Equal(t, "-", formatTime(RSClientGo.RSTime{}))
}

func TestRenderTypes(t *testing.T) {
	var out bytes.Buffer
	renderTypes(&out, []RSClientGo.ConnectorType{RSClientGo.ConnectorAWSInspector})
	assert.Contains(t, out.String(), "accessKey, secretKey, region")
}
