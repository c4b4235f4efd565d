package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/risksense-community/RSClientGo"
)

func renderConnectors(out io.Writer, connectors []RSClientGo.Connector) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Type", "Category", "Schedule", "Last job"})
	for _, c := range connectors {
		schedule := "-"
		if !c.Type.IsTicketing() {
			schedule = c.Schedule.String()
		}
		lastJob := "-"
		if c.LastJob != nil {
			lastJob = c.LastJob.Status
		}
		table.Append([]string{
			strconv.FormatUint(c.ConnectorID, 10), c.Name, string(c.Type),
			string(c.Type.Category()), schedule, lastJob,
		})
	}
	table.Render()
}

func renderJobs(out io.Writer, jobs []RSClientGo.ConnectorJob) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Job", "Status", "Started", "Finished", "Message"})
	for _, j := range jobs {
		table.Append([]string{
			strconv.FormatUint(j.JobID, 10), j.Status,
			formatTime(j.StartedAt), formatTime(j.FinishedAt), j.Message,
		})
	}
	table.Render()
}

func renderTypes(out io.Writer, types []RSClientGo.ConnectorType) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Type", "Category", "Credentials", "Options"})
	for _, t := range types {
		table.Append([]string{
			string(t), string(t.Category()),
			strings.Join(t.CredentialKeys(), ", "), strings.Join(t.AttributeKeys(), ", "),
		})
	}
	table.Render()
}

func formatTime(t RSClientGo.RSTime) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
