package RSClientGo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
)

func (j ConnectorJob) String() string {
	return fmt.Sprintf("job %d of connector %d: %v", j.JobID, j.ConnectorID, j.Status)
}

func (j ConnectorJob) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// starts the connector immediately; returns the queued job which can be passed to ConnectorJobPollingByID
func (c RSClient) RunConnectorByID(connectorID uint64) (ConnectorJob, error) {
	c.logger.Debugf("Running Connector %d", connectorID)
	var job ConnectorJob

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/connector/%d/run", connectorID), nil, nil)
	if err != nil {
		return job, fmt.Errorf("failed to trigger connector %d: %s", connectorID, err)
	}

	err = json.Unmarshal(response, &job)
	if job.ConnectorID == 0 {
		job.ConnectorID = connectorID
	}
	return job, err
}

func (c RSClient) GetConnectorJobByID(connectorID, jobID uint64) (ConnectorJob, error) {
	var job ConnectorJob

	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/connector/%d/job/%d", connectorID, jobID), nil, nil)
	if err != nil {
		c.logger.Tracef("Failed to fetch job %d for connector %d: %s", jobID, connectorID, err)
		return job, fmt.Errorf("failed to fetch job %d for connector %d: %s", jobID, connectorID, err)
	}

	err = json.Unmarshal(response, &job)
	return job, err
}

// returns the number of jobs matching the filter and one page of those jobs, newest first
func (c RSClient) GetConnectorJobsFiltered(connectorID uint64, filter ConnectorJobFilter) (uint64, []ConnectorJob, error) {
	params, _ := query.Values(filter)
	var jobs []ConnectorJob

	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/connector/%d/job?%v", connectorID, params.Encode()), nil, nil)
	if err != nil {
		err = fmt.Errorf("failed to fetch jobs for connector %d matching filter %v: %s", connectorID, params.Encode(), err)
		c.logger.Tracef("Error: %s", err)
		return 0, jobs, err
	}

	page, err := decodeEmbedded(response, "jobs", &jobs)
	return page.TotalElements, jobs, err
}

// Retrieves the latest 'count' jobs of a connector
func (c RSClient) GetConnectorJobsByID(connectorID uint64, count uint64) ([]ConnectorJob, error) {
	c.logger.Debugf("Get %d jobs of connector %d", count, connectorID)
	filter := ConnectorJobFilter{BaseFilter: BaseFilter{Size: c.pagination.ConnectorJobs}}
	if count < filter.Size {
		filter.Size = count
	}

	total, jobs, err := c.GetConnectorJobsFiltered(connectorID, filter)
	for err == nil && filter.hasMore(total) && uint64(len(jobs)) < count {
		filter.Bump()
		var js []ConnectorJob
		_, js, err = c.GetConnectorJobsFiltered(connectorID, filter)
		jobs = append(jobs, js...)
	}

	if uint64(len(jobs)) > count {
		return jobs[:count], err
	}
	return jobs, err
}

// convenience function, polls until the job finishes
func (c RSClient) ConnectorJobPollingByID(connectorID, jobID uint64) (ConnectorJob, error) {
	return c.ConnectorJobPollingByIDWithTimeout(connectorID, jobID, c.consts.ConnectorJobPollingDelaySeconds, c.consts.ConnectorJobPollingMaxSeconds)
}

func (c RSClient) ConnectorJobPollingByIDWithTimeout(connectorID, jobID uint64, delaySeconds, maxSeconds int) (ConnectorJob, error) {
	pollingCounter := 0
	for {
		job, err := c.GetConnectorJobByID(connectorID, jobID)
		if err != nil {
			return job, err
		}

		if job.IsFinished() {
			if job.Status != JobStatusCompleted {
				return job, fmt.Errorf("connector %d job %d ended with status %v: %v", connectorID, jobID, job.Status, job.Message)
			}
			return job, nil
		}

		if maxSeconds != 0 && pollingCounter >= maxSeconds {
			return job, fmt.Errorf("connector %d job %d polling reached %d seconds, aborting - use rsclient.get/setclientvars to change", connectorID, jobID, pollingCounter)
		}

		c.logger.Debugf("Connector %d job %d status: %v", connectorID, jobID, job.Status)
		time.Sleep(time.Duration(delaySeconds) * time.Second)
		pollingCounter += max(delaySeconds, 1)
	}
}
