package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func (t Tag) String() string {
	return fmt.Sprintf("[%d] %v (%v)", t.TagID, t.Name, t.Type)
}

// the tag endpoint takes a list of uid/value pairs rather than a plain object
func (r TagRequest) body() (map[string]interface{}, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("tag name is required")
	}
	tagType := r.Type
	if tagType == "" {
		tagType = TagTypeCustom
	}
	color := r.Color
	if color == "" {
		color = "#648d9f"
	}

	fields := []map[string]interface{}{
		{"uid": "TAG_TYPE", "value": tagType},
		{"uid": "NAME", "value": r.Name},
		{"uid": "DESCRIPTION", "value": r.Description},
		{"uid": "COLOR", "value": color},
		{"uid": "LOCKED", "value": r.Locked},
	}
	if r.Owner != 0 {
		fields = append(fields, map[string]interface{}{"uid": "OWNER", "value": r.Owner})
	}

	return map[string]interface{}{"fields": fields}, nil
}

func (c RSClient) CreateTag(request TagRequest) (Tag, error) {
	c.logger.Debugf("Create Tag: %v", request.Name)
	var tag Tag

	data, err := request.body()
	if err != nil {
		return tag, err
	}
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return tag, err
	}

	response, err := c.sendRequestClient(http.MethodPost, "/tag", bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Error while creating tag %v: %s", request.Name, err)
		return tag, err
	}

	err = json.Unmarshal(response, &tag)
	return tag, err
}

func (c RSClient) GetTagsFiltered(filter TagFilter) (uint64, []Tag, error) {
	var tags []Tag

	if filter.Filters == nil {
		filter.Filters = []Filter{}
	}
	jsonBody, err := json.Marshal(map[string]interface{}{
		"filters":    filter.Filters,
		"projection": "basic",
		"page":       filter.Page,
		"size":       filter.Size,
	})
	if err != nil {
		return 0, tags, err
	}

	response, err := c.sendRequestClient(http.MethodPost, "/tag/search", bytes.NewReader(jsonBody), nil)
	if err != nil {
		return 0, tags, fmt.Errorf("failed to fetch tags: %s", err)
	}

	page, err := decodeEmbedded(response, "tags", &tags)
	return page.TotalElements, tags, err
}

func (c RSClient) GetAllTagsFiltered(filter TagFilter) (uint64, []Tag, error) {
	var tags []Tag

	count, ts, err := c.GetTagsFiltered(filter)
	tags = ts

	for err == nil && filter.hasMore(count) {
		filter.Bump()
		_, ts, err = c.GetTagsFiltered(filter)
		tags = append(tags, ts...)
	}

	return count, tags, err
}

func (c RSClient) GetTags() ([]Tag, error) {
	c.logger.Debug("Get All RiskSense Tags")
	_, tags, err := c.GetAllTagsFiltered(TagFilter{BaseFilter: BaseFilter{Size: c.pagination.Tags}})
	return tags, err
}

// case-sensitive exact match for a tag name
func (c RSClient) GetTagByName(name string) (Tag, error) {
	_, tags, err := c.GetAllTagsFiltered(TagFilter{
		BaseFilter: BaseFilter{Size: c.pagination.Tags},
		FilterRequest: FilterRequest{
			Filters: []Filter{{Field: "name", Operator: FilterOperatorExact, Value: name}},
		},
	})
	if err != nil {
		return Tag{}, err
	}

	for _, t := range tags {
		if t.Name == name {
			return t, nil
		}
	}
	return Tag{}, fmt.Errorf("no tag matching %v found", name)
}

func (c RSClient) DeleteTagByID(tagID uint64) error {
	c.logger.Debugf("Deleting Tag %d", tagID)
	_, err := c.sendRequestClient(http.MethodDelete, fmt.Sprintf("/tag/%d", tagID), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting tag %d failed: %s", tagID, err)
	}
	return nil
}

// tags (or with remove=true untags) every finding matching the filter; the platform does this as a job
func (c RSClient) TagFindingsFiltered(subject Subject, tagID uint64, filter FilterRequest, remove bool) (TagJob, error) {
	c.logger.Debugf("Tagging %v matching %d filters with tag %d (remove: %v)", subject, len(filter.Filters), tagID, remove)
	var job TagJob

	if filter.Filters == nil {
		filter.Filters = []Filter{}
	}
	jsonBody, err := json.Marshal(map[string]interface{}{
		"tagId":         tagID,
		"isRemove":      remove,
		"filterRequest": filter,
	})
	if err != nil {
		return job, err
	}

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/search/%v/tag", subject), bytes.NewReader(jsonBody), nil)
	if err != nil {
		return job, fmt.Errorf("failed to tag %v with tag %d: %s", subject, tagID, err)
	}

	err = json.Unmarshal(response, &job)
	return job, err
}

func (c RSClient) GetTagJobByID(jobID uint64) (TagJob, error) {
	var job TagJob
	response, err := c.sendRequestClient(http.MethodGet, fmt.Sprintf("/job/%d", jobID), nil, nil)
	if err != nil {
		return job, fmt.Errorf("failed to fetch job %d: %s", jobID, err)
	}
	err = json.Unmarshal(response, &job)
	return job, err
}

func (c RSClient) TagJobPollingByID(jobID uint64) (TagJob, error) {
	return c.TagJobPollingByIDWithTimeout(jobID, c.consts.TagJobPollingDelaySeconds, c.consts.TagJobPollingMaxSeconds)
}

func (c RSClient) TagJobPollingByIDWithTimeout(jobID uint64, delaySeconds, maxSeconds int) (TagJob, error) {
	pollingCounter := 0
	for {
		job, err := c.GetTagJobByID(jobID)
		if err != nil {
			return job, err
		}

		switch job.Status {
		case JobStatusCompleted:
			return job, nil
		case JobStatusFailed, JobStatusCancelled:
			return job, fmt.Errorf("tagging job %d ended with status %v", jobID, job.Status)
		}

		if maxSeconds != 0 && pollingCounter >= maxSeconds {
			return job, fmt.Errorf("tagging job %d polling reached %d seconds, aborting - use rsclient.get/setclientvars to change", jobID, pollingCounter)
		}

		time.Sleep(time.Duration(delaySeconds) * time.Second)
		pollingCounter += max(delaySeconds, 1)
	}
}
