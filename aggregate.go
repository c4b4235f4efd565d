package RSClientGo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Note that this is the "generic" function and so it is up to the consumer to unmarshal the response to the correct type
// you can use Aggregate or the dashboard convenience functions to do this for you
func (c RSClient) AggregateRaw(subject Subject, request AggregateRequest) ([]byte, error) {
	c.logger.Debugf("Fetching %v aggregate on %v for %v", request.EsAggregator, request.Field, subject)
	if subject == "" {
		return nil, fmt.Errorf("aggregate requires a subject")
	}
	if request.EsAggregator == "" {
		return nil, fmt.Errorf("aggregate requires an esAggregator")
	}
	request.Subject = subject

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	response, err := c.sendRequestClient(http.MethodPost, fmt.Sprintf("/search/%v/aggregate", subject), bytes.NewReader(jsonBody), nil)
	if err != nil {
		c.logger.Tracef("Aggregate on %v failed: %s", subject, err)
	}
	return response, err
}

func (c RSClient) Aggregate(subject Subject, request AggregateRequest) (AggregateResponse, error) {
	var result AggregateResponse
	data, err := c.AggregateRaw(subject, request)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(data, &result)
	return result, err
}

// returns the bucket with the given key, searching sub-aggregations depth-first
func (r AggregateResponse) Bucket(key string) (AggregateBucket, bool) {
	return findBucket(r.Buckets, key)
}

func findBucket(buckets []AggregateBucket, key string) (AggregateBucket, bool) {
	for _, b := range buckets {
		if b.Key == key {
			return b, true
		}
		if sub, ok := findBucket(b.SubAggregations, key); ok {
			return sub, true
		}
	}
	return AggregateBucket{}, false
}

// flattens one level of buckets into key => count
func (r AggregateResponse) Counts() map[string]uint64 {
	counts := make(map[string]uint64, len(r.Buckets))
	for _, b := range r.Buckets {
		counts[b.Key] = b.Count
	}
	return counts
}

func (b AggregateBucket) Counts() map[string]uint64 {
	counts := make(map[string]uint64, len(b.SubAggregations))
	for _, s := range b.SubAggregations {
		counts[s.Key] = s.Count
	}
	return counts
}
