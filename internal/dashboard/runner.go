package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/risksense-community/RSClientGo"
	"github.com/sirupsen/logrus"
)

type Aggregator interface {
	AggregateRaw(subject RSClientGo.Subject, request RSClientGo.AggregateRequest) ([]byte, error)
}

type Runner struct {
	api     Aggregator
	subject RSClientGo.Subject
	logger  *logrus.Logger
	now     func() time.Time
}

type Result struct {
	Widget Widget
	Points []Point
	Err    error
}

func NewRunner(api Aggregator, subject RSClientGo.Subject, logger *logrus.Logger) *Runner {
	return &Runner{
		api:     api,
		subject: subject,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *Runner) Run(w Widget) ([]Point, error) {
	subject := r.subject
	if w.Subject != "" {
		subject = w.Subject
	}

	r.logger.Debugf("Evaluating widget %v on %v", w.Name, subject)
	data, err := r.api.AggregateRaw(subject, w.Build(r.now(), subject))
	if err != nil {
		return nil, errors.Wrapf(err, "widget %v", w.Name)
	}

	points, err := Evaluate(w.Query, data)
	if err != nil {
		return nil, errors.Wrapf(err, "widget %v", w.Name)
	}
	return points, nil
}

// RunAll evaluates every widget; a failing widget does not stop the others
func (r *Runner) RunAll(widgets []Widget) []Result {
	results := make([]Result, 0, len(widgets))
	for _, w := range widgets {
		points, err := r.Run(w)
		if err != nil {
			r.logger.Warnf("Failed to evaluate widget %v: %s", w.Name, err)
		}
		results = append(results, Result{Widget: w, Points: points, Err: err})
	}
	return results
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func Render(out io.Writer, results []Result) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Widget", "Label", "Value"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(false)

	for _, res := range results {
		if res.Err != nil {
			table.Append([]string{res.Widget.Title, "error", fmt.Sprint(res.Err)})
			continue
		}
		if len(res.Points) == 0 {
			table.Append([]string{res.Widget.Title, "-", "0"})
			continue
		}
		for _, p := range res.Points {
			table.Append([]string{res.Widget.Title, p.Label, formatValue(p.Value)})
		}
	}
	table.Render()
}
