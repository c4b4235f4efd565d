// Package wizard walks a user through creating a ticket for a set of findings:
// build a filter, fill in the ticketing connector's form, create the ticket and
// optionally tag the ticketed findings.
package wizard

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/risksense-community/RSClientGo"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type API interface {
	FieldValuesAPI
	GetFilterFields(subject RSClientGo.Subject) ([]RSClientGo.FilterField, error)
	SearchCount(subject RSClientGo.Subject, filter RSClientGo.FilterRequest) (uint64, error)
	GetTicketFormFields(connectorID uint64) ([]RSClientGo.TicketFormField, error)
	ValidateTicketForm(connectorID uint64, fields []RSClientGo.TicketFormField) (RSClientGo.TicketValidation, error)
	CreateTicket(subject RSClientGo.Subject, request RSClientGo.TicketRequest) (RSClientGo.Ticket, error)
	CreateTag(request RSClientGo.TagRequest) (RSClientGo.Tag, error)
	TagFindingsFiltered(subject RSClientGo.Subject, tagID uint64, filter RSClientGo.FilterRequest, remove bool) (RSClientGo.TagJob, error)
}

var allOperators = []string{
	RSClientGo.FilterOperatorExact,
	RSClientGo.FilterOperatorIn,
	RSClientGo.FilterOperatorLike,
	RSClientGo.FilterOperatorWildcard,
	RSClientGo.FilterOperatorRange,
}

var ErrCancelled = errors.New("ticket creation cancelled")

type Wizard struct {
	api         API
	prompter    *Prompter
	logger      *logrus.Logger
	subject     RSClientGo.Subject
	connectorID uint64
}

type Result struct {
	Filter   RSClientGo.FilterRequest
	Count    uint64
	Ticket   RSClientGo.Ticket
	Tag      *RSClientGo.Tag
	TagJobID uint64
}

func New(api API, prompter *Prompter, logger *logrus.Logger, subject RSClientGo.Subject, connectorID uint64) *Wizard {
	return &Wizard{
		api:         api,
		prompter:    prompter,
		logger:      logger,
		subject:     subject,
		connectorID: connectorID,
	}
}

// BuildFilter adds filters one at a time, showing how many findings match after each.
// A filter that leaves nothing to ticket is an error.
func (w *Wizard) BuildFilter() (RSClientGo.FilterRequest, uint64, error) {
	var filter RSClientGo.FilterRequest

	fields, err := w.api.GetFilterFields(w.subject)
	if err != nil {
		return filter, 0, errors.Wrapf(err, "unable to list filter fields for %v", w.subject)
	}
	fieldNames := lo.Map(fields, func(f RSClientGo.FilterField, _ int) string {
		return fmt.Sprintf("%v (%v)", f.Name, f.UID)
	})

	var count uint64
	for {
		idx, err := w.prompter.Choose("Filter on field", fieldNames, false)
		if err != nil {
			return filter, 0, err
		}
		field := fields[idx]

		operators := field.Operators
		if len(operators) == 0 {
			operators = allOperators
		}
		op, err := w.prompter.Choose("Operator", operators, false)
		if err != nil {
			return filter, 0, err
		}

		value, err := w.prompter.AskRequired(fmt.Sprintf("Value for %v", field.Name))
		if err != nil {
			return filter, 0, err
		}
		exclusive, err := w.prompter.Confirm("Exclude findings matching this filter?")
		if err != nil {
			return filter, 0, err
		}

		filter.Add(field.UID, operators[op], value, exclusive)
		w.logger.Debugf("Added filter %v", filter.Filters[len(filter.Filters)-1])

		count, err = w.api.SearchCount(w.subject, filter)
		if err != nil {
			return filter, 0, errors.Wrap(err, "unable to count matching findings")
		}
		w.prompter.Printf("%d %v match the current filters\n", count, w.subject)
		if count == 0 {
			return filter, 0, errors.Errorf("no %v match filters %v", w.subject, filter.Filters)
		}

		more, err := w.prompter.Confirm("Add another filter?")
		if err != nil {
			return filter, 0, err
		}
		if !more {
			return filter, count, nil
		}
	}
}

func (w *Wizard) FillForm() ([]RSClientGo.TicketFormField, error) {
	fields, err := w.api.GetTicketFormFields(w.connectorID)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to fetch the ticket form of connector %d", w.connectorID)
	}
	w.logger.Debugf("Ticket form of connector %d has %d fields", w.connectorID, len(fields))

	return NewResolver(w.api, w.prompter, w.connectorID).Resolve(fields)
}

func (w *Wizard) Run() (Result, error) {
	var result Result
	var err error

	result.Filter, result.Count, err = w.BuildFilter()
	if err != nil {
		return result, err
	}

	form, err := w.FillForm()
	if err != nil {
		return result, err
	}

	validation, err := w.api.ValidateTicketForm(w.connectorID, form)
	if err != nil {
		return result, errors.Wrap(err, "unable to validate the ticket form")
	}
	if !validation.Valid {
		for _, e := range validation.Errors {
			w.prompter.Printf("  %v: %v\n", e.FieldName, e.Message)
		}
		return result, errors.Errorf("ticket form was rejected: %v", validation)
	}

	ok, err := w.prompter.Confirm(fmt.Sprintf("Create a ticket for %d %v?", result.Count, w.subject))
	if err != nil {
		return result, err
	}
	if !ok {
		return result, ErrCancelled
	}

	result.Ticket, err = w.api.CreateTicket(w.subject, RSClientGo.TicketRequest{
		ConnectorID:   w.connectorID,
		FilterRequest: result.Filter,
		Fields:        form,
	})
	if err != nil {
		return result, errors.Wrap(err, "unable to create ticket")
	}
	w.logger.Infof("Created %v", result.Ticket.String())
	w.prompter.Printf("Created %v %v\n", result.Ticket.String(), result.Ticket.TicketURL)

	return result, w.tag(&result)
}

func (w *Wizard) tag(result *Result) error {
	ok, err := w.prompter.Confirm("Tag the ticketed findings?")
	if err != nil || !ok {
		return err
	}

	name, err := w.prompter.AskRequired("Tag name")
	if err != nil {
		return err
	}

	tag, err := w.api.CreateTag(RSClientGo.TagRequest{
		Name:        name,
		Type:        RSClientGo.TagTypeRemediation,
		Description: fmt.Sprintf("Findings in ticket %v", result.Ticket.TicketNumber),
	})
	if err != nil {
		return errors.Wrapf(err, "unable to create tag %v", name)
	}
	result.Tag = &tag

	job, err := w.api.TagFindingsFiltered(w.subject, tag.TagID, result.Filter, false)
	if err != nil {
		return errors.Wrapf(err, "unable to tag findings with %v", tag.Name)
	}
	result.TagJobID = job.JobID
	w.logger.Infof("Tagging %d %v with %v in job %d", result.Count, w.subject, tag.String(), job.JobID)
	return nil
}
