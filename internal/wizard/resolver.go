package wizard

import (
	"github.com/pkg/errors"
	"github.com/risksense-community/RSClientGo"
	"github.com/samber/lo"
)

type FieldValuesAPI interface {
	GetTicketFieldValues(connectorID uint64, fieldName string, dependencies map[string]string) ([]RSClientGo.TicketFieldValue, error)
}

const (
	unvisited = iota
	visiting
	resolved
)

// Resolver fills in a ticket form. Fields that reference another field are asked after it,
// so that dependent dropdowns can be looked up with the referenced value.
type Resolver struct {
	api         FieldValuesAPI
	prompter    *Prompter
	connectorID uint64

	fields []RSClientGo.TicketFormField
	index  map[string]int
	state  map[string]int
}

func NewResolver(api FieldValuesAPI, prompter *Prompter, connectorID uint64) *Resolver {
	return &Resolver{
		api:         api,
		prompter:    prompter,
		connectorID: connectorID,
	}
}

// Resolve returns a copy of the fields with values filled in, in the original order
func (r *Resolver) Resolve(fields []RSClientGo.TicketFormField) ([]RSClientGo.TicketFormField, error) {
	r.fields = make([]RSClientGo.TicketFormField, len(fields))
	copy(r.fields, fields)
	r.index = make(map[string]int, len(fields))
	r.state = make(map[string]int, len(fields))

	for i, f := range r.fields {
		if _, ok := r.index[f.FieldName]; ok {
			return nil, errors.Errorf("ticket form has duplicate field %v", f.FieldName)
		}
		r.index[f.FieldName] = i
	}

	for _, f := range fields {
		if err := r.visit(f.FieldName, nil); err != nil {
			return nil, err
		}
	}
	return r.fields, nil
}

func (r *Resolver) visit(name string, path []string) error {
	i, ok := r.index[name]
	if !ok {
		if len(path) == 0 {
			return errors.Errorf("field %v is not part of the ticket form", name)
		}
		return errors.Errorf("field %v referenced by %v is not part of the ticket form", name, path[len(path)-1])
	}

	switch r.state[name] {
	case resolved:
		return nil
	case visiting:
		return errors.Errorf("ticket form fields depend on each other in a cycle: %v", append(path, name))
	}
	r.state[name] = visiting
	path = append(path, name)

	if ref := r.fields[i].DependsOn(); ref != "" {
		if err := r.visit(ref, path); err != nil {
			return err
		}
	}
	if same := r.fields[i].CopiesFrom(); same != "" {
		if err := r.visit(same, path); err != nil {
			return err
		}
		r.fields[i].Value = r.fields[r.index[same]].Value
		r.state[name] = resolved
		return nil
	}

	if err := r.ask(&r.fields[i]); err != nil {
		return err
	}
	r.state[name] = resolved
	return nil
}

func label(f *RSClientGo.TicketFormField) string {
	l := f.String()
	if f.Required {
		l += " *"
	}
	if f.Value != "" {
		l += " [" + f.Value + "]"
	}
	return l
}

func (r *Resolver) ask(f *RSClientGo.TicketFormField) error {
	if !f.IsDropdown() {
		return r.askText(f)
	}

	values := f.Values
	// a skipped optional reference leaves the static values in place
	if ref := f.DependsOn(); ref != "" && r.fields[r.index[ref]].Value != "" {
		deps := map[string]string{ref: r.fields[r.index[ref]].Value}
		var err error
		values, err = r.api.GetTicketFieldValues(r.connectorID, f.FieldName, deps)
		if err != nil {
			return errors.Wrapf(err, "unable to look up values for %v", f)
		}
	}

	if len(values) == 0 {
		if f.Required && f.Value == "" {
			return errors.Errorf("required field %v has no values to choose from", f)
		}
		return nil
	}

	options := lo.Map(values, func(v RSClientGo.TicketFieldValue, _ int) string {
		return v.Value
	})
	idx, err := r.prompter.Choose(label(f), options, !f.Required || f.Value != "")
	if err != nil {
		return err
	}
	if idx >= 0 {
		f.Value = values[idx].Key
	}
	return nil
}

func (r *Resolver) askText(f *RSClientGo.TicketFormField) error {
	for {
		answer, err := r.prompter.Ask(label(f))
		if err != nil {
			return err
		}
		if answer != "" {
			f.Value = answer
			return nil
		}
		if !f.Required || f.Value != "" {
			return nil
		}
		r.prompter.Printf("%v is required.\n", f)
	}
}
