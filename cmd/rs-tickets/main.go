package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/risksense-community/RSClientGo"
	"github.com/risksense-community/RSClientGo/internal/cliutil"
	"github.com/risksense-community/RSClientGo/internal/wizard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// dropdown values and filter fields are looked up through the cache for the lifetime of the wizard
type cachedAPI struct {
	*RSClientGo.RSClient
	cache *RSClientGo.RSCache
}

func (a cachedAPI) GetTicketFieldValues(connectorID uint64, fieldName string, dependencies map[string]string) ([]RSClientGo.TicketFieldValue, error) {
	return a.cache.GetTicketFieldValues(a.RSClient, connectorID, fieldName, dependencies)
}

func (a cachedAPI) GetFilterFields(subject RSClientGo.Subject) ([]RSClientGo.FilterField, error) {
	return a.cache.GetFilterFields(a.RSClient, subject)
}

func main() {
	cmd := &cobra.Command{
		Use:   "rs-tickets",
		Short: "Create tickets for RiskSense findings",
		Long:  "Create tickets in a ticketing connector (Jira, ServiceNow, Cherwell, Ivanti) for the findings matching a filter.",
	}
	opts := cliutil.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCreateCommand(opts), newFieldsCommand(opts))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(opts *cliutil.Options) (*RSClientGo.RSClient, *logrus.Logger, RSClientGo.Subject, string) {
	cfg, logger, err := opts.Setup()
	if err != nil {
		logrus.Fatalf("Unable to load configuration: %s", err)
	}
	client, err := cliutil.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Error creating client: %s", err)
	}
	return client, logger, cliutil.Subject(cfg), cfg.ConnectorName
}

// finds the ticketing connector by id or name, or asks for one when neither is given
func pickConnector(cache *RSClientGo.RSCache, prompter *wizard.Prompter, name string) (*RSClientGo.Connector, error) {
	if name != "" {
		if id, err := strconv.ParseUint(name, 10, 64); err == nil {
			return cache.GetConnector(id)
		}
		return cache.GetConnectorByName(name)
	}

	connectors := cache.GetTicketingConnectors()
	if len(connectors) == 0 {
		return nil, fmt.Errorf("no ticketing connectors configured")
	}
	options := make([]string, len(connectors))
	for i, c := range connectors {
		options[i] = c.String()
	}
	idx, err := prompter.Choose("Ticketing connector", options, false)
	if err != nil {
		return nil, err
	}
	return &connectors[idx], nil
}

func newCreateCommand(opts *cliutil.Options) *cobra.Command {
	var connectorName, subject string
	var waitForTags bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Interactively build a filter and create a ticket for the matching findings",
		Run: func(cmd *cobra.Command, args []string) {
			client, logger, defaultSubject, defaultConnector := setup(opts)
			if subject == "" {
				subject = string(defaultSubject)
			}
			if connectorName == "" {
				connectorName = defaultConnector
			}

			cache := RSClientGo.NewRSCache(30 * time.Minute)
			if err := cache.RefreshConnectors(client); err != nil {
				logger.Fatalf("Unable to list connectors: %s", err)
			}
			logger.Infof("Cache holds %v", cache.ConnectorSummary())

			prompter := wizard.NewPrompter(os.Stdin, os.Stdout)
			connector, err := pickConnector(cache, prompter, connectorName)
			if err != nil {
				logger.Fatalf("Unable to select connector: %s", err)
			}
			if !connector.Type.IsTicketing() {
				logger.Fatalf("Connector %v is a %v connector, not a ticketing one", connector.String(), connector.Type.Category())
			}

			api := cachedAPI{RSClient: client, cache: cache}
			result, err := wizard.New(api, prompter, logger, RSClientGo.Subject(subject), connector.ConnectorID).Run()
			if err != nil {
				logger.Fatalf("Ticket creation failed: %s", err)
			}

			if waitForTags && result.Tag != nil {
				job, err := client.TagJobPollingByID(result.TagJobID)
				if err != nil {
					logger.Fatalf("Tagging findings with %v failed: %s", result.Tag.String(), err)
				}
				logger.Infof("Tagging job %d finished with status %v", job.JobID, job.Status)
			}
		},
	}

	cmd.Flags().StringVar(&connectorName, "connector", "", "ticketing connector name or id (default: connector_name from the configuration)")
	cmd.Flags().StringVar(&subject, "subject", "", "hostFinding or applicationFinding (default: subject from the configuration)")
	cmd.Flags().BoolVar(&waitForTags, "wait", false, "wait for the tagging job to finish")
	return cmd
}

func newFieldsCommand(opts *cliutil.Options) *cobra.Command {
	var connectorName string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Show the ticket form of a ticketing connector",
		Run: func(cmd *cobra.Command, args []string) {
			client, logger, _, defaultConnector := setup(opts)
			if connectorName == "" {
				connectorName = defaultConnector
			}

			cache := RSClientGo.NewRSCache(time.Minute)
			if err := cache.RefreshConnectors(client); err != nil {
				logger.Fatalf("Unable to list connectors: %s", err)
			}
			connector, err := pickConnector(cache, wizard.NewPrompter(os.Stdin, os.Stdout), connectorName)
			if err != nil {
				logger.Fatalf("Unable to select connector: %s", err)
			}

			fields, err := client.GetTicketFormFields(connector.ConnectorID)
			if err != nil {
				logger.Fatalf("Unable to fetch the ticket form: %s", err)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Field", "Name", "Type", "Required", "Depends on", "Same as", "Values"})
			for _, f := range fields {
				values := make([]string, 0, len(f.Values))
				for _, v := range f.Values {
					values = append(values, v.Value)
				}
				table.Append([]string{
					f.FieldName, f.DisplayName, f.FieldType, strconv.FormatBool(f.Required),
					f.DependsOn(), f.CopiesFrom(), strings.Join(values, ", "),
				})
			}
			table.Render()
		},
	}

	cmd.Flags().StringVar(&connectorName, "connector", "", "ticketing connector name or id (default: connector_name from the configuration)")
	return cmd
}
