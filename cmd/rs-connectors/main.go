package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/risksense-community/RSClientGo"
	"github.com/risksense-community/RSClientGo/internal/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "rs-connectors",
		Short: "Manage RiskSense connectors",
	}
	opts := cliutil.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCommand(opts),
		newGetCommand(opts),
		newRunCommand(opts),
		newJobsCommand(opts),
		newDeleteCommand(opts),
		newScheduleCommand(opts),
		newTypesCommand(),
	)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(opts *cliutil.Options) (*RSClientGo.RSClient, *logrus.Logger) {
	cfg, logger, err := opts.Setup()
	if err != nil {
		logrus.Fatalf("Unable to load configuration: %s", err)
	}
	client, err := cliutil.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Error creating client: %s", err)
	}
	return client, logger
}

// connectors can be named by id or by name
func lookupConnector(client *RSClientGo.RSClient, logger *logrus.Logger, arg string) RSClientGo.Connector {
	var connector RSClientGo.Connector
	var err error
	if id, perr := strconv.ParseUint(arg, 10, 64); perr == nil {
		connector, err = client.GetConnectorByID(id)
	} else {
		connector, err = client.GetConnectorByName(arg)
	}
	if err != nil {
		logger.Fatalf("Unable to find connector %v: %s", arg, err)
	}
	return connector
}

func newListCommand(opts *cliutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the connectors of the client",
		Run: func(cmd *cobra.Command, args []string) {
			client, logger := setup(opts)
			connectors, err := client.GetAllConnectors()
			if err != nil {
				logger.Fatalf("Unable to list connectors: %s", err)
			}
			renderConnectors(os.Stdout, connectors)
		},
	}
}

func newGetCommand(opts *cliutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|name>",
		Short: "Show one connector",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, logger := setup(opts)
			connector := lookupConnector(client, logger, args[0])

			out, err := json.MarshalIndent(connector, "", "  ")
			if err != nil {
				logger.Fatalf("Unable to format connector: %s", err)
			}
			fmt.Println(string(out))
		},
	}
}

func newRunCommand(opts *cliutil.Options) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "run <id|name>",
		Short: "Start a connector job",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, logger := setup(opts)
			connector := lookupConnector(client, logger, args[0])

			job, err := client.RunConnectorByID(connector.ConnectorID)
			if err != nil {
				logger.Fatalf("Unable to run connector %v: %s", connector.String(), err)
			}
			logger.Infof("Started %v", job.String())

			if wait {
				job, err = client.ConnectorJobPollingByID(connector.ConnectorID, job.JobID)
				if err != nil {
					logger.Fatalf("Connector job did not complete: %s", err)
				}
				logger.Infof("Finished %v", job.String())
			}
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the job to finish")
	return cmd
}

func newJobsCommand(opts *cliutil.Options) *cobra.Command {
	var count uint64

	cmd := &cobra.Command{
		Use:   "jobs <id|name>",
		Short: "List the most recent jobs of a connector",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, logger := setup(opts)
			connector := lookupConnector(client, logger, args[0])

			jobs, err := client.GetConnectorJobsByID(connector.ConnectorID, count)
			if err != nil {
				logger.Fatalf("Unable to list jobs of %v: %s", connector.String(), err)
			}
			renderJobs(os.Stdout, jobs)
		},
	}

	cmd.Flags().Uint64Var(&count, "count", 10, "number of jobs to show")
	return cmd
}

func newDeleteCommand(opts *cliutil.Options) *cobra.Command {
	var deleteData, yes bool

	cmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a connector",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, logger := setup(opts)
			connector := lookupConnector(client, logger, args[0])

			if !yes {
				logger.Fatalf("Refusing to delete %v without --yes", connector.String())
			}
			if err := client.DeleteConnectorByID(connector.ConnectorID, deleteData); err != nil {
				logger.Fatalf("Unable to delete %v: %s", connector.String(), err)
			}
			logger.Infof("Deleted %v", connector.String())
		},
	}

	cmd.Flags().BoolVar(&deleteData, "delete-data", false, "also delete the findings imported by the connector")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newScheduleCommand(opts *cliutil.Options) *cobra.Command {
	var frequency string
	var hour int
	var days []int
	var disable bool

	cmd := &cobra.Command{
		Use:   "schedule <id|name>",
		Short: "Change when a scanner connector runs",
		Long:  "Change when a scanner connector runs. WEEKLY takes days of the week (1-7), MONTHLY days of the month (1-31).",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			freq, err := RSClientGo.ParseScheduleFrequency(frequency)
			if err != nil {
				logrus.Fatalf("Invalid schedule: %s", err)
			}

			var schedule RSClientGo.ConnectorSchedule
			switch freq {
			case RSClientGo.ScheduleDaily:
				schedule = RSClientGo.DailySchedule(hour)
			case RSClientGo.ScheduleWeekly:
				schedule = RSClientGo.WeeklySchedule(hour, days...)
			case RSClientGo.ScheduleMonthly:
				schedule = RSClientGo.MonthlySchedule(hour, days...)
			}
			schedule.Enabled = !disable
			if err := schedule.Validate(); err != nil {
				logrus.Fatalf("Invalid schedule: %s", err)
			}

			client, logger := setup(opts)
			connector := lookupConnector(client, logger, args[0])
			updated, err := client.UpdateConnectorScheduleByID(connector.ConnectorID, schedule)
			if err != nil {
				logger.Fatalf("Unable to update the schedule of %v: %s", connector.String(), err)
			}
			logger.Infof("%v now runs %v", updated.String(), updated.Schedule.String())
		},
	}

	cmd.Flags().StringVar(&frequency, "frequency", "DAILY", "DAILY, WEEKLY or MONTHLY")
	cmd.Flags().IntVar(&hour, "hour", 0, "hour of day (0-23)")
	cmd.Flags().IntSliceVar(&days, "days", nil, "days of the week or month, for WEEKLY and MONTHLY schedules")
	cmd.Flags().BoolVar(&disable, "disable", false, "keep the schedule but disable it")
	return cmd
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported connector types and their options",
		Run: func(cmd *cobra.Command, args []string) {
			renderTypes(os.Stdout, RSClientGo.ConnectorTypes())
		},
	}
}
