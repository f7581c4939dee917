// Command casetrack-cli is the terminal front-end for a casetrack server.
// It drives the API client, renders the case table, and follows research
// jobs with the progress poller.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vrsandeep/casetrack-go/internal/client"
	"github.com/vrsandeep/casetrack-go/internal/models"
)

func main() {
	app := &cli.App{
		Name:  "casetrack-cli",
		Usage: "track legal cases and their research jobs from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the casetrack server",
				EnvVars: []string{"CASETRACK_SERVER"},
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			watchCommand(),
			getCommand(),
			addCommand(),
			updateCommand(),
			deleteCommand(),
			researchCommand(),
			researchAllCommand(),
			scheduleCommand(),
			statusCommand(),
			upcomingCommand(),
			importCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func apiClient(c *cli.Context) *client.Client {
	return client.New(c.String("server"))
}

func caseIDArg(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, fmt.Errorf("a case id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid case id %q", c.Args().First())
	}
	return id, nil
}

// printTable renders rows the way the web UI would: closed-case and
// unknown-date rules already applied by BuildTable.
func printTable(cases []*models.Case) error {
	return fprintTable(os.Stdout, cases)
}

func fprintTable(out io.Writer, cases []*models.Case) error {
	rows := client.BuildTable(cases)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCASE\tPARTIES\tSTATUS\tNEXT HEARING\tLAST HEARING\tJOB")
	for _, r := range rows {
		hearing := r.NextHearing
		if r.LowConfidence {
			hearing += " (!)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Parties, r.Status, hearing, r.LastHearing, r.Badge)
	}
	return w.Flush()
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list cases",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "filter by status (case-insensitive)"},
		},
		Action: func(c *cli.Context) error {
			cases, err := apiClient(c).ListCases(c.String("status"))
			if err != nil {
				return err
			}
			return printTable(cases)
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "render the case table and follow research jobs already in flight",
		Action: func(c *cli.Context) error {
			return watchCases(apiClient(c), os.Stdout, time.Second, 1500*time.Millisecond)
		},
	}
}

// watchCases refreshes the table through the syncer, resumes a poller for
// every case whose research job is in flight server-side, and re-renders
// the table after each job finishes.
func watchCases(api *client.Client, out io.Writer, interval, completionDelay time.Duration) error {
	syncer := client.NewSyncer(api, func(cases []*models.Case) error {
		return fprintTable(out, cases)
	})
	if err := syncer.Refresh(); err != nil {
		return err
	}

	active := 0
	for _, cs := range syncer.Cases() {
		if cs.HasActiveJob() {
			active++
		}
	}
	if active == 0 {
		return nil
	}

	refreshed := make(chan struct{}, active)
	poller := client.NewPoller(api, terminalView{out: out}, func() {
		if err := syncer.Refresh(); err != nil {
			log.Printf("List refresh failed: %v", err)
		}
		refreshed <- struct{}{}
	})
	poller.SetTiming(interval, completionDelay)
	poller.ResumeActive(syncer.Cases())

	for i := 0; i < active; i++ {
		<-refreshed
	}
	return nil
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "show one case",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := caseIDArg(c)
			if err != nil {
				return err
			}
			cs, err := apiClient(c).GetCase(id)
			if err != nil {
				return err
			}
			printCase(cs)
			return nil
		},
	}
}

func printCase(cs *models.Case) {
	row := client.BuildTable([]*models.Case{cs})[0]
	fmt.Printf("Case #%d: %s\n", cs.ID, cs.CaseName)
	fmt.Printf("  Status:       %s\n", cs.Status)
	fmt.Printf("  Next hearing: %s\n", row.NextHearing)
	fmt.Printf("  Last hearing: %s\n", row.LastHearing)
	if row.Parties != "" {
		fmt.Printf("  Parties:      %s\n", row.Parties)
	}
	if cs.DocketURL != "" {
		fmt.Printf("  Docket:       %s\n", cs.DocketURL)
	}
	if cs.Confidence != "" {
		fmt.Printf("  Confidence:   %s\n", cs.Confidence)
	}
	if cs.LastCheckedDate != nil {
		fmt.Printf("  Last checked: %s\n", cs.LastCheckedDate.Format("2006-01-02 15:04"))
	}
	if row.Badge != "" {
		fmt.Printf("  Research:     %s\n", row.Badge)
	}
	if cs.Notes != "" {
		fmt.Printf("  Notes:        %s\n", cs.Notes)
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "add a case",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true, Usage: "case name"},
			&cli.StringFlag{Name: "docket", Usage: "docket URL"},
			&cli.StringFlag{Name: "victim", Usage: "victim name"},
			&cli.StringFlag{Name: "suspect", Usage: "suspect name"},
			&cli.StringFlag{Name: "hearing", Usage: "next hearing date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "notes", Usage: "free-form notes"},
		},
		Action: func(c *cli.Context) error {
			created, err := apiClient(c).AddCase(client.NewCase{
				CaseName:        c.String("name"),
				DocketURL:       c.String("docket"),
				VictimName:      c.String("victim"),
				SuspectName:     c.String("suspect"),
				NextHearingDate: c.String("hearing"),
				Notes:           c.String("notes"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created case #%d: %s\n", created.ID, created.CaseName)
			return nil
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "update fields of a case",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "status"},
			&cli.StringFlag{Name: "hearing", Usage: "next hearing date"},
			&cli.StringFlag{Name: "notes"},
		},
		Action: func(c *cli.Context) error {
			id, err := caseIDArg(c)
			if err != nil {
				return err
			}
			var changes client.CaseChanges
			if c.IsSet("name") {
				v := c.String("name")
				changes.CaseName = &v
			}
			if c.IsSet("status") {
				v := c.String("status")
				changes.Status = &v
			}
			if c.IsSet("hearing") {
				v := c.String("hearing")
				changes.NextHearingDate = &v
			}
			if c.IsSet("notes") {
				v := c.String("notes")
				changes.Notes = &v
			}
			updated, err := apiClient(c).UpdateCase(id, changes)
			if err != nil {
				return err
			}
			printCase(updated)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a case",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := caseIDArg(c)
			if err != nil {
				return err
			}
			if _, err := apiClient(c).DeleteCase(id); err != nil {
				return err
			}
			fmt.Printf("Deleted case #%d\n", id)
			return nil
		},
	}
}

// terminalView prints progress in place on one line. Rows never vanish
// in the terminal, so the display target always exists.
type terminalView struct {
	out io.Writer
}

func (v terminalView) ShowProgress(caseID int64, percent int, message string) bool {
	fmt.Fprintf(v.out, "\r[case %d] %3d%% %-50s", caseID, percent, message)
	return true
}

func (v terminalView) ShowCompleted(caseID int64) bool {
	fmt.Fprintf(v.out, "\r[case %d] done%s\n", caseID, "                                              ")
	return true
}

func researchCommand() *cli.Command {
	return &cli.Command{
		Name:      "research",
		Usage:     "trigger research for a case and follow its progress",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-wait", Usage: "queue the job and return immediately"},
		},
		Action: func(c *cli.Context) error {
			id, err := caseIDArg(c)
			if err != nil {
				return err
			}
			api := apiClient(c)
			if err := api.TriggerResearch(id); err != nil {
				return err
			}
			fmt.Printf("Research queued for case #%d\n", id)
			if c.Bool("no-wait") {
				return nil
			}
			return followProgress(api, id)
		},
	}
}

// followProgress runs the poller against the terminal until the job
// finishes, then prints the refreshed case.
func followProgress(api *client.Client, id int64) error {
	done := make(chan struct{})
	poller := client.NewPoller(api, terminalView{out: os.Stdout}, func() {
		close(done)
	})
	poller.Start(id)
	<-done

	cs, err := api.GetCase(id)
	if err != nil {
		return err
	}
	printCase(cs)
	return nil
}

func researchAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "research-all",
		Usage: "queue research for every eligible case",
		Action: func(c *cli.Context) error {
			queued, skipped, err := apiClient(c).TriggerAll()
			if err != nil {
				return err
			}
			fmt.Printf("Queued %d cases, skipped %d\n", queued, skipped)
			return nil
		},
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "schedule a one-time check of specific cases",
		Flags: []cli.Flag{
			&cli.Int64SliceFlag{Name: "id", Required: true, Usage: "case id (repeatable)"},
			&cli.StringFlag{Name: "at", Required: true, Usage: "run time, RFC 3339"},
		},
		Action: func(c *cli.Context) error {
			runAt, err := time.Parse(time.RFC3339, c.String("at"))
			if err != nil {
				return fmt.Errorf("invalid run time: %w", err)
			}
			jobID, err := apiClient(c).ScheduleCustomCheck(c.Int64Slice("id"), runAt)
			if err != nil {
				return err
			}
			fmt.Printf("Scheduled check %s at %s\n", jobID, runAt.Format(time.RFC3339))
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show server health and scheduled jobs",
		Action: func(c *cli.Context) error {
			api := apiClient(c)
			health, schedulerRunning, err := api.Health()
			if err != nil {
				return err
			}
			fmt.Printf("Server: %s, scheduler running: %v\n", health, schedulerRunning)

			_, jobs, err := api.SchedulerStatus()
			if err != nil {
				return err
			}
			for _, j := range jobs {
				next := "-"
				if j.NextRun != nil {
					next = *j.NextRun
				}
				fmt.Printf("  %s (%s) next run %s\n", j.Name, j.ID, next)
			}
			return nil
		},
	}
}

func upcomingCommand() *cli.Command {
	return &cli.Command{
		Name:  "upcoming",
		Usage: "list cases with hearings coming up",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: 7, Usage: "window in days"},
		},
		Action: func(c *cli.Context) error {
			cases, err := apiClient(c).UpcomingHearings(c.Int("days"))
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				fmt.Printf("No hearings within %d days\n", c.Int("days"))
				return nil
			}
			return printTable(cases)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "bulk import cases from a CSV or XLSX file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("a file path is required")
			}
			result, err := apiClient(c).ImportFile(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d cases, skipped %d\n", result.Imported, result.Skipped)
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}
}
