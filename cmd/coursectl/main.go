package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"coursehub/internal/client"
	"coursehub/internal/model"
	"coursehub/internal/ui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	apiURL  string
	token   string
	verbose bool
	ctl     *ui.Controller
	out     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "coursectl",
		Short:        "Manage outlines, courses and lessons on a coursehub server",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", envOr("COURSEHUB_API_URL", "http://localhost:8080"), "coursehub server URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("COURSEHUB_TOKEN"), "bearer token for course and lesson changes")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	root.AddCommand(a.outlinesCmd(), a.coursesCmd(), a.lessonsCmd())
	return root
}

func (a *app) setup() {
	logger := zerolog.Nop()
	if a.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	api := client.New(a.apiURL, client.StaticToken(a.token), client.WithLogger(logger))
	initial := ui.InitialState()
	if a.token != "" {
		initial = ui.Reduce(initial, ui.SessionChanged{Session: &ui.Session{Token: a.token}})
	}
	a.ctl = ui.NewController(api, ui.NewStore(initial), logger)
}

func (a *app) outlinesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "outlines", Short: "Work with outlines"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the most recent outlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctl.FetchOutlines(cmd.Context()); err != nil {
				return err
			}
			a.printOutlines()
			return nil
		},
	})

	var draft ui.Draft
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ctl.NewOutline()
			a.ctl.UpdateDraft(draft)
			if err := a.ctl.SaveOutline(cmd.Context()); err != nil {
				return err
			}
			if a.listed(cmd) {
				a.printOutlines()
			}
			return nil
		},
	}
	draftFlags(create, &draft)
	cmd.AddCommand(create)

	var edit ui.Draft
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace an outline's title, description and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a.ctl.EditOutline(model.Outline{ID: id})
			a.ctl.UpdateDraft(edit)
			if err := a.ctl.SaveOutline(cmd.Context()); err != nil {
				return err
			}
			if a.listed(cmd) {
				a.printOutlines()
			}
			return nil
		},
	}
	draftFlags(update, &edit)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctl.DeleteOutline(cmd.Context(), id); err != nil {
				return err
			}
			if a.listed(cmd) {
				a.printOutlines()
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export ID",
		Short: "Print a temporary download URL for an outline's markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			url, err := a.ctl.ExportOutline(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, url)
			return nil
		},
	})
	return cmd
}

func (a *app) coursesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "courses", Short: "Work with courses"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List courses with their owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctl.FetchCourses(cmd.Context()); err != nil {
				return err
			}
			a.printCourses()
			return nil
		},
	})

	var title, description string
	save := func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			var err error
			if id, err = parseID(args[0]); err != nil {
				return err
			}
		}
		course, err := a.ctl.SaveCourse(cmd.Context(), id, title, description)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved course %d\n", course.ID)
		return nil
	}

	create := &cobra.Command{Use: "create", Short: "Create a course", Args: cobra.NoArgs, RunE: save}
	update := &cobra.Command{Use: "update ID", Short: "Update a course you own", Args: cobra.ExactArgs(1), RunE: save}
	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringVar(&title, "title", "", "course title")
		c.Flags().StringVar(&description, "description", "", "course description")
		_ = c.MarkFlagRequired("title")
		cmd.AddCommand(c)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a course you own. Its lessons are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctl.DeleteCourse(cmd.Context(), id); err != nil {
				return err
			}
			a.printCourses()
			return nil
		},
	})
	return cmd
}

func (a *app) lessonsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "lessons", Short: "Work with lessons"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list COURSE_ID",
		Short: "List a course's lessons, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctl.FetchLessons(cmd.Context(), courseID); err != nil {
				return err
			}
			a.printLessons()
			return nil
		},
	})

	var courseID int64
	var title, content string
	save := func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			var err error
			if id, err = parseID(args[0]); err != nil {
				return err
			}
		}
		if _, err := a.ctl.SaveLesson(cmd.Context(), id, courseID, title, content); err != nil {
			return err
		}
		if a.listed(cmd) {
			a.printLessons()
		}
		return nil
	}

	create := &cobra.Command{Use: "create", Short: "Add a lesson to a course you own", Args: cobra.NoArgs, RunE: save}
	update := &cobra.Command{Use: "update ID", Short: "Update a lesson in a course you own", Args: cobra.ExactArgs(1), RunE: save}
	for _, c := range []*cobra.Command{create, update} {
		c.Flags().Int64Var(&courseID, "course", 0, "course id")
		c.Flags().StringVar(&title, "title", "", "lesson title")
		c.Flags().StringVar(&content, "content", "", "lesson markdown")
		_ = c.MarkFlagRequired("course")
		_ = c.MarkFlagRequired("title")
		_ = c.MarkFlagRequired("content")
		cmd.AddCommand(c)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a lesson from a course you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctl.DeleteLesson(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted lesson %d\n", id)
			return nil
		},
	})
	return cmd
}

func draftFlags(cmd *cobra.Command, d *ui.Draft) {
	cmd.Flags().StringVar(&d.Title, "title", "", "outline title")
	cmd.Flags().StringVar(&d.Description, "description", "", "outline description")
	cmd.Flags().StringVar(&d.Content, "content", "", "outline markdown")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
}

// listed reports whether the list reload after a change succeeded. When it
// did not, the change itself still went through and a warning is printed.
func (a *app) listed(cmd *cobra.Command) bool {
	msg := a.ctl.Store().State().LastError
	if msg == "" {
		return true
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: change applied, but %s\n", msg)
	return false
}

func (a *app) printOutlines() {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATED")
	for _, o := range a.ctl.Store().State().Outlines {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", o.ID, o.Title, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func (a *app) printCourses() {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tOWNER")
	for _, c := range a.ctl.Store().State().Courses {
		owner := c.Owner.ID.String()
		if c.Owner.Email != nil {
			owner = *c.Owner.Email
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Title, owner)
	}
	_ = tw.Flush()
}

func (a *app) printLessons() {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOURSE\tTITLE")
	for _, l := range a.ctl.Store().State().Lessons {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", l.ID, l.CourseID, l.Title)
	}
	_ = tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
