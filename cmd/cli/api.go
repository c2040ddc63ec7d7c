package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/myrjola/masks/internal/board"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/screens"
	"github.com/spf13/cobra"
)

// table writes tab separated rows as aligned columns.
func table(w io.Writer, header string, rows func(tw io.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, header)
	rows(tw)
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush table")
	}
	return nil
}

func warmUpCmd(c *cli) *cobra.Command {
	var (
		interval time.Duration
		deadline time.Duration
	)
	cmd := &cobra.Command{
		Use:     "warmup",
		GroupID: apiGroup.ID,
		Short:   "Wake up a sleeping API",
		Long:    `Polls the liveness endpoint of the API until it answers so that the first real request won't time out.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()
			attempts, err := c.client().WarmUp(ctx, interval)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API at %s is awake after %d attempt(s)\n", c.cfg.baseURL(), attempts)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "time between liveness checks")
	cmd.Flags().DurationVar(&deadline, "deadline", 2*time.Minute, "give up after this long")
	return cmd
}

func charactersCmd(c *cli) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:     "characters",
		GroupID: apiGroup.ID,
		Short:   "List investigators",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := screens.NewCharacterScreen()
			if err := s.Refresh(cmd.Context(), c.client().ListCharacters); err != nil {
				return errors.Wrap(err, "list characters")
			}
			s.SetFilter(filter)
			return table(cmd.OutOrStdout(), "ID\tNAME\tOCCUPATION\tSANITY\tHEALTH", func(tw io.Writer) {
				for _, ch := range s.Visible() {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d/%d\n", ch.ID, ch.Name, ch.Occupation,
						ch.MentalHealth.Sanity, ch.MentalHealth.MaxSanity, ch.MaxHealth-ch.Wounds, ch.MaxHealth)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show investigators whose name or occupation contains this")
	return cmd
}

func printSessions(w io.Writer, sessions []models.Session) error {
	return table(w, "ID\tDATE\tTITLE\tLOCATION\tTAGS", func(tw io.Writer) {
		for _, s := range sessions {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Date, s.Title, s.Location,
				screens.FormatList(s.Tags))
		}
	})
}

func sessionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		GroupID: apiGroup.ID,
		Short:   "List session notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.client().ListSessions(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "list sessions")
			}
			return printSessions(cmd.OutOrStdout(), sessions)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "search [query]",
		Short: "Find session notes mentioning the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.client().SearchSessions(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return errors.Wrap(err, "search sessions")
			}
			return printSessions(cmd.OutOrStdout(), sessions)
		},
	}, &cobra.Command{
		Use:   "tags [tag,tag...]",
		Short: "List session notes carrying any of the tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := screens.ParseList(args[0])
			if len(tags) == 0 {
				return errors.New("no tags given")
			}
			sessions, err := c.client().SessionsByTags(cmd.Context(), tags)
			if err != nil {
				return errors.Wrap(err, "list sessions by tags")
			}
			return printSessions(cmd.OutOrStdout(), sessions)
		},
	})
	return cmd
}

func eventsCmd(c *cli) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "events",
		GroupID: apiGroup.ID,
		Short:   "List the calendar events of a month",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := screens.NewCalendarScreen(time.Now())
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return errors.Wrap(err, "parse month", slog.String("month", month))
				}
				s.Show(t)
			}
			from, to := s.Range()
			events, err := c.client().ListEvents(cmd.Context(), from, to)
			if err != nil {
				return errors.Wrap(err, "list events")
			}
			s.Load(events)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, s.Month().Format("January 2006"))
			return table(out, "DATE\tTIME\tTYPE\tTITLE", func(tw io.Writer) {
				for _, week := range s.Weeks() {
					for _, day := range week {
						for _, e := range day.Events {
							_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Time, e.Type, e.Title)
						}
					}
				}
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to list as YYYY-MM (default current month)")
	return cmd
}

func boardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "board",
		GroupID: apiGroup.ID,
		Short:   "Print the investigation board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := c.client().Board(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "fetch board")
			}
			b := board.New(*stored, board.DefaultWidth, board.DefaultHeight)

			out := cmd.OutOrStdout()
			if err = table(out, "NODE\tTYPE\tTITLE", func(tw io.Writer) {
				for _, n := range b.Nodes {
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", n.ID, n.Type, n.Title)
				}
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			return table(out, "CONNECTION\tFROM\tTO\tLABEL", func(tw io.Writer) {
				for _, conn := range b.Connections {
					from, _ := b.Node(conn.From)
					to, _ := b.Node(conn.To)
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", conn.ID, from.Title, to.Title, conn.Label)
				}
			})
		},
	}
}
