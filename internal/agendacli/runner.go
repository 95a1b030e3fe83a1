package agendacli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/okian/agenda/internal/adapters/http/client"
	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/internal/reconcile"
	"github.com/okian/agenda/pkg/logger"
)

// Sentinel kinds for command failures.
var (
	ErrUsage    = errors.New("usage")
	ErrRejected = errors.New("change rejected by the server")
)

// Run executes one command. args starts with the command name.
func Run(ctx context.Context, cfg *Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	api := client.New(cfg.BaseURL, client.WithTimeout(cfg.Timeout), client.WithLogger(logger.Get().Named("api-client")))

	logger.Get().Debug(ctx, "running command",
		logger.String("command", args[0]),
		logger.String("baseURL", cfg.BaseURL))

	switch args[0] {
	case "list":
		return runList(ctx, api, args[1:], out)
	case "add":
		return runAdd(ctx, api, args[1:], out)
	case "move":
		return runMove(ctx, api, args[1:], out)
	case "resize":
		return runResize(ctx, api, args[1:], out)
	case "remove":
		return runRemove(ctx, api, args[1:], out)
	case "sync":
		return runSync(ctx, api, out)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
	}
	return nil
}

func runList(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	categoryName := fs.String("category", "", "only this category")
	from := fs.String("from", "", "window start")
	to := fs.String("to", "", "window end")
	if err := parse(fs, args); err != nil {
		return err
	}

	q := aggregate.Query{Category: *categoryName}
	if (*from == "") != (*to == "") {
		return fmt.Errorf("%w: list: -from and -to go together", ErrUsage)
	}
	if *from != "" {
		var err error
		if q.From, err = model.ParseTime(*from); err != nil {
			return fmt.Errorf("%w: list: -from: %w", ErrUsage, err)
		}
		if q.To, err = model.ParseTime(*to); err != nil {
			return fmt.Errorf("%w: list: -to: %w", ErrUsage, err)
		}
	}

	events, err := api.Calendar(ctx, q)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return printEvents(out, events)
}

func runAdd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("add")
	var ev model.CustomEvent
	fs.StringVar(&ev.ID, "id", "", "event id, generated when empty")
	fs.StringVar(&ev.Title, "title", "", "title")
	fs.StringVar(&ev.Start, "start", "", "start time")
	fs.StringVar(&ev.End, "end", "", "end time")
	fs.StringVar(&ev.Category, "category", "", "category")
	fs.StringVar(&ev.RRule, "rrule", "", "recurrence rule")
	if err := parse(fs, args); err != nil {
		return err
	}

	var created model.CustomEvent
	err := mutate(ctx, api, func(cal *reconcile.Calendar) error {
		var err error
		created, err = cal.Create(ctx, ev)
		return err
	})
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(out, "created %s\n", created.ID)
	return nil
}

func runMove(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("move")
	id := fs.String("id", "", "event id")
	start := fs.String("start", "", "new start")
	end := fs.String("end", "", "new end")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" || *start == "" {
		return fmt.Errorf("%w: move: -id and -start are required", ErrUsage)
	}
	if err := mutate(ctx, api, func(cal *reconcile.Calendar) error {
		return cal.Move(ctx, *id, *start, *end)
	}); err != nil {
		return fmt.Errorf("move: %w", err)
	}
	_, _ = fmt.Fprintf(out, "moved %s\n", *id)
	return nil
}

func runResize(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("resize")
	id := fs.String("id", "", "event id")
	end := fs.String("end", "", "new end")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" || *end == "" {
		return fmt.Errorf("%w: resize: -id and -end are required", ErrUsage)
	}
	if err := mutate(ctx, api, func(cal *reconcile.Calendar) error {
		return cal.Resize(ctx, *id, *end)
	}); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	_, _ = fmt.Fprintf(out, "resized %s\n", *id)
	return nil
}

func runRemove(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("remove")
	id := fs.String("id", "", "event id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: remove: -id is required", ErrUsage)
	}
	if err := mutate(ctx, api, func(cal *reconcile.Calendar) error {
		return cal.Delete(ctx, *id)
	}); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	_, _ = fmt.Fprintf(out, "removed %s\n", *id)
	return nil
}

// runSync checks the service first, then refreshes both sources. One
// failing source does not stop the other.
func runSync(ctx context.Context, api *client.Client, out io.Writer) error {
	if err := api.Health(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	fixtures, errF := api.RefreshFixtures(ctx)
	if errF == nil {
		_, _ = fmt.Fprintf(out, "fixtures: %d\n", len(fixtures))
	}
	schedule, errS := api.RefreshSchedule(ctx)
	if errS == nil {
		_, _ = fmt.Fprintf(out, "schedule: %d\n", len(schedule))
	}
	if err := errors.Join(errF, errS); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// mutate loads a reconciling view, applies change and waits for the server
// to confirm or reject it.
func mutate(ctx context.Context, api *client.Client, change func(*reconcile.Calendar) error) error {
	var (
		mu       sync.Mutex
		rejected []error
	)
	cal := reconcile.New(api,
		reconcile.WithLogger(logger.Get().Named("calendar")),
		reconcile.WithNotifier(reconcile.NotifierFunc(func(_ context.Context, r reconcile.Rejection) {
			mu.Lock()
			rejected = append(rejected, r.Err)
			mu.Unlock()
		})),
	)
	cal.Start(ctx)
	if err := cal.Load(ctx); err != nil {
		_ = cal.Close(ctx)
		return err
	}
	if err := change(cal); err != nil {
		_ = cal.Close(ctx)
		return err
	}
	if err := cal.Close(ctx); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if len(rejected) > 0 {
		return fmt.Errorf("%w: %w", ErrRejected, errors.Join(rejected...))
	}
	return nil
}

func printEvents(out io.Writer, events []model.DisplayEvent) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "START\tEND\tCATEGORY\tSOURCE\tTITLE\tID")
	for _, ev := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Start, dash(ev.End), dash(ev.Category), ev.Source, ev.Title, dash(ev.ID))
	}
	return tw.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
