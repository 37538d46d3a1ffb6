package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"bookkeeping/internal/api"
	"bookkeeping/internal/core"
	"bookkeeping/internal/format"
	"bookkeeping/internal/token"
	"bookkeeping/internal/ui"
)

var (
	ErrUsage       = errors.New("usage")
	ErrNoToken     = errors.New("login reply has no token")
	ErrUIBridgeOff = errors.New("watch needs AMQP_URL")
)

// Command is one subcommand of the bookkeeping binary.
type Command struct {
	Name    string
	Summary string
	// Offline commands run without storage or a backend.
	Offline bool
	Run     func(ctx context.Context, env *Env, args []string) error
}

// Env is what a command runs against.
type Env struct {
	App *App
	Out io.Writer
	Now func() time.Time
}

func Commands() []Command {
	return []Command{
		{Name: "login", Summary: "log in and store the session token", Run: runLogin},
		{Name: "logout", Summary: "forget the session", Run: runLogout},
		{Name: "status", Summary: "show the stored session", Run: runStatus},
		{Name: "bills", Summary: "list bill records grouped by day", Run: runBills},
		{Name: "types", Summary: "list bill types", Run: runTypes},
		{Name: "month", Summary: "show the expense total of a month", Run: runMonth},
		{Name: "year", Summary: "show the months of this year with records", Run: runYear},
		{Name: "upload", Summary: "upload files and print their ids", Run: runUpload},
		{Name: "watch", Summary: "render UI events from the AMQP bridge", Run: runWatch},
		{Name: "format-date", Summary: "render an ISO date relative to today", Offline: true, Run: runFormatDate},
		{Name: "format-amount", Summary: "render a number with thousands separators", Offline: true, Run: runFormatAmount},
		{Name: "month-range", Summary: "render the first and last day of a month", Offline: true, Run: runMonthRange},
	}
}

// Lookup finds a command by name.
func Lookup(name string) (Command, bool) {
	for _, c := range Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Usage writes the command list.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: bookkeeping <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range Commands() {
		fmt.Fprintf(w, "  %-14s %s\n", c.Name, c.Summary)
	}
}

func newFlagSet(env *Env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Out)
	return fs
}

func runLogin(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, "login")
	user := fs.String("user", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := core.LoginRequest{Username: *user, Password: *password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	env.App.ShowLoading(ctx)
	reply, err := env.App.API.Login(ctx, req)
	if err != nil {
		return err
	}

	tok, err := loginToken(reply)
	if err != nil {
		return err
	}
	if err := env.App.Tokens.Set(ctx, tok); err != nil {
		return err
	}

	env.App.Logger.Info("Logged in", "user", req.Username)
	fmt.Fprintln(env.Out, "logged in as", req.Username)
	printTokenInfo(env, token.Describe(tok))
	return nil
}

// loginToken accepts either {"token": "..."} or a bare string as login data.
func loginToken(reply *core.Envelope) (string, error) {
	data := gjson.ParseBytes(reply.Data)
	if data.Type == gjson.String && data.String() != "" {
		return data.String(), nil
	}
	res, err := api.Decode[core.LoginResult](reply)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", ErrNoToken
	}
	return res.Token, nil
}

func runLogout(ctx context.Context, env *Env, _ []string) error {
	if err := env.App.Tokens.ClearSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, "logged out")
	return nil
}

func runStatus(ctx context.Context, env *Env, _ []string) error {
	tok, err := env.App.Tokens.Get(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		fmt.Fprintln(env.Out, "not logged in")
		return nil
	}
	fmt.Fprintln(env.Out, "logged in")
	printTokenInfo(env, token.Describe(tok))
	return nil
}

func printTokenInfo(env *Env, info token.Info) {
	if info.Opaque {
		return
	}
	if info.Subject != "" {
		fmt.Fprintln(env.Out, "subject:", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid"
		if info.Expired(env.Now()) {
			state = "expired"
		}
		fmt.Fprintf(env.Out, "expires: %s (%s)\n", info.ExpiresAt.Local().Format(time.DateTime), state)
	}
}

func runBills(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, "bills")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env.App.ShowLoading(ctx)
	reply, err := env.App.API.ListBillRecords(ctx, core.PageParams{PageNo: *page, PageSize: *size})
	if err != nil {
		return err
	}
	groups, err := billGroups(reply)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(env.Out, "no bill records")
		return nil
	}

	now := env.Now()
	for _, g := range groups {
		fmt.Fprintf(env.Out, "%s  %s\n", format.RelativeDate(g.ConsumptionDate, now), format.Currency(g.Total.String(), ""))
		for _, item := range g.Data {
			line := fmt.Sprintf("  %-8s %12s", item.BillType.Name, format.Amount(item.Price.String()))
			if item.Remark != "" {
				line += "  " + item.Remark
			}
			fmt.Fprintln(env.Out, line)
		}
	}
	return nil
}

// billGroups accepts the groups as the data array itself or wrapped in a
// page object.
func billGroups(reply *core.Envelope) ([]core.BillGroup, error) {
	data := gjson.ParseBytes(reply.Data)
	if !data.IsArray() {
		for _, key := range []string{"list", "records", "rows", "Data"} {
			if v := data.Get(key); v.IsArray() {
				return api.Decode[[]core.BillGroup](&core.Envelope{Data: []byte(v.Raw)})
			}
		}
		return nil, nil
	}
	return api.Decode[[]core.BillGroup](reply)
}

func runTypes(ctx context.Context, env *Env, _ []string) error {
	env.App.ShowLoading(ctx)
	reply, err := env.App.API.ListBillTypes(ctx, nil)
	if err != nil {
		return err
	}
	types, err := api.Decode[[]core.BillType](reply)
	if err != nil {
		return err
	}
	for _, t := range types {
		fmt.Fprintf(env.Out, "%6d  %-10s %s\n", t.ID, t.Name, t.Icon)
	}
	return nil
}

func runMonth(ctx context.Context, env *Env, args []string) error {
	now := env.Now()
	fs := newFlagSet(env, "month")
	month := fs.String("month", format.CurrentYearMonth(now), "month as YYYY-MM")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env.App.ShowLoading(ctx)
	reply, err := env.App.API.TotalExpenseMonthly(ctx, *month)
	if err != nil {
		return err
	}

	var total core.Amount
	data := gjson.ParseBytes(reply.Data)
	if data.IsObject() {
		m, err := api.Decode[core.MonthlyTotal](reply)
		if err != nil {
			return err
		}
		total = m.TotalExpense
	} else if err := reply.Decode(&total); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "%s expense: %s\n", *month, format.Currency(total.String(), ""))
	if *month == format.CurrentYearMonth(now) {
		fmt.Fprintf(env.Out, "%d days left this month\n", format.RemainingDaysInMonth(now))
	}
	return nil
}

func runYear(ctx context.Context, env *Env, _ []string) error {
	env.App.ShowLoading(ctx)
	reply, err := env.App.API.CurrentYearRecord(ctx, nil)
	if err != nil {
		return err
	}

	var months []string
	data := gjson.ParseBytes(reply.Data)
	if data.IsObject() {
		rec, err := api.Decode[core.YearRecord](reply)
		if err != nil {
			return err
		}
		months = rec.Months
	} else {
		for _, v := range data.Array() {
			months = append(months, v.String())
		}
	}
	sort.Strings(months)
	fmt.Fprintln(env.Out, strings.Join(months, "\n"))
	return nil
}

func runUpload(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: upload FILE...", ErrUsage)
	}
	ids, err := env.App.Uploader.FileIDs(ctx, args)
	if err != nil {
		return err
	}
	for i, id := range ids {
		fmt.Fprintf(env.Out, "%s\t%s\n", args[i], id)
	}
	return nil
}

func runWatch(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, "watch")
	queue := fs.String("queue", "bookkeeping.ui.watch", "queue to consume from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if env.App.Bridge == nil {
		return ErrUIBridgeOff
	}

	ctx, done := GracefulShutdown(env.App.Logger, 5*time.Second, nil)
	err := env.App.Bridge.Consume(ctx, *queue, ui.NewLogSurface(env.App.Logger))
	if errors.Is(err, context.Canceled) {
		WaitForShutdown(ctx, done)
		return nil
	}
	return err
}

func runFormatDate(_ context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: format-date ISO_DATE", ErrUsage)
	}
	fmt.Fprintln(env.Out, format.RelativeDate(args[0], env.Now()))
	return nil
}

func runFormatAmount(_ context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, "format-amount")
	symbol := fs.String("symbol", "", "currency symbol; prints a currency amount when set")
	currency := fs.Bool("currency", false, "prefix the default currency symbol")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: format-amount [-currency] [-symbol S] VALUE", ErrUsage)
	}

	v := fs.Arg(0)
	if *currency || *symbol != "" {
		fmt.Fprintln(env.Out, format.Currency(v, *symbol))
		return nil
	}
	fmt.Fprintln(env.Out, format.Amount(v))
	return nil
}

func runMonthRange(_ context.Context, env *Env, args []string) error {
	now := env.Now()
	fs := newFlagSet(env, "month-range")
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month, 1-12")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, format.MonthRange(*year, *month))
	return nil
}
