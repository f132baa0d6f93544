package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/services"
	"github.com/weathermood/weathermood/internal/client/weather"
)

const usage = `usage: weathermood <command> [args]

commands:
  register            create a mirror account
  login               sign in and enable sync
  logout              sign out (local data stays)
  sync                run one sync pass now
  status              show identity and pending counts
  city add <key> <name> [country lat lon]
  city list
  city remove <key>
  city default <key>
  mood add <rating 1..5> [note]
  mood history
  mood remove <record id>
  mood stats
  weather <key>       show current weather for a saved city
  run                 start the background scheduler (Ctrl-C to stop)
`

// Run dispatches one subcommand. Unknown or missing commands print usage.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "register":
		return a.cmdRegister(ctx)
	case "login":
		return a.cmdLogin(ctx)
	case "logout":
		return a.session.SignOut(ctx)
	case "sync":
		return a.cmdSync(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "city":
		return a.cmdCity(ctx, args[1:])
	case "mood":
		return a.cmdMood(ctx, args[1:])
	case "weather":
		if len(args) < 2 {
			return fmt.Errorf("weather: city key required")
		}
		return a.cmdWeather(ctx, args[1])
	case "run":
		return a.cmdRun(ctx)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) credentials() (string, string, error) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return email, string(password), nil
}

func (a *App) cmdRegister(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.remote.Register(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "account created, now run: weathermood login")
	return nil
}

// cmdLogin exchanges credentials for a token, switches the local identity
// and offers to claim data recorded while anonymous.
func (a *App) cmdLogin(ctx context.Context) error {
	prev, err := a.session.Current(ctx)
	if err != nil {
		return err
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	token, err := a.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}

	id, err := a.session.SignIn(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", id.Email)

	if prev.Anonymous {
		answer, err := GetSimpleText(a.reader, "Keep data recorded while signed out? [y/N]", a.out)
		if err == nil && strings.EqualFold(answer, "y") {
			if err := a.users.ClaimAnonymousData(ctx, prev, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "local data will be uploaded on the next sync")
		}
	}
	return nil
}

func (a *App) cmdSync(ctx context.Context) error {
	id, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	report, err := a.engine.Synchronize(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "sync %s\n", report.Status())
	for name, stats := range report.Collections {
		fmt.Fprintf(a.out, "  %s: pushed=%d pulled=%d failed=%d\n", name, stats.Pushed, stats.Pulled, stats.Failed)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(a.out, "  error: %s\n", e)
	}
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	id, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	if id.Anonymous {
		fmt.Fprintf(a.out, "identity: anonymous (%s), sync disabled\n", id.UserID)
	} else {
		fmt.Fprintf(a.out, "identity: %s (%s)\n", id.Email, id.UserID)
	}

	pendingCities, err := a.store.Cities.Pending(ctx, id.UserID)
	if err != nil {
		return err
	}
	pendingMoods, err := a.store.Moods.Pending(ctx, id.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "pending: %d cities, %d moods\n", len(pendingCities), len(pendingMoods))
	return nil
}

func (a *App) cmdCity(ctx context.Context, args []string) error {
	id, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("city: subcommand required (add, list, remove, default)")
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("city add: key and name required")
		}
		in := services.CityInput{CityKey: args[1], Name: args[2]}
		if len(args) >= 4 {
			in.CountryCode = args[3]
		}
		if len(args) >= 6 {
			in.Latitude, _ = strconv.ParseFloat(args[4], 64)
			in.Longitude, _ = strconv.ParseFloat(args[5], 64)
		}
		city, err := a.cities.AddFavorite(ctx, id, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved %s (%s)\n", city.Name, city.CityKey)
		return nil
	case "list":
		list, err := a.cities.List(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range list {
			marker := " "
			if c.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(a.out, "%s %s  %s (%s)\n", marker, c.CityKey, c.Name, c.CountryCode)
		}
		return nil
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("city remove: key required")
		}
		return a.cities.Remove(ctx, id, args[1])
	case "default":
		if len(args) < 2 {
			return fmt.Errorf("city default: key required")
		}
		return a.cities.SetDefault(ctx, id, args[1])
	default:
		return fmt.Errorf("city: unknown subcommand %q", args[0])
	}
}

func (a *App) cmdMood(ctx context.Context, args []string) error {
	id, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("mood: subcommand required (add, history, remove, stats)")
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("mood add: rating required")
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("mood add: rating must be a number")
		}
		in := services.MoodInput{Rating: rating}
		if len(args) >= 3 {
			in.Note = strings.Join(args[2:], " ")
		}

		// Attach the default city's current weather when one is saved.
		snapshot := a.defaultWeather(ctx, id.UserID)
		m, err := a.moods.Add(ctx, id, in, snapshot)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "recorded mood %d (%s)\n", m.Rating, m.RecordID)
		return nil
	case "history":
		history, err := a.moods.History(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range history {
			fmt.Fprintf(a.out, "%s  %d/5  %s  %s\n",
				m.CreatedAt.Format("2006-01-02 15:04"), m.Rating, m.Condition, m.Note)
		}
		return nil
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("mood remove: record id required")
		}
		return a.moods.Delete(ctx, id, args[1])
	case "stats":
		byCondition, err := a.moods.ByCondition(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "by condition:")
		for _, s := range byCondition {
			fmt.Fprintf(a.out, "  %-12s avg %.2f (%d)\n", s.Condition, s.AvgRating, s.Count)
		}
		byWeekday, err := a.moods.ByWeekday(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "by weekday:")
		for _, s := range byWeekday {
			fmt.Fprintf(a.out, "  %-12s avg %.2f (%d)\n", weekdayName(s.Weekday), s.AvgRating, s.Count)
		}
		return nil
	default:
		return fmt.Errorf("mood: unknown subcommand %q", args[0])
	}
}

func (a *App) cmdWeather(ctx context.Context, cityKey string) error {
	w, err := a.weather.Current(ctx, cityKey)
	if err != nil {
		return err
	}
	s := w.Snapshot
	fmt.Fprintf(a.out, "%s: %.1f°C (feels %.1f°C), %s, wind %.1f m/s, humidity %d%%",
		s.CityName, s.Temperature, s.FeelsLike, s.Description, s.WindSpeed, s.Humidity)
	if w.Freshness == weather.Stale {
		fmt.Fprintf(a.out, " [cached %s ago]", w.Age.Round(time.Second))
	}
	fmt.Fprintln(a.out)
	return nil
}

// cmdRun starts the periodic scheduler and blocks until interrupted.
func (a *App) cmdRun(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.scheduler.SchedulePeriodic(ctx)
	a.scheduler.ScheduleImmediate(ctx)
	fmt.Fprintln(a.out, "scheduler running, Ctrl-C to stop")

	<-ctx.Done()
	a.scheduler.CancelAll()
	return nil
}

// defaultWeather best-effort fetches weather for the user's default city.
// A missing default or a fetch failure yields nil; mood entry still works.
func (a *App) defaultWeather(ctx context.Context, userID string) *models.WeatherSnapshot {
	list, err := a.store.Cities.ListByUser(ctx, userID)
	if err != nil || len(list) == 0 {
		return nil
	}
	w, err := a.weather.Current(ctx, list[0].CityKey)
	if err != nil {
		return nil
	}
	return &w.Snapshot
}

func weekdayName(d int) string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if d < 0 || d > 6 {
		return strconv.Itoa(d)
	}
	return names[d]
}
