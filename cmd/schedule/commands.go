package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"bus-schedule/internal/api"
	"bus-schedule/internal/config"
	"bus-schedule/internal/metrics"
	"bus-schedule/internal/overrides"
	"bus-schedule/internal/schedule"
	"bus-schedule/internal/session"
	"bus-schedule/internal/timeofday"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the schedule API and the current-time ticker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen target for the web server (defaults to LISTEN_ADDR)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			// Root context with cancellation on SIGINT/SIGTERM
			ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cat, err := loadCatalog(ctx, cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			routes := schedule.RouteNames(cat)
			log.Info().
				Str("source", cfg.CatalogSource).
				Int("departures", len(cat.Departures)).
				Int("routes", len(routes)).
				Msg("Catalog loaded")

			store, err := loadOverrides(cfg)
			if err != nil {
				return err
			}

			var mcol *metrics.Collector
			if cfg.MetricsAddr != "" {
				mcol = metrics.NewCollector(cfg.TickInterval)
				mcol.CatalogDepartures.Set(float64(len(cat.Departures)))
				mcol.CatalogRoutes.Set(float64(len(routes)))
				mcol.OverrideRoutes.Set(float64(store.Len()))

				srv := mcol.Serve(cfg.MetricsAddr)
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if cfg.NATSURL != "" {
				feed, err := overrides.NewFeed(cfg.NATSURL, cfg.NATSSubject, store, feedMetrics(mcol))
				if err != nil {
					return fmt.Errorf("nats error: %w", err)
				}
				defer feed.Close()
			}

			sess := session.New(cat, store, cfg.TickInterval, cfg.Location, sessionMetrics(mcol))
			sess.OnTick(func(v session.View) {
				ev := log.Debug().Str("now", v.NowDisplay).Str("state", v.State)
				if v.Upcoming != nil {
					ev = ev.Str("next", v.Upcoming.Name).Str("in", v.Upcoming.Relative)
				}
				ev.Msg("tick")
			})
			sess.Start(ctx)
			defer sess.Stop()

			listen := c.String("listen")
			if listen == "" {
				listen = cfg.ListenAddr
			}
			if err := api.Serve(ctx, api.NewApp(sess, apiMetrics(mcol)), listen); err != nil {
				return fmt.Errorf("api server: %w", err)
			}

			log.Info().Msg("shutdown complete")
			return nil
		},
	}
}

func routesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "list route names in catalog order",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			cat, err := loadCatalog(c.Context, cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			for _, name := range schedule.RouteNames(cat) {
				fmt.Fprintln(c.App.Writer, name)
			}
			return nil
		},
	}
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "print the next stop of every departure on a route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "route",
				Usage:    "route name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "at",
				Usage: "time of day to evaluate at, e.g. 08:10 or 8:10 am (default: now)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			cat, err := loadCatalog(c.Context, cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			store, err := loadOverrides(cfg)
			if err != nil {
				return err
			}

			now := time.Now().In(cfg.Location)
			if at := c.String("at"); at != "" {
				if now, err = timeofday.Parse(at, now); err != nil {
					return err
				}
			}

			route := c.String("route")
			departures := schedule.DeparturesForRoute(cat, route)
			if len(departures) == 0 {
				return fmt.Errorf("no departures for route %q", route)
			}

			w := c.App.Writer
			fmt.Fprintf(w, "%s, %s %s\n", route, now.Weekday(), timeofday.Format12(now))

			today := schedule.Today(store, route, now)
			switch today.Kind {
			case schedule.AvailabilityUnavailable:
				fmt.Fprintln(w, today.Message)
				return nil
			case schedule.AvailabilityLimited:
				fmt.Fprintln(w, "Limited service today:")
				for _, run := range today.Runs {
					fmt.Fprintf(w, "  %-8s %s\n", timeofday.FormatTo12Hour(run.Time), run.Route)
				}
				return nil
			}

			for i := range departures {
				dep := &departures[i]
				next := session.UpcomingFor(dep, now)
				if next == nil {
					fmt.Fprintf(w, "  %-10s %-8s no more service today\n", dep.ID, timeofday.FormatTo12Hour(dep.StartTime))
					continue
				}
				fmt.Fprintf(w, "  %-10s %-8s next %s at %s (%s)\n",
					dep.ID, timeofday.FormatTo12Hour(dep.StartTime), next.Name, next.Display, next.Countdown)
			}
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "dump one departure",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "departure id",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			cat, err := loadCatalog(c.Context, cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			dep := schedule.DepartureByID(cat, c.String("id"))
			if dep == nil {
				return errors.New("no departure with id " + c.String("id"))
			}
			pretty.Fprintf(c.App.Writer, "%# v\n", dep)
			return nil
		},
	}
}
