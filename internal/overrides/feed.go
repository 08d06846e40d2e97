package overrides

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"bus-schedule/internal/schedule"
)

// Feed receives route exception updates over NATS and applies them to a Store.
type Feed struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	store   *Store
	metrics FeedMetrics
}

type FeedMetrics interface {
	FeedMessageInc(applied bool)
	FeedSetConnected(connected bool)
}

// Update is the message body: the full set of conditions for one route.
// Null or empty conditions clear the route.
type Update struct {
	Route      string                     `json:"route"`
	Conditions schedule.SpecialConditions `json:"conditions"`
}

func NewFeed(url, subject string, store *Store, m FeedMetrics) (*Feed, error) {
	nc, err := nats.Connect(url,
		nats.Name("bus-schedule"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.FeedSetConnected(false)
			}
			log.Warn().Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.FeedSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.FeedSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.FeedSetConnected(true)
	}

	f := &Feed{nc: nc, store: store, metrics: m}
	pattern := subjectToken(subject) + ".>"
	f.sub, err = nc.Subscribe(pattern, func(msg *nats.Msg) {
		err := f.apply(msg.Data)
		if f.metrics != nil {
			f.metrics.FeedMessageInc(err == nil)
		}
		if err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("Rejected overrides update")
		}
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", pattern, err)
	}
	log.Info().Str("subject", pattern).Msg("Listening for overrides updates")
	return f, nil
}

func (f *Feed) apply(data []byte) error {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	if strings.TrimSpace(u.Route) == "" {
		return errors.New("update has no route")
	}
	f.store.Set(u.Route, u.Conditions)
	log.Info().Str("route", u.Route).Int("days", len(u.Conditions)).Msg("Applied overrides update")
	return nil
}

func (f *Feed) Close() {
	if f.sub != nil {
		_ = f.sub.Unsubscribe()
	}
	if f.nc != nil {
		f.nc.Drain()
		f.nc.Close()
	}
}

// subjectToken makes s usable as a single NATS subject token. Dots are kept
// so a configured prefix may span several tokens.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = strings.Trim(repl.Replace(s), ".")
	if s == "" {
		s = "_"
	}
	return s
}
