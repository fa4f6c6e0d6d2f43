package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
)

// EventInput is the body of a create request. Date is a calendar date
// (2006-01-02) or an RFC 3339 timestamp.
type EventInput struct {
	Name     string
	Date     string
	Location string
}

// EventUpdate is a partial update; nil fields are left as they are.
type EventUpdate struct {
	Name     *string
	Date     *string
	Location *string
}

type EventDeps struct {
	Events    EventRepository
	Users     UserRepository
	Weather   WeatherProvider
	Publisher queue.Publisher
	Logger    *slog.Logger
}

// EventService manages the shared event board. Anyone signed in can read;
// only the creator can change or delete an event.
type EventService struct {
	events    EventRepository
	users     UserRepository
	weather   WeatherProvider
	publisher queue.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewEventService(d EventDeps) *EventService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := d.Weather
	if w == nil {
		w = PlaceholderWeather{}
	}
	pub := d.Publisher
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &EventService{
		events:    d.Events,
		users:     d.Users,
		weather:   w,
		publisher: pub,
		now:       time.Now,
		logger:    logger.With("component", "event-service"),
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}

// Create stores a new event owned by ownerID, who must still exist.
func (s *EventService) Create(ctx context.Context, ownerID string, in EventInput) (model.Event, error) {
	if ownerID == "" {
		return model.Event{}, apperr.Unauthenticated("no owner resolved for this request")
	}
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	if name == "" || location == "" || strings.TrimSpace(in.Date) == "" {
		return model.Event{}, apperr.Validation("name, date and location are required")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return model.Event{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	owner, err := s.users.GetByID(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return model.Event{}, apperr.Unauthenticated("event owner does not exist")
	}
	if err != nil {
		return model.Event{}, apperr.Wrap(apperr.KindCreateFailed, "failed to create event", err)
	}

	e := model.Event{Name: name, Date: date, Location: location, CreatedBy: owner.ID}
	if err := s.events.Create(ctx, &e); err != nil {
		return model.Event{}, apperr.Wrap(apperr.KindCreateFailed, "failed to create event", err)
	}

	ev := queue.NewActivity(queue.EventCreated, ownerID, s.now())
	ev.UserName = owner.UserName
	ev.EventID = e.ID.Hex()
	ev.EventName = e.Name
	publish(ctx, s.publisher, s.logger, ev)
	return e, nil
}

// ListAll returns every event regardless of owner, newest first.
func (s *EventService) ListAll(ctx context.Context) ([]model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	out, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list events", err)
	}
	return out, nil
}

func (s *EventService) Get(ctx context.Context, eventID string) (model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.load(ctx, eventID)
}

func (s *EventService) load(ctx context.Context, eventID string) (model.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrInvalidID) {
		return model.Event{}, apperr.NotFound("event not found")
	}
	if err != nil {
		return model.Event{}, mapStoreErr(err, "event not found", apperr.KindInternal, "failed to load event")
	}
	return e, nil
}

// owned loads the event and checks that ownerID created it.
func (s *EventService) owned(ctx context.Context, eventID, ownerID, verb string) (model.Event, error) {
	e, err := s.load(ctx, eventID)
	if err != nil {
		return model.Event{}, err
	}
	if !e.OwnedBy(ownerID) {
		return model.Event{}, apperr.Forbidden("you are not allowed to " + verb + " this event")
	}
	return e, nil
}

func buildPatch(in EventUpdate) (model.EventPatch, error) {
	var p model.EventPatch
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return p, apperr.Validation("name cannot be blank")
		}
		p.Name = &v
	}
	if in.Location != nil {
		v := strings.TrimSpace(*in.Location)
		if v == "" {
			return p, apperr.Validation("location cannot be blank")
		}
		p.Location = &v
	}
	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if p.Empty() {
		return p, apperr.Validation("nothing to update")
	}
	return p, nil
}

// Update applies a partial update on behalf of ownerID.
func (s *EventService) Update(ctx context.Context, eventID, ownerID string, in EventUpdate) (model.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.owned(ctx, eventID, ownerID, "update"); err != nil {
		return model.Event{}, err
	}
	patch, err := buildPatch(in)
	if err != nil {
		return model.Event{}, err
	}
	e, err := s.events.Update(ctx, eventID, patch)
	if err != nil {
		return model.Event{}, mapStoreErr(err, "event not found", apperr.KindUpdateFailed, "failed to update event")
	}

	ev := queue.NewActivity(queue.EventUpdated, ownerID, s.now())
	ev.EventID = eventID
	ev.EventName = e.Name
	publish(ctx, s.publisher, s.logger, ev)
	return e, nil
}

// Delete removes the event on behalf of ownerID.
func (s *EventService) Delete(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	e, err := s.owned(ctx, eventID, ownerID, "delete")
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return mapStoreErr(err, "event not found", apperr.KindDeleteFailed, "failed to delete event")
	}

	ev := queue.NewActivity(queue.EventDeleted, ownerID, s.now())
	ev.EventID = eventID
	ev.EventName = e.Name
	publish(ctx, s.publisher, s.logger, ev)
	return nil
}

// FetchWeatherInfo resolves the event and asks the weather provider about
// its location and date. Any signed-in caller may ask; ownerID only has to
// be present.
func (s *EventService) FetchWeatherInfo(ctx context.Context, eventID, ownerID string) (Weather, error) {
	if ownerID == "" {
		return Weather{}, apperr.Unauthenticated("no owner resolved for this request")
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	e, err := s.load(ctx, eventID)
	if err != nil {
		return Weather{}, err
	}
	w, err := s.weather.Lookup(ctx, e.Location, e.Date)
	if err != nil {
		return Weather{}, apperr.Wrap(apperr.KindInternal, "weather lookup failed", err)
	}
	w.EventID = e.ID.Hex()
	return w, nil
}

