package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

type EventService interface {
	Create(ctx context.Context, ownerID string, in service.EventInput) (model.Event, error)
	ListAll(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, eventID string) (model.Event, error)
	Update(ctx context.Context, eventID, ownerID string, in service.EventUpdate) (model.Event, error)
	Delete(ctx context.Context, eventID, ownerID string) error
	FetchWeatherInfo(ctx context.Context, eventID, ownerID string) (service.Weather, error)
}

type EventHandler struct {
	events EventService
}

func NewEventHandler(events EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventReq struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// updateEventReq distinguishes absent fields (nil) from blank ones.
type updateEventReq struct {
	Name     *string `json:"name"`
	Date     *string `json:"date"`
	Location *string `json:"location"`
}

func (h *EventHandler) Create(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	e, err := h.events.Create(c.Request().Context(), uid, service.EventInput{
		Name:     req.Name,
		Date:     req.Date,
		Location: req.Location,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Data: e, Message: "event created successfully"}, nil
}

func (h *EventHandler) GetAll(c echo.Context) (Response, error) {
	events, err := h.events.ListAll(c.Request().Context())
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: events, Message: "events fetched successfully"}, nil
}

func (h *EventHandler) Get(c echo.Context) (Response, error) {
	e, err := h.events.Get(c.Request().Context(), c.Param("_id"))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: e, Message: "event fetched successfully"}, nil
}

func (h *EventHandler) Update(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	var req updateEventReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	e, err := h.events.Update(c.Request().Context(), c.Param("_id"), uid, service.EventUpdate{
		Name:     req.Name,
		Date:     req.Date,
		Location: req.Location,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: e, Message: "event updated successfully"}, nil
}

func (h *EventHandler) Delete(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	if err := h.events.Delete(c.Request().Context(), c.Param("_id"), uid); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Message: "event deleted successfully"}, nil
}

// WeatherVersion loads the event named by the "id" parameter and reports
// the fields the weather lookup depends on. A missing event fails here.
func (h *EventHandler) WeatherVersion(c echo.Context) (string, error) {
	e, err := h.events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return "", err
	}
	return e.Location + "|" + e.Date.UTC().Format(time.RFC3339), nil
}

func (h *EventHandler) FetchWeatherInfo(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	w, err := h.events.FetchWeatherInfo(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: w, Message: "weather info fetched successfully"}, nil
}
