package state

import (
	"encoding/json"
	"fmt"
)

// Event type discriminator values.
const (
	EventVisit  = "visit"
	EventFlight = "flight"
	EventHotel  = "hotel"
)

// Visit is a sightseeing or activity entry in a day plan.
type Visit struct {
	Description     string `json:"description"`
	Address         string `json:"address"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	BookingRequired bool   `json:"booking_required"`
	Price           string `json:"price"`
}

// Flight is a flight segment in a day plan.
type Flight struct {
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	BoardingTime     string `json:"boarding_time"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Seat             string `json:"seat_number"`
	Price            string `json:"price"`
	BookingID        string `json:"booking_id"`
}

// Hotel is a check-in/check-out entry in a day plan.
type Hotel struct {
	Description  string `json:"description"`
	Address      string `json:"address"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	Room         string `json:"room_selection"`
	Price        string `json:"price"`
	BookingID    string `json:"booking_id"`
}

// Event is a tagged union over the itinerary event variants.
// Exactly one of Visit, Flight, Hotel is non-nil, selected by Type.
// The wire format is flat: the variant's fields plus an "event_type"
// discriminator.
type Event struct {
	Type   string  `json:"-"`
	Visit  *Visit  `json:"-"`
	Flight *Flight `json:"-"`
	Hotel  *Hotel  `json:"-"`
}

// NewVisit wraps a Visit in an Event.
func NewVisit(v Visit) Event { return Event{Type: EventVisit, Visit: &v} }

// NewFlight wraps a Flight in an Event.
func NewFlight(f Flight) Event { return Event{Type: EventFlight, Flight: &f} }

// NewHotel wraps a Hotel in an Event.
func NewHotel(h Hotel) Event { return Event{Type: EventHotel, Hotel: &h} }

// MarshalJSON flattens the active variant and adds the discriminator.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventVisit:
		if e.Visit == nil {
			return nil, fmt.Errorf("state: visit event without payload")
		}
		return json.Marshal(struct {
			EventType string `json:"event_type"`
			Visit
		}{EventType: EventVisit, Visit: *e.Visit})
	case EventFlight:
		if e.Flight == nil {
			return nil, fmt.Errorf("state: flight event without payload")
		}
		return json.Marshal(struct {
			EventType string `json:"event_type"`
			Flight
		}{EventType: EventFlight, Flight: *e.Flight})
	case EventHotel:
		if e.Hotel == nil {
			return nil, fmt.Errorf("state: hotel event without payload")
		}
		return json.Marshal(struct {
			EventType string `json:"event_type"`
			Hotel
		}{EventType: EventHotel, Hotel: *e.Hotel})
	default:
		return nil, fmt.Errorf("state: unknown event type %q", e.Type)
	}
}

// UnmarshalJSON selects the variant from the "event_type" discriminator.
func (e *Event) UnmarshalJSON(data []byte) error {
	var tag struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("state: decoding event discriminator: %w", err)
	}

	switch tag.EventType {
	case EventVisit:
		var v Visit
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("state: decoding visit event: %w", err)
		}
		*e = Event{Type: EventVisit, Visit: &v}
	case EventFlight:
		var f Flight
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("state: decoding flight event: %w", err)
		}
		*e = Event{Type: EventFlight, Flight: &f}
	case EventHotel:
		var h Hotel
		if err := json.Unmarshal(data, &h); err != nil {
			return fmt.Errorf("state: decoding hotel event: %w", err)
		}
		*e = Event{Type: EventHotel, Hotel: &h}
	default:
		return fmt.Errorf("state: unknown event type %q", tag.EventType)
	}
	return nil
}
