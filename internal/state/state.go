// Package state defines the typed trip-planning state accumulated across a
// conversation session, together with the merge semantics used to fold
// orchestrator updates into it.
//
// A State is created once per (user, session) pair with every field at its
// declared default and is mutated only through [Apply]. The schema is closed:
// updates targeting unknown keys are returned to the caller instead of being
// silently dropped.
package state

import "encoding/json"

// Gender values accepted in a user profile.
const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderOther       = "other"
	GenderUnspecified = "prefer not to say"
)

// Trip type values for group details.
const (
	TripSolo  = "solo"
	TripGroup = "group"
)

// Date flexibility values for rough travel dates.
const (
	FlexibilityVeryFlexible     = "very flexible"
	FlexibilitySomewhatFlexible = "somewhat flexible"
	FlexibilityFixedDates       = "fixed dates"
)

// Cluster journey types.
const (
	ClusterCustom            = "custom"
	ClusterRoute             = "route"
	ClusterCluster           = "cluster"
	ClusterStateLevel        = "state_level"
	ClusterCountryLevel      = "country_level"
	ClusterMultipleCountries = "multiple_countries"
)

// DefaultCurrency is the currency assumed when a budget omits one.
const DefaultCurrency = "INR"

// Top-level State field keys. These are the only keys [Apply] recognizes;
// anything else is handed back as a loose session attribute.
const (
	FieldUserID        = "user_id"
	FieldUserProfile   = "user_profile"
	FieldGroupDetails  = "group_details"
	FieldBudget        = "budget"
	FieldOrigin        = "origin"
	FieldRoughDates    = "rough_dates"
	FieldSpecificDates = "specific_dates"
	FieldDestinations  = "destinations"
	FieldPOIs          = "pois"
	FieldItinerary     = "itinerary"
)

// UserProfile holds first-level information about a traveler.
type UserProfile struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
	PassportNationality string   `json:"passport_nationality"`
	Allergies           []string `json:"allergies"`
	EmergencyContact    []string `json:"emergency_contact"`
	TravelHistory       []string `json:"travel_history"`
	GeneralPreferences  []string `json:"general_preferences"`
}

// GroupDetails describes who is traveling.
type GroupDetails struct {
	TripType     string        `json:"trip_type"` // solo | group
	GroupSize    int           `json:"group_size"`
	GroupMembers []UserProfile `json:"group_members"`
}

// BudgetBreakdown splits an overall budget estimate by category.
type BudgetBreakdown struct {
	Food   int `json:"food"`
	Travel int `json:"travel"`
	Stay   int `json:"stay"`
	Other  int `json:"other"`
}

// Budget is the trip budget. Currency defaults to INR when unset.
type Budget struct {
	Currency        string           `json:"currency"`
	OverallEstimate int              `json:"overall_estimate"`
	Breakdown       *BudgetBreakdown `json:"breakdown"`
}

// SourceLocation is the structured origin of the trip. Free-text origins are
// carried in City with the remaining fields empty.
type SourceLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	MapsURL string `json:"maps_url"`
}

// RoughTravelDates are the stage-one date preferences collected during
// onboarding, before the user commits to specific dates.
type RoughTravelDates struct {
	Timeframe       string   `json:"timeframe"`
	Flexibility     string   `json:"flexibility"` // very flexible | somewhat flexible | fixed dates
	Duration        string   `json:"duration"`
	AvoidDates      []string `json:"avoid_dates"`
	PreferredSeason string   `json:"preferred_season"`
}

// TravelDates are the committed trip dates in YYYY-MM-DD format.
type TravelDates struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Place is a single stop inside a cluster journey.
type Place struct {
	Name              string   `json:"name"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Country           string   `json:"country"`
	MustVisitSpots    []string `json:"must_visit_spots"`
	MapURL            string   `json:"map_url"`
	ImageURL          string   `json:"image_url"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	TotalStayDuration string   `json:"total_stay_duration"`
}

// ClusterJourney is a grouped set of destinations sharing a travel
// relationship (route, geographic cluster, state, country, multi-country).
type ClusterJourney struct {
	ClusterType          string  `json:"cluster_type"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	StartDestination     string  `json:"start_destination"`
	FinalDestination     string  `json:"final_destination"`
	RecommendedTransport string  `json:"recommended_mode_of_transport"`
	EstimatedCost        string  `json:"estimated_cost"`
	RoundTripDuration    string  `json:"round_trip_duration"`
	Places               []Place `json:"list_of_places"`
	BestTimeToVisit      string  `json:"best_time_to_visit"`
}

// POI is a point of interest suggestion.
type POI struct {
	PlaceName   string   `json:"place_name"`
	MapsURL     string   `json:"maps_url"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Rating      string   `json:"rating"`
}

// Day is one day of an itinerary with its ordered events.
type Day struct {
	DayNumber int     `json:"day_number"`
	Date      string  `json:"date"`
	Events    []Event `json:"events"`
}

// Itinerary is the structured day-by-day plan for the trip.
type Itinerary struct {
	TripName    string `json:"trip_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Days        []Day  `json:"days"`
}

// State is the trip-planning data accumulated across a session's turns.
// One instance exists per (user, session) pair. UserID is set exactly once
// at creation and never mutated; every other field starts at its declared
// default and changes only through [Apply].
type State struct {
	UserID        string            `json:"user_id"`
	UserProfile   *UserProfile      `json:"user_profile"`
	GroupDetails  *GroupDetails     `json:"group_details"`
	Budget        *Budget           `json:"budget"`
	Origin        *SourceLocation   `json:"origin"`
	RoughDates    *RoughTravelDates `json:"rough_dates"`
	SpecificDates *TravelDates      `json:"specific_dates"`
	Destinations  []ClusterJourney  `json:"destinations"`
	POIs          []POI             `json:"pois"`
	Itinerary     *Itinerary        `json:"itinerary"`
}

// New returns a State with the given user ID and every other field at its
// schema default: nil optional nested objects and non-nil empty lists.
// Absence is never represented as a missing key once a session exists.
func New(userID string) *State {
	return &State{
		UserID:       userID,
		Destinations: []ClusterJourney{},
		POIs:         []POI{},
	}
}

// Clone returns a deep copy of the state. Callers receive snapshots rather
// than aliases so concurrent merges can never tear a reader's view.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	// The schema is plain data; a JSON round trip is a correct deep copy and
	// keeps Clone immune to schema drift.
	raw, err := json.Marshal(s)
	if err != nil {
		// Marshal of a value built from plain structs cannot fail.
		panic("state: clone marshal: " + err.Error())
	}
	out := New(s.UserID)
	if err := json.Unmarshal(raw, out); err != nil {
		panic("state: clone unmarshal: " + err.Error())
	}
	if out.Destinations == nil {
		out.Destinations = []ClusterJourney{}
	}
	if out.POIs == nil {
		out.POIs = []POI{}
	}
	return out
}
