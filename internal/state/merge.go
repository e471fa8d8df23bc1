package state

import (
	"encoding/json"
	"fmt"
)

// Policy selects how Apply folds an incoming value into an existing field.
type Policy int

const (
	// PolicyReplace sets each recognized top-level field to the incoming
	// value wholesale. This is the default and matches the behavior the
	// memorize path has always exercised at runtime.
	PolicyReplace Policy = iota

	// PolicyMerge merges field-by-field: non-zero scalars win over existing
	// values, lists accumulate as a deduplicated union, and nested objects
	// merge recursively. Incoming null or zero values mean "no change".
	PolicyMerge
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "replace":
		return PolicyReplace, nil
	case "merge":
		return PolicyMerge, nil
	default:
		return PolicyReplace, fmt.Errorf("state: unknown merge policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyMerge {
		return "merge"
	}
	return "replace"
}

// Apply folds updates into st under the given policy. Each recognized
// top-level key is decoded into its typed field; unrecognized keys are
// returned untouched so the caller can retain them as loose session
// attributes. user_id is immutable and silently skipped.
//
// Apply is total over the schema: a decode failure on any key aborts with an
// error before st is modified, so a torn update is never observed.
func Apply(st *State, updates map[string]json.RawMessage, policy Policy) (map[string]json.RawMessage, error) {
	if st == nil {
		return nil, fmt.Errorf("state: apply on nil state")
	}

	// Decode everything first; mutate only after all values parse.
	staged := make([]func(), 0, len(updates))
	var loose map[string]json.RawMessage

	for key, raw := range updates {
		switch key {
		case FieldUserID:
			// Immutable once set at session creation.
			continue

		case FieldUserProfile:
			v, err := decode[*UserProfile](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.UserProfile = mergeProfile(st.UserProfile, v)
				} else {
					st.UserProfile = v
				}
			})

		case FieldGroupDetails:
			v, err := decode[*GroupDetails](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.GroupDetails = mergeGroup(st.GroupDetails, v)
				} else {
					st.GroupDetails = v
				}
			})

		case FieldBudget:
			v, err := decode[*Budget](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.Budget = mergeBudget(st.Budget, v)
				} else {
					st.Budget = v
				}
				if st.Budget != nil && st.Budget.Currency == "" {
					st.Budget.Currency = DefaultCurrency
				}
			})

		case FieldOrigin:
			v, err := decodeOrigin(raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.Origin = mergeOrigin(st.Origin, v)
				} else {
					st.Origin = v
				}
			})

		case FieldRoughDates:
			v, err := decode[*RoughTravelDates](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.RoughDates = mergeRoughDates(st.RoughDates, v)
				} else {
					st.RoughDates = v
				}
			})

		case FieldSpecificDates:
			v, err := decode[*TravelDates](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.SpecificDates = mergeTravelDates(st.SpecificDates, v)
				} else {
					st.SpecificDates = v
				}
			})

		case FieldDestinations:
			v, err := decode[[]ClusterJourney](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				switch {
				case policy == PolicyMerge:
					st.Destinations = mergeJourneys(st.Destinations, v)
				case v == nil:
					st.Destinations = []ClusterJourney{}
				default:
					st.Destinations = v
				}
			})

		case FieldPOIs:
			v, err := decode[[]POI](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				switch {
				case policy == PolicyMerge:
					st.POIs = mergePOIs(st.POIs, v)
				case v == nil:
					st.POIs = []POI{}
				default:
					st.POIs = v
				}
			})

		case FieldItinerary:
			v, err := decode[*Itinerary](key, raw)
			if err != nil {
				return nil, err
			}
			staged = append(staged, func() {
				if policy == PolicyMerge {
					st.Itinerary = mergeItinerary(st.Itinerary, v)
				} else {
					st.Itinerary = v
				}
			})

		default:
			if loose == nil {
				loose = make(map[string]json.RawMessage)
			}
			loose[key] = raw
		}
	}

	for _, apply := range staged {
		apply()
	}
	return loose, nil
}

func decode[T any](key string, raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("state: decoding %s: %w", key, err)
	}
	return v, nil
}

// decodeOrigin accepts either a structured SourceLocation object or a bare
// string. Free text lands in City with the other fields empty.
func decodeOrigin(raw json.RawMessage) (*SourceLocation, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return nil, nil
		}
		return &SourceLocation{City: text}, nil
	}
	return decode[*SourceLocation](FieldOrigin, raw)
}

// Scalar merge: non-zero incoming wins, zero means "no change".

func mergeString(dst, src string) string {
	if src != "" {
		return src
	}
	return dst
}

func mergeInt(dst, src int) int {
	if src != 0 {
		return src
	}
	return dst
}

// mergeStringList unions src into dst, preserving order and dropping
// duplicates.
func mergeStringList(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range dst {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range src {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func mergeProfile(dst, src *UserProfile) *UserProfile {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	return &UserProfile{
		Name:                mergeString(dst.Name, src.Name),
		Age:                 mergeInt(dst.Age, src.Age),
		Gender:              mergeString(dst.Gender, src.Gender),
		PassportNationality: mergeString(dst.PassportNationality, src.PassportNationality),
		Allergies:           mergeStringList(dst.Allergies, src.Allergies),
		EmergencyContact:    mergeStringList(dst.EmergencyContact, src.EmergencyContact),
		TravelHistory:       mergeStringList(dst.TravelHistory, src.TravelHistory),
		GeneralPreferences:  mergeStringList(dst.GeneralPreferences, src.GeneralPreferences),
	}
}

func mergeGroup(dst, src *GroupDetails) *GroupDetails {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	out := &GroupDetails{
		TripType:     mergeString(dst.TripType, src.TripType),
		GroupSize:    mergeInt(dst.GroupSize, src.GroupSize),
		GroupMembers: dst.GroupMembers,
	}
	// Members are keyed by name; unnamed incoming members append.
	byName := make(map[string]int, len(out.GroupMembers))
	for i, m := range out.GroupMembers {
		if m.Name != "" {
			byName[m.Name] = i
		}
	}
	for i := range src.GroupMembers {
		m := src.GroupMembers[i]
		if idx, ok := byName[m.Name]; ok && m.Name != "" {
			merged := mergeProfile(&out.GroupMembers[idx], &m)
			out.GroupMembers[idx] = *merged
			continue
		}
		out.GroupMembers = append(out.GroupMembers, m)
	}
	return out
}

func mergeBudget(dst, src *Budget) *Budget {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	out := &Budget{
		Currency:        mergeString(dst.Currency, src.Currency),
		OverallEstimate: mergeInt(dst.OverallEstimate, src.OverallEstimate),
		Breakdown:       dst.Breakdown,
	}
	if src.Breakdown != nil {
		if dst.Breakdown == nil {
			out.Breakdown = src.Breakdown
		} else {
			out.Breakdown = &BudgetBreakdown{
				Food:   mergeInt(dst.Breakdown.Food, src.Breakdown.Food),
				Travel: mergeInt(dst.Breakdown.Travel, src.Breakdown.Travel),
				Stay:   mergeInt(dst.Breakdown.Stay, src.Breakdown.Stay),
				Other:  mergeInt(dst.Breakdown.Other, src.Breakdown.Other),
			}
		}
	}
	return out
}

func mergeOrigin(dst, src *SourceLocation) *SourceLocation {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	return &SourceLocation{
		City:    mergeString(dst.City, src.City),
		State:   mergeString(dst.State, src.State),
		Country: mergeString(dst.Country, src.Country),
		MapsURL: mergeString(dst.MapsURL, src.MapsURL),
	}
}

func mergeRoughDates(dst, src *RoughTravelDates) *RoughTravelDates {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	return &RoughTravelDates{
		Timeframe:       mergeString(dst.Timeframe, src.Timeframe),
		Flexibility:     mergeString(dst.Flexibility, src.Flexibility),
		Duration:        mergeString(dst.Duration, src.Duration),
		AvoidDates:      mergeStringList(dst.AvoidDates, src.AvoidDates),
		PreferredSeason: mergeString(dst.PreferredSeason, src.PreferredSeason),
	}
}

func mergeTravelDates(dst, src *TravelDates) *TravelDates {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	return &TravelDates{
		StartDate: mergeString(dst.StartDate, src.StartDate),
		EndDate:   mergeString(dst.EndDate, src.EndDate),
	}
}

// journeyKey identifies a cluster journey for union purposes.
func journeyKey(j ClusterJourney) string {
	return j.ClusterType + "|" + j.StartDestination + "|" + j.FinalDestination
}

func mergeJourneys(dst, src []ClusterJourney) []ClusterJourney {
	seen := make(map[string]struct{}, len(dst))
	out := append([]ClusterJourney(nil), dst...)
	for _, j := range dst {
		seen[journeyKey(j)] = struct{}{}
	}
	for _, j := range src {
		if _, ok := seen[journeyKey(j)]; ok {
			continue
		}
		seen[journeyKey(j)] = struct{}{}
		out = append(out, j)
	}
	if out == nil {
		out = []ClusterJourney{}
	}
	return out
}

func mergePOIs(dst, src []POI) []POI {
	seen := make(map[string]struct{}, len(dst))
	out := append([]POI(nil), dst...)
	for _, p := range dst {
		seen[p.PlaceName] = struct{}{}
	}
	for _, p := range src {
		if _, ok := seen[p.PlaceName]; ok {
			continue
		}
		seen[p.PlaceName] = struct{}{}
		out = append(out, p)
	}
	if out == nil {
		out = []POI{}
	}
	return out
}

func mergeItinerary(dst, src *Itinerary) *Itinerary {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	out := &Itinerary{
		TripName:    mergeString(dst.TripName, src.TripName),
		StartDate:   mergeString(dst.StartDate, src.StartDate),
		EndDate:     mergeString(dst.EndDate, src.EndDate),
		Origin:      mergeString(dst.Origin, src.Origin),
		Destination: mergeString(dst.Destination, src.Destination),
		Days:        dst.Days,
	}
	// A regenerated day plan supersedes the old one wholesale; day-level
	// diffing would invent an ordering the planner never promised.
	if len(src.Days) > 0 {
		out.Days = src.Days
	}
	return out
}
