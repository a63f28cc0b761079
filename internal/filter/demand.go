package filter

import (
	"fmt"
	"strings"

	"github.com/harbourstone/dealscout/internal/model"
)

// Area demand heuristics. These only annotate; the demand profile feeds
// reporting, never a rejection.
var (
	studentTowns = []string{
		"dunedin", "palmerston north", "hamilton", "wellington", "christchurch",
		"lincoln", "massey", "albany",
	}
	familyAreas = []string{
		"tauranga", "hamilton", "christchurch", "auckland", "napier", "hastings",
		"new plymouth", "whangarei", "kapiti coast", "selwyn", "waimakariri",
		"western bay of plenty",
	}
	retirementAreas = []string{
		"tauranga", "kapiti coast", "nelson", "queenstown-lakes",
		"thames-coromandel", "whangarei",
	}
)

// DemandProfile builds the soft-filter annotation for a listing.
func DemandProfile(l model.Listing) *model.DemandProfile {
	bedrooms := l.Bedrooms
	if bedrooms == 0 {
		bedrooms = 3
	}
	location := strings.ToLower(l.Suburb + " " + l.District + " " + l.Region)

	profile := &model.DemandProfile{BedroomMatch: true}

	for _, town := range studentTowns {
		if strings.Contains(location, town) {
			profile.StudentTown = true
			profile.Notes = append(profile.Notes, "student town ("+town+")")
			break
		}
	}
	for _, area := range familyAreas {
		if strings.Contains(location, area) {
			profile.FamilyArea = true
			profile.Notes = append(profile.Notes, "family area ("+area+")")
			break
		}
	}
	for _, area := range retirementAreas {
		if strings.Contains(location, area) {
			profile.RetirementArea = true
			profile.Notes = append(profile.Notes, "retirement area ("+area+")")
			break
		}
	}

	switch {
	case profile.StudentTown:
		if bedrooms >= 3 {
			profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr ideal for student flatting", bedrooms))
		} else {
			profile.BedroomMatch = false
			profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr less ideal in student town (3+ preferred)", bedrooms))
		}
	case profile.FamilyArea:
		if bedrooms >= 3 {
			profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr matches family demand", bedrooms))
		} else {
			profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr smaller than typical family demand", bedrooms))
		}
	case profile.RetirementArea:
		if bedrooms >= 2 && bedrooms <= 3 {
			profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr suits retirement area demand", bedrooms))
		}
	}

	if len(profile.Notes) == 0 {
		area := l.District
		if area == "" {
			area = l.Region
		}
		profile.Notes = append(profile.Notes, fmt.Sprintf("%dbr in %s", bedrooms, area))
	}

	return profile
}
