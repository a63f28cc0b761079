package lookup

import (
	"context"
	"strings"
)

// taProfile is one territorial authority's demographic snapshot.
type taProfile struct {
	population int
	historical float64 // change over the last intercensal period
	projected  float64 // projected forward change
}

// Territorial authority estimates derived from published census tables.
// Serves as the offline demographic source; a live Stats API client can
// replace it behind the same interface.
var taProfiles = map[string]taProfile{
	"auckland":           {1_720_000, 0.06, 0.08},
	"christchurch":       {394_000, 0.05, 0.06},
	"christchurch city":  {394_000, 0.05, 0.06},
	"wellington":         {215_000, 0.02, 0.03},
	"wellington city":    {215_000, 0.02, 0.03},
	"hamilton":           {180_000, 0.09, 0.12},
	"hamilton city":      {180_000, 0.09, 0.12},
	"tauranga":           {160_000, 0.11, 0.15},
	"tauranga city":      {160_000, 0.11, 0.15},
	"dunedin":            {134_000, 0.02, 0.02},
	"dunedin city":       {134_000, 0.02, 0.02},
	"lower hutt":         {112_000, 0.03, 0.03},
	"lower hutt city":    {112_000, 0.03, 0.03},
	"whangarei":          {100_000, 0.04, 0.05},
	"whangarei district": {100_000, 0.04, 0.05},
	"palmerston north":   {90_000, 0.03, 0.03},
	"hastings":           {88_000, 0.04, 0.04},
	"hastings district":  {88_000, 0.04, 0.04},
	"new plymouth":       {87_000, 0.03, 0.04},
	"waikato":            {80_000, 0.08, 0.10},
	"waikato district":   {80_000, 0.08, 0.10},
	"rotorua":            {77_000, 0.02, 0.02},
	"rotorua district":   {77_000, 0.02, 0.02},
	"selwyn":             {76_000, 0.15, 0.20},
	"selwyn district":    {76_000, 0.15, 0.20},
	"far north":          {72_000, 0.03, 0.03},
	"far north district": {72_000, 0.03, 0.03},
	"waimakariri":        {68_000, 0.09, 0.12},
	"napier":             {67_000, 0.02, 0.03},
	"napier city":        {67_000, 0.02, 0.03},
	"porirua":            {60_000, 0.03, 0.03},
	"waipa":              {58_000, 0.05, 0.06},
	"tasman":             {58_000, 0.04, 0.04},
	"invercargill":       {57_000, 0.01, 0.01},
	"kapiti coast":       {57_000, 0.05, 0.06},
	"western bay of plenty": {56_000, 0.06, 0.08},
	"nelson":             {54_000, 0.02, 0.02},
	"gisborne":           {52_000, 0.02, 0.02},
	"marlborough":        {51_000, 0.02, 0.02},
	"timaru":             {49_000, 0.01, 0.01},
	"whanganui":          {48_000, 0.02, 0.02},
	"queenstown-lakes":   {47_000, 0.14, 0.18},
	"upper hutt":         {46_000, 0.03, 0.03},
	"taupo":              {40_000, 0.03, 0.04},
	"whakatane":          {37_000, 0.02, 0.02},
	"matamata-piako":     {37_000, 0.02, 0.02},
	"ashburton":          {36_000, 0.02, 0.02},
	"horowhenua":         {36_000, 0.04, 0.05},
	"southland":          {33_000, 0.01, 0.01},
	"thames-coromandel":  {32_000, 0.01, 0.01},
	"manawatu":           {32_000, 0.03, 0.03},
	"south taranaki":     {28_000, 0.01, 0.01},
	"kaipara":            {26_000, 0.03, 0.03},
	"south waikato":      {26_000, -0.01, -0.01},
	"central otago":      {25_000, 0.06, 0.07},
	"waitaki":            {24_000, 0.01, 0.01},
	"hauraki":            {21_000, 0.01, 0.01},
	"tararua":            {19_000, 0.0, 0.0},
	"clutha":             {18_000, 0.0, 0.0},
	"rangitikei":         {16_000, 0.0, 0.0},
	"gore":               {13_000, -0.01, -0.01},
	"ruapehu":            {13_000, -0.02, -0.02},
	"buller":             {10_000, -0.03, -0.02},
	"waitomo":            {9_800, -0.02, -0.02},
	"wairoa":             {8_900, -0.01, -0.02},
	"westland":           {8_900, -0.02, -0.01},
	"kawerau":            {7_500, -0.01, -0.02},
}

// StaticDemographics serves demographic lookups from the embedded table.
type StaticDemographics struct{}

// NewStaticDemographics creates the table-backed demographic client.
func NewStaticDemographics() *StaticDemographics {
	return &StaticDemographics{}
}

// Lookup resolves a district (preferred) or region. Unknown areas return
// ErrUnavailable so the filter can pass them through for manual review.
func (s *StaticDemographics) Lookup(ctx context.Context, district, region string) (DemographicData, error) {
	if err := ctx.Err(); err != nil {
		return DemographicData{}, err
	}
	for _, key := range []string{normalizeArea(district), normalizeArea(region)} {
		if key == "" {
			continue
		}
		if p, ok := taProfiles[key]; ok {
			return DemographicData{
				Population:       p.population,
				HistoricalGrowth: p.historical,
				ProjectedGrowth:  p.projected,
			}, nil
		}
	}
	return DemographicData{}, ErrUnavailable
}

// normalizeArea lowercases and strips the administrative suffix so that
// "Hastings District" and "hastings" hit the same row.
func normalizeArea(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{" district", " city", " territory", " region"} {
		if trimmed, ok := strings.CutSuffix(key, suffix); ok {
			if _, known := taProfiles[key]; !known {
				key = trimmed
			}
			break
		}
	}
	return key
}
