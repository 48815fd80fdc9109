package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// Canonical column names shared by parser, aggregator and views.
const (
	ColTime        = "time"
	ColTemperature = "temperature"
	ColHumidity    = "humidity"
	ColPH          = "ph"
	ColEC          = "ec"
	ColFreshWeight = "fresh_weight"
	ColLeafCount   = "leaf_count"
	ColShootLength = "shoot_length"
	ColGroup       = "group"
	ColTargetEC    = "target_ec"
)

// EnvRecord is one environmental sensor sample, tagged with its owning
// group and that group's target EC.
type EnvRecord struct {
	Time        time.Time         `json:"time"`
	Temperature float64           `json:"temperature"`
	Humidity    float64           `json:"humidity"`
	PH          float64           `json:"ph"`
	EC          float64           `json:"ec"`
	Group       string            `json:"group"`
	TargetEC    float64           `json:"target_ec"`
	Extra       map[string]string `json:"extra,omitempty"`

	// carried names the sensor columns the source actually provided. A nil
	// map means every column; columns the source lacked must not leak into
	// NumericValues as zeros and skew group means.
	carried map[string]bool
}

// GroupName returns the owning group's name.
func (r EnvRecord) GroupName() string { return r.Group }

// NumericValues returns every numeric attribute the source carried for
// this record, keyed by canonical column name, including passthrough
// columns whose text parses cleanly as a number.
func (r EnvRecord) NumericValues() map[string]float64 {
	vals := map[string]float64{ColTargetEC: r.TargetEC}
	putCarried(vals, r.carried, ColTemperature, r.Temperature)
	putCarried(vals, r.carried, ColHumidity, r.Humidity)
	putCarried(vals, r.carried, ColPH, r.PH)
	putCarried(vals, r.carried, ColEC, r.EC)
	addNumericExtras(vals, r.Extra)
	return vals
}

// GrowthRecord is one measured specimen outcome. Columns from the source
// sheet beyond the three measured attributes are carried in Extra.
type GrowthRecord struct {
	FreshWeight float64           `json:"fresh_weight"`
	LeafCount   float64           `json:"leaf_count"`
	ShootLength float64           `json:"shoot_length"`
	Group       string            `json:"group"`
	TargetEC    float64           `json:"target_ec"`
	Extra       map[string]string `json:"extra,omitempty"`

	carried map[string]bool
}

// GroupName returns the owning group's name.
func (r GrowthRecord) GroupName() string { return r.Group }

// NumericValues returns every numeric attribute the source carried for
// this record, keyed by canonical column name.
func (r GrowthRecord) NumericValues() map[string]float64 {
	vals := map[string]float64{ColTargetEC: r.TargetEC}
	putCarried(vals, r.carried, ColFreshWeight, r.FreshWeight)
	putCarried(vals, r.carried, ColLeafCount, r.LeafCount)
	putCarried(vals, r.carried, ColShootLength, r.ShootLength)
	addNumericExtras(vals, r.Extra)
	return vals
}

func putCarried(vals map[string]float64, carried map[string]bool, col string, v float64) {
	if carried == nil || carried[col] {
		vals[col] = v
	}
}

func addNumericExtras(vals map[string]float64, extra map[string]string) {
	for col, raw := range extra {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64); err == nil {
			vals[col] = v
		}
	}
}

// EnvTable is an ordered sequence of environmental records plus the set of
// columns the rows were parsed from. A freshly aggregated but empty table
// has non-nil Rows of length zero, distinguishing it from the zero value
// ("not yet computed").
type EnvTable struct {
	Columns []string    `json:"columns"`
	Rows    []EnvRecord `json:"rows"`
}

// Empty reports whether the table holds no rows.
func (t EnvTable) Empty() bool { return len(t.Rows) == 0 }

// GrowthTable is the growth-measurement counterpart of EnvTable.
type GrowthTable struct {
	Columns []string       `json:"columns"`
	Rows    []GrowthRecord `json:"rows"`
}

// Empty reports whether the table holds no rows.
func (t GrowthTable) Empty() bool { return len(t.Rows) == 0 }
