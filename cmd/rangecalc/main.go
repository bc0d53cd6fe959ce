// Command rangecalc takes the per-channel peak sample indices plus a
// sample rate and the physical constants and prints the resolved
// range, bearing, and optionally a projected geodetic fix, without
// touching any hardware.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"

	"github.com/MuroAkira/Batrobot/internal/geofix"
	"github.com/MuroAkira/Batrobot/internal/resolver"
)

func main() {
	iL := pflag.IntP("index-left", "l", 0, "Left-channel peak sample index.")
	iR := pflag.IntP("index-right", "r", 0, "Right-channel peak sample index.")
	fsHz := pflag.Float64P("fs-hz", "f", 1_000_000, "ADC sample rate, Hz.")
	micSep := pflag.Float64P("mic-separation-m", "d", 0.116, "Microphone separation, meters.")
	soundMPS := pflag.Float64P("speed-of-sound-mps", "c", resolver.DefaultSpeedOfSoundMPS, "Speed of sound, m/s.")
	anchorLat := pflag.Float64P("anchor-lat", "a", 0, "Anchor latitude, decimal degrees (for --project).")
	anchorLon := pflag.Float64P("anchor-lon", "o", 0, "Anchor longitude, decimal degrees (for --project).")
	headingDeg := pflag.Float64P("heading-deg", "g", 0, "Anchor array heading, degrees clockwise from true north.")
	project := pflag.BoolP("project", "p", false, "Also print a projected geodetic fix.")
	help := pflag.BoolP("help", "h", false, "Display help text.")
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	fix := resolver.Geometry(*iL, *iR, *micSep, *fsHz, *soundMPS)
	fmt.Printf("range=%.4fm bearing=%.3fdeg\n", fix.RangeM, fix.BearingRad*180/math.Pi)

	if !*project {
		return
	}

	anchor := geofix.LatLon{LatDeg: *anchorLat, LonDeg: *anchorLon}
	gf, err := geofix.Project(anchor, *headingDeg, fix.RangeM, fix.BearingRad)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rangecalc: projection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("fix: lat=%.6f lon=%.6f  UTM zone=%d hemi=%c E=%.0f N=%.0f\n",
		gf.Position.LatDeg, gf.Position.LonDeg, gf.UTMZone, gf.UTMHemisphere, gf.UTMEasting, gf.UTMNorthing)
}
