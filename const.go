// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.2
//

package sp3

const (
	Re          = 6378.137            // Earth's radius [km]
	Fe          = 1.0 / 298.257223563 // Earth's flattening
	LS          = 18                  // Leap seconds (GPST - UTC)
	SatsPerLine = 17                  // Satellite identifiers per "+" or "++" line
	MinSatLines = 5                   // Minimum number of "+" and "++" lines
	MaxSatsRevC = 85                  // Maximum number of satellites in revision c
	FillValue   = 999999.999999       // Fill value of a missing position, clock or rate
	VelUnit     = 1e-4                // Velocity record unit [dm/s -> km/s]
	RateUnit    = 1e-4                // Clock rate record unit [1e-4 us/s -> us/s]
	NoSigma     = -1                  // Exponent of a standard deviation that is not reported
)

// Fixed column positions of a position or velocity record
const (
	colSat     = 1  // Satellite identifier [1:4]
	colX       = 4  // X coordinate [4:18]
	colY       = 18 // Y coordinate [18:32]
	colZ       = 32 // Z coordinate [32:46]
	colClk     = 46 // Clock [46:60]
	colSigX    = 61 // [61:63]
	colSigY    = 64 // [64:66]
	colSigZ    = 67 // [67:69]
	colSigC    = 70 // [70:73]
	colClkEvt  = 74 // 'E'
	colClkPred = 75 // 'P'
	colMan     = 78 // 'M'
	colOrbPred = 79 // 'P'
	widthField = 14
)

// Minimum widths of fixed-column lines
const (
	minLine1   = 59
	minLine2   = 60
	minSatLine = 12
	minEpoch   = 21
	minRecord  = colClk
)
