package post

import "math"

const (
	airGasConstant = 287.0528 // J/(kg*K), specific gas constant for dry air
	airGamma       = 1.4      // ratio of specific heats
	stdGravity     = 9.80665  // m/s^2, used for the lapse-rate integration
)

// atmosphereLayer is one base of the 1962 U.S. Standard Atmosphere layered
// barometric model (spec §4.D): geopotential altitude base, temperature at
// that base, and lapse rate through the layer above it.
type atmosphereLayer struct {
	baseAlt  float64 // m, geopotential
	baseTemp float64 // K
	basePres float64 // Pa
	lapse    float64 // K/m
}

var stdAtmosphereLayers = []atmosphereLayer{
	{0, 288.15, 101325.0, -0.0065},
	{11000, 216.65, 22632.1, 0.0},
	{20000, 216.65, 5474.89, 0.001},
	{32000, 228.65, 868.019, 0.0028},
	{47000, 270.65, 110.906, 0.0},
	{51000, 270.65, 66.9389, -0.0028},
	{71000, 214.65, 3.95642, -0.002},
	{84852, 186.946, 0.3734, 0.0},
}

// Atmosphere holds whether the atmosphere is enabled and the static wind
// vector used to derive atmosphere-relative velocity (spec §4.D).
type Atmosphere struct {
	Enabled bool
	WindPlanet Vec3 // m/s, planet frame
}

// atmosphereState is the tuple the assembler needs at stage 3.
type atmosphereState struct {
	Temperature, Pressure, Density float64
}

// sample returns temperature, pressure, density at the given geopotential
// altitude. Above the last tabulated base (84852 m) the profile is
// extrapolated by exponential decay from that base using the ideal-gas
// scale height, since the full kinetic-temperature thermosphere model above
// ~86 km is out of scope for a translational trajectory core.
func (a Atmosphere) sample(geopotentialAlt float64) atmosphereState {
	if !a.Enabled {
		return atmosphereState{}
	}
	layer := stdAtmosphereLayers[0]
	for i, l := range stdAtmosphereLayers {
		if geopotentialAlt < l.baseAlt {
			break
		}
		layer = l
		_ = i
	}
	dh := geopotentialAlt - layer.baseAlt
	var temp, pres float64
	if geopotentialAlt >= stdAtmosphereLayers[len(stdAtmosphereLayers)-1].baseAlt {
		last := stdAtmosphereLayers[len(stdAtmosphereLayers)-1]
		temp = last.baseTemp
		scaleHeight := airGasConstant * temp / stdGravity
		pres = last.basePres * math.Exp(-(geopotentialAlt-last.baseAlt)/scaleHeight)
	} else if layer.lapse == 0 {
		temp = layer.baseTemp
		pres = layer.basePres * math.Exp(-stdGravity*dh/(airGasConstant*layer.baseTemp))
	} else {
		temp = layer.baseTemp + layer.lapse*dh
		pres = layer.basePres * math.Pow(layer.baseTemp/temp, stdGravity/(airGasConstant*layer.lapse))
	}
	if temp <= 0 {
		temp = 1e-6
	}
	density := pres / (airGasConstant * temp)
	return atmosphereState{Temperature: temp, Pressure: pres, Density: density}
}

// speedOfSound returns sqrt(γRT).
func speedOfSound(temp float64) float64 {
	if temp <= 0 {
		return 0
	}
	return math.Sqrt(airGamma * airGasConstant * temp)
}
