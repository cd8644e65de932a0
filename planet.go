package post

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PlanetVariant names one of the built-in gravity/shape presets (spec §4.C).
type PlanetVariant uint8

const (
	// Spherical carries only μ; rotation rate and oblateness are zero.
	Spherical PlanetVariant = iota + 1
	// Fisher1960 carries J2 plus an oblate ellipsoid and nonzero rotation.
	Fisher1960
	// Smithsonian carries J2..J4.
	Smithsonian
	// CustomPlanet is fully user-specified.
	CustomPlanet
)

// Planet is the gravity/shape/rotation model shared by every phase that
// does not override it (spec §4.C).
type Planet struct {
	Variant PlanetVariant
	Re, Rp  float64 // equatorial, polar radius (m)
	Mu      float64 // gravitational parameter (m^3/s^2)
	J2, J3, J4 float64
	Omega   float64 // rotation rate (rad/s)
}

// Earth presets, SI units.
const (
	earthRe    = 6378137.0
	earthRp    = 6356752.3142
	earthMu    = 3.986004418e14
	earthJ2    = 1.08262668e-3
	earthJ3    = -2.53265648e-6
	earthJ4    = -1.61962159e-6
	earthOmega = 7.292115e-5
)

// NewSphericalPlanet returns the spherical variant: μ only, no rotation, no
// oblateness.
func NewSphericalPlanet(mu, radius float64) Planet {
	return Planet{Variant: Spherical, Re: radius, Rp: radius, Mu: mu}
}

// NewFisher1960Planet returns the Fisher-1960 Earth preset: J2 on an oblate
// ellipsoid with nonzero rotation.
func NewFisher1960Planet() Planet {
	return Planet{Variant: Fisher1960, Re: earthRe, Rp: earthRp, Mu: earthMu, J2: earthJ2, Omega: earthOmega}
}

// NewSmithsonianPlanet returns the Smithsonian Earth preset: J2..J4.
func NewSmithsonianPlanet() Planet {
	return Planet{Variant: Smithsonian, Re: earthRe, Rp: earthRp, Mu: earthMu, J2: earthJ2, J3: earthJ3, J4: earthJ4, Omega: earthOmega}
}

// eccentricitySq returns the ellipsoid's first eccentricity squared.
func (p Planet) eccentricitySq() float64 {
	if p.Re == 0 {
		return 0
	}
	return 1 - (p.Rp*p.Rp)/(p.Re*p.Re)
}

// PositionPlanet rotates an inertial position into the (Earth-rotating)
// planet frame at time t (spec §4.C): Rz(-ω·t)·r.
func (p Planet) PositionPlanet(rInertial Vec3, t float64) Vec3 {
	return MulVec3(Rz(-p.Omega*t), rInertial)
}

// Altitude returns the geometric altitude of an inertial position above the
// oblate surface. The spherical variant uses the closed form; otherwise an
// iterative geodetic-latitude projection is used (spec §4.C).
func (p Planet) Altitude(rInertial Vec3, t float64) float64 {
	rp := p.PositionPlanet(rInertial, t)
	if p.eccentricitySq() == 0 {
		return Norm(rp) - p.Re
	}
	_, _, alt := p.geodeticOf(rp)
	return alt
}

// AltitudeGeopotential converts geometric altitude to geopotential altitude
// using the standard Re/(Re+h) correction (used by the atmosphere model).
func (p Planet) AltitudeGeopotential(altitude float64) float64 {
	return p.Re * altitude / (p.Re + altitude)
}

// geodeticOf returns (latitude, longitude, altitude) for a planet-frame
// position, by iterative projection onto the reference ellipsoid. Longitude
// is wrapped into [0, 2π), the same range Deg2rad produces.
func (p Planet) geodeticOf(rp Vec3) (lat, lon, alt float64) {
	x, y, z := rp[0], rp[1], rp[2]
	rxy := math.Hypot(x, y)
	lon = math.Atan2(y, x)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	e2 := p.eccentricitySq()
	if rxy == 0 && z == 0 {
		return 0, lon, -p.Re
	}
	lat = math.Atan2(z, rxy*(1-e2))
	for i := 0; i < 8; i++ {
		sinLat := math.Sin(lat)
		n := p.Re / math.Sqrt(1-e2*sinLat*sinLat)
		alt = rxy/math.Cos(lat) - n
		lat = math.Atan2(z, rxy*(1-e2*n/(n+alt)))
	}
	return lat, lon, alt
}

// GeodeticToInertial seeds phase 0 from a geodetic launch description (spec
// §4.C). At t=0 the inertial and planet frames coincide in longitude
// (glossary: inertial X passes through Greenwich at t=0), so the ECEF
// construction below doubles as the inertial position at that instant; for
// t != 0 the result is rotated forward by ω·t.
//
// [IL] is the inertial-to-launch-frame direction cosine matrix: the launch
// frame is tangent to the ellipsoid at the launch point, its Z axis is the
// local geographic-North tangent rotated toward East by azimuth, its Y axis
// is the local outward vertical, and X completes the right-handed triad.
func (p Planet) GeodeticToInertial(lat, lon, alt, azimuth, t float64) (Vec3, Vec3, *mat.Dense) {
	e2 := p.eccentricitySq()
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := p.Re
	if e2 != 0 {
		n = p.Re / math.Sqrt(1-e2*sinLat*sinLat)
	}
	x := (n + alt) * cosLat * cosLon
	y := (n + alt) * cosLat * sinLon
	z := (n*(1-e2) + alt) * sinLat

	rAtZero := Vec3{x, y, z}
	rInertial := MulVec3(Rz(p.Omega*t), rAtZero)

	omegaVec := Vec3{0, 0, p.Omega}
	vAtZero := Cross(omegaVec, rAtZero)
	vInertial := MulVec3(Rz(p.Omega*t), vAtZero)

	north := Vec3{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	east := Vec3{-sinLon, cosLon, 0}
	up := Vec3{cosLat * cosLon, cosLat * sinLon, sinLat}

	sinAz, cosAz := math.Sincos(azimuth)
	zHat := north.Scale(cosAz).Add(east.Scale(sinAz))
	xHat := north.Scale(sinAz).Sub(east.Scale(cosAz))
	yHat := up

	il := mat.NewDense(3, 3, []float64{
		xHat[0], xHat[1], xHat[2],
		yHat[0], yHat[1], yHat[2],
		zHat[0], zHat[1], zHat[2],
	})
	return rInertial, vInertial, il
}

// legendreP evaluates the unnormalized zonal Legendre polynomial of degree n
// (2..4) and its derivative at s = sin(geocentric latitude).
func legendreP(n int, s float64) (p, dp float64) {
	switch n {
	case 2:
		return 0.5 * (3*s*s - 1), 3 * s
	case 3:
		return 0.5 * (5*s*s*s - 3*s), 7.5*s*s - 1.5
	case 4:
		return (35*s*s*s*s - 30*s*s + 3) / 8, 17.5*s*s*s - 7.5*s
	default:
		return 0, 0
	}
}

// Gravity returns the inertial gravitational acceleration at rInertial,
// from the geopotential U = -μ/r·[1 - Σ Jn·(Re/r)^n·Pn(sinφ)] (spec §4.C).
// Differentiating in spherical (r, s=sinφ) coordinates and applying the
// chain rule to Cartesian keeps every harmonic self-consistent with the
// same potential, rather than hand-copying per-harmonic Cartesian formulas.
func (p Planet) Gravity(rInertial Vec3) Vec3 {
	x, y, z := rInertial[0], rInertial[1], rInertial[2]
	r := Norm(rInertial)
	if r == 0 {
		return Vec3{}
	}
	s := z / r

	dUdr := p.Mu / (r * r)
	dUds := 0.0
	for n, Jn := range [...]float64{2: p.J2, 3: p.J3, 4: p.J4} {
		if Jn == 0 || n < 2 {
			continue
		}
		pn, dpn := legendreP(n, s)
		reOverR := p.Re / r
		pow := math.Pow(reOverR, float64(n))
		dUdr -= p.Mu * Jn * pow * float64(n+1) / (r * r) * pn
		dUds += p.Mu * Jn * pow / r * dpn
	}

	drdx, drdy, drdz := x/r, y/r, z/r
	dsdx, dsdy := -z*x/(r*r*r), -z*y/(r*r*r)
	dsdz := (r*r - z*z) / (r * r * r)

	ax := -(dUdr*drdx + dUds*dsdx)
	ay := -(dUdr*drdy + dUds*dsdy)
	az := -(dUdr*drdz + dUds*dsdz)
	return Vec3{ax, ay, az}
}
