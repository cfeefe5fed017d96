package geo

import "math"

// EarthRadiusMiles matches the value used for service-radius checks
// throughout the product.
const EarthRadiusMiles = 3959.0

// DistanceMiles computes the great-circle distance between two points
// using the haversine formula.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := radians(lat1)
	rLat2 := radians(lat2)
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
