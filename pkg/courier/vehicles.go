package courier

import (
	"fmt"
)

// VehicleCode identifies a transport class a client can request.
type VehicleCode string

const (
	VehicleBicycle   VehicleCode = "BIC"
	VehicleMotorbike VehicleCode = "MTB"
	VehicleCargoBike VehicleCode = "CGB"
	VehicleCar       VehicleCode = "CAR"
	VehicleVan       VehicleCode = "VAN"
)

// TravelMode is the routing mode used for distance lookups.
type TravelMode string

const (
	TravelBicycling TravelMode = "bicycling"
	TravelDriving   TravelMode = "driving"
)

// MaxJobDistanceMiles is the hard ceiling across all vehicle classes.
const MaxJobDistanceMiles = 12

// VehicleSpec describes a transport class's capability and the package-type
// codes each provider expects for it.
type VehicleSpec struct {
	Code             VehicleCode
	Name             string
	TravelMode       TravelMode
	MaxDistanceMiles float64
	WeightLimitKg    float64

	// Package dimensions in cm, as flat x/y/z parameters.
	LengthCm float64
	WidthCm  float64
	HeightCm float64

	// Provider-specific package/vehicle codes.
	StuartPackageType   string
	GophrVehicleType    int
	StreetPackageTypeID string
	EcofleetVehicle     string
}

// vehicleSpecs is ordered smallest-first so the alternative-vehicle fallback
// upgrades to the next class that can cover the distance.
var vehicleSpecs = []VehicleSpec{
	{
		Code:             VehicleBicycle,
		Name:             "Bicycle",
		TravelMode:       TravelBicycling,
		MaxDistanceMiles: 4,
		WeightLimitKg:    8,
		LengthCm:         40, WidthCm: 20, HeightCm: 15,
		StuartPackageType:   "small",
		GophrVehicleType:    10,
		StreetPackageTypeID: "PT1008",
		EcofleetVehicle:     "bicycle",
	},
	{
		Code:             VehicleCargoBike,
		Name:             "Cargo Bike",
		TravelMode:       TravelBicycling,
		MaxDistanceMiles: 5,
		WeightLimitKg:    15,
		LengthCm:         60, WidthCm: 50, HeightCm: 50,
		StuartPackageType:   "medium",
		GophrVehicleType:    15,
		StreetPackageTypeID: "PT1009",
		EcofleetVehicle:     "cargo_bike",
	},
	{
		Code:             VehicleMotorbike,
		Name:             "Motorbike",
		TravelMode:       TravelDriving,
		MaxDistanceMiles: 8,
		WeightLimitKg:    12,
		LengthCm:         45, WidthCm: 45, HeightCm: 45,
		StuartPackageType:   "medium",
		GophrVehicleType:    20,
		StreetPackageTypeID: "PT1010",
		EcofleetVehicle:     "motorbike",
	},
	{
		Code:             VehicleCar,
		Name:             "Car",
		TravelMode:       TravelDriving,
		MaxDistanceMiles: 10,
		WeightLimitKg:    25,
		LengthCm:         60, WidthCm: 60, HeightCm: 60,
		StuartPackageType:   "large",
		GophrVehicleType:    30,
		StreetPackageTypeID: "PT1011",
		EcofleetVehicle:     "car",
	},
	{
		Code:             VehicleVan,
		Name:             "Van",
		TravelMode:       TravelDriving,
		MaxDistanceMiles: MaxJobDistanceMiles,
		WeightLimitKg:    100,
		LengthCm:         150, WidthCm: 120, HeightCm: 120,
		StuartPackageType:   "xlarge",
		GophrVehicleType:    40,
		StreetPackageTypeID: "PT1012",
		EcofleetVehicle:     "van",
	},
}

// SpecsFor returns the capability spec for a vehicle code.
func SpecsFor(code VehicleCode) (VehicleSpec, error) {
	for _, spec := range vehicleSpecs {
		if spec.Code == code {
			return spec, nil
		}
	}
	return VehicleSpec{}, fmt.Errorf("%w: %s", ErrUnknownVehicleCode, code)
}

// AllVehicleSpecs returns every spec, smallest class first.
func AllVehicleSpecs() []VehicleSpec {
	out := make([]VehicleSpec, len(vehicleSpecs))
	copy(out, vehicleSpecs)
	return out
}

// VehicleForWeight returns the smallest vehicle class whose weight limit
// covers the total package weight.
func VehicleForWeight(totalKg float64) (VehicleSpec, error) {
	for _, spec := range vehicleSpecs {
		if totalKg <= spec.WeightLimitKg {
			return spec, nil
		}
	}
	return VehicleSpec{}, fmt.Errorf("%w: no vehicle carries %.1fkg", ErrUnknownVehicleCode, totalKg)
}
