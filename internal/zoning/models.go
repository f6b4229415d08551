package zoning

// Category buckets classification codes into fee-rule families.
type Category string

const (
	CategoryResidentialHouse     Category = "residential_house"
	CategoryResidentialApartment Category = "residential_apartment"
	CategoryCommercial           Category = "commercial"
	CategoryIndustrial           Category = "industrial"
)

// Classification is a zoning category referenced by applications. Codes are
// short strings like R1, R3, C1, I1; the fee calculator matches on the code
// prefix rather than an exact registry.
type Classification struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
