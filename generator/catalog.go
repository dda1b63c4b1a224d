package generator

import (
	"retaildash/model"

	"github.com/shopspring/decimal"
)

// Gyms is the location network the generator sells through.
var Gyms = []model.GymLocation{
	{GymID: "MOV-001", Name: "Movement Mountain View", City: "Mountain View", State: "CA", Region: "California", Size: "Large", Open: true},
	{GymID: "MOV-002", Name: "Movement Belmont", City: "Belmont", State: "CA", Region: "California", Size: "Medium", Open: true},
	{GymID: "MOV-003", Name: "Movement Fountain Valley", City: "Fountain Valley", State: "CA", Region: "California", Size: "Large", Open: true},
	{GymID: "MOV-004", Name: "Movement San Francisco", City: "San Francisco", State: "CA", Region: "California", Size: "Large", Open: true},
	{GymID: "MOV-005", Name: "Movement Santa Clara", City: "Santa Clara", State: "CA", Region: "California", Size: "Medium", Open: true},
	{GymID: "MOV-006", Name: "Movement Sunnyvale", City: "Sunnyvale", State: "CA", Region: "California", Size: "Medium", Open: true},
	{GymID: "MOV-007", Name: "Movement Portland", City: "Portland", State: "OR", Region: "Pacific NW", Size: "Large", Open: true},
	{GymID: "MOV-008", Name: "Movement Baker", City: "Denver", State: "CO", Region: "Colorado", Size: "Large", Open: true},
	{GymID: "MOV-009", Name: "Movement Boulder", City: "Boulder", State: "CO", Region: "Colorado", Size: "Large", Open: true},
	{GymID: "MOV-010", Name: "Movement Centennial", City: "Centennial", State: "CO", Region: "Colorado", Size: "Medium", Open: true},
	{GymID: "MOV-011", Name: "Movement Englewood", City: "Englewood", State: "CO", Region: "Colorado", Size: "Medium", Open: true},
	{GymID: "MOV-012", Name: "Movement Golden", City: "Golden", State: "CO", Region: "Colorado", Size: "Medium", Open: true},
	{GymID: "MOV-013", Name: "Movement RiNo", City: "Denver", State: "CO", Region: "Colorado", Size: "Large", Open: true},
	{GymID: "MOV-014", Name: "Movement Lincoln Park", City: "Chicago", State: "IL", Region: "Midwest", Size: "Large", Open: true},
	{GymID: "MOV-015", Name: "Movement Wrigleyville", City: "Chicago", State: "IL", Region: "Midwest", Size: "Large", Open: true},
	{GymID: "MOV-016", Name: "Movement Denton", City: "Denton", State: "TX", Region: "Texas", Size: "Medium", Open: true},
	{GymID: "MOV-017", Name: "Movement Design District", City: "Dallas", State: "TX", Region: "Texas", Size: "Large", Open: true},
	{GymID: "MOV-018", Name: "Movement Fort Worth", City: "Fort Worth", State: "TX", Region: "Texas", Size: "Large", Open: true},
	{GymID: "MOV-019", Name: "Movement Grapevine", City: "Grapevine", State: "TX", Region: "Texas", Size: "Medium", Open: true},
	{GymID: "MOV-020", Name: "Movement The Hill", City: "Dallas", State: "TX", Region: "Texas", Size: "Medium", Open: true},
	{GymID: "MOV-021", Name: "Movement Plano", City: "Plano", State: "TX", Region: "Texas", Size: "Large", Open: true},
	{GymID: "MOV-022", Name: "Movement Columbia", City: "Columbia", State: "MD", Region: "Mid-Atlantic", Size: "Medium", Open: true},
	{GymID: "MOV-023", Name: "Movement Hampden", City: "Baltimore", State: "MD", Region: "Mid-Atlantic", Size: "Large", Open: true},
	{GymID: "MOV-024", Name: "Movement Rockville", City: "Rockville", State: "MD", Region: "Mid-Atlantic", Size: "Medium", Open: true},
	{GymID: "MOV-025", Name: "Movement Timonium", City: "Timonium", State: "MD", Region: "Mid-Atlantic", Size: "Medium", Open: true},
	{GymID: "MOV-026", Name: "Movement Gowanus", City: "Brooklyn", State: "NY", Region: "Northeast", Size: "Large", Open: true},
	{GymID: "MOV-027", Name: "Movement Harlem", City: "New York", State: "NY", Region: "Northeast", Size: "Large", Open: true},
	{GymID: "MOV-028", Name: "Movement LIC", City: "Queens", State: "NY", Region: "Northeast", Size: "Medium", Open: true},
	{GymID: "MOV-029", Name: "Movement Valhalla", City: "Valhalla", State: "NY", Region: "Northeast", Size: "Medium", Open: true},
	{GymID: "MOV-030", Name: "Movement Callowhill", City: "Philadelphia", State: "PA", Region: "Northeast", Size: "Large", Open: true},
	{GymID: "MOV-031", Name: "Movement Fishtown", City: "Philadelphia", State: "PA", Region: "Northeast", Size: "Medium", Open: true},
	{GymID: "MOV-032", Name: "Movement Crystal City", City: "Arlington", State: "VA", Region: "Mid-Atlantic", Size: "Large", Open: true},
	{GymID: "MOV-033", Name: "Movement Fairfax", City: "Fairfax", State: "VA", Region: "Mid-Atlantic", Size: "Medium", Open: true},
}

// Vendors supply the catalog. Reliability is the probability an order
// arrives on or before its expected date.
var Vendors = []model.Vendor{
	{VendorID: "VND-001", Name: "La Sportiva", LeadTimeDays: 21, MinOrder: 500, Reliability: 0.92},
	{VendorID: "VND-002", Name: "Petzl", LeadTimeDays: 18, MinOrder: 400, Reliability: 0.95},
	{VendorID: "VND-003", Name: "Black Diamond", LeadTimeDays: 14, MinOrder: 300, Reliability: 0.93},
	{VendorID: "VND-004", Name: "Evolv", LeadTimeDays: 21, MinOrder: 400, Reliability: 0.88},
	{VendorID: "VND-005", Name: "Scarpa", LeadTimeDays: 25, MinOrder: 600, Reliability: 0.90},
	{VendorID: "VND-006", Name: "Metolius", LeadTimeDays: 10, MinOrder: 200, Reliability: 0.94},
	{VendorID: "VND-007", Name: "FrictionLabs", LeadTimeDays: 7, MinOrder: 150, Reliability: 0.97},
	{VendorID: "VND-008", Name: "Beal", LeadTimeDays: 20, MinOrder: 350, Reliability: 0.91},
	{VendorID: "VND-009", Name: "Mammut", LeadTimeDays: 22, MinOrder: 500, Reliability: 0.89},
	{VendorID: "VND-010", Name: "prAna", LeadTimeDays: 14, MinOrder: 250, Reliability: 0.93},
}

// Products is the SKU catalog.
var Products = []model.Product{
	product("SH-001", "La Sportiva Tarantula", "Climbing Shoes", "Beginner", "VND-001", "45.00", "89.95", true),
	product("SH-002", "La Sportiva Finale", "Climbing Shoes", "Beginner", "VND-001", "50.00", "99.95", true),
	product("SH-003", "La Sportiva Solution", "Climbing Shoes", "Advanced", "VND-001", "95.00", "189.95", true),
	product("SH-004", "Evolv Defy", "Climbing Shoes", "Beginner", "VND-004", "40.00", "79.95", true),
	product("SH-005", "Evolv Shaman", "Climbing Shoes", "Advanced", "VND-004", "85.00", "169.95", true),
	product("SH-006", "Scarpa Instinct VS", "Climbing Shoes", "Advanced", "VND-005", "90.00", "179.95", true),
	product("SH-007", "Black Diamond Momentum", "Climbing Shoes", "Beginner", "VND-003", "42.00", "84.95", true),
	product("HR-001", "Petzl Corax", "Harnesses", "All-Around", "VND-002", "32.00", "64.95", false),
	product("HR-002", "Black Diamond Momentum Harness", "Harnesses", "All-Around", "VND-003", "30.00", "59.95", false),
	product("HR-003", "Petzl Sitta", "Harnesses", "Performance", "VND-002", "70.00", "139.95", false),
	product("HR-004", "Mammut Ophir 4 Slide", "Harnesses", "All-Around", "VND-009", "35.00", "69.95", false),
	product("CH-001", "FrictionLabs Unicorn Dust", "Chalk", "Loose Chalk", "VND-007", "10.00", "21.95", false),
	product("CH-002", "FrictionLabs Gorilla Grip", "Chalk", "Chunky Chalk", "VND-007", "12.00", "24.95", false),
	product("CH-003", "Metolius Super Chalk", "Chalk", "Loose Chalk", "VND-006", "4.00", "9.95", false),
	product("CH-004", "Black Diamond White Gold", "Chalk", "Loose Chalk", "VND-003", "5.00", "11.95", false),
	product("BD-001", "Petzl GriGri+", "Belay Devices", "Assisted Braking", "VND-002", "55.00", "109.95", false),
	product("BD-002", "Black Diamond ATC-XP", "Belay Devices", "Tubular", "VND-003", "12.00", "24.95", false),
	product("BD-003", "Mammut Smart 2.0", "Belay Devices", "Assisted Braking", "VND-009", "15.00", "29.95", false),
	product("CB-001", "Petzl Attache", "Carabiners", "Locking", "VND-002", "8.00", "16.95", false),
	product("CB-002", "Black Diamond RockLock", "Carabiners", "Locking", "VND-003", "7.00", "14.95", false),
	product("CB-003", "Petzl Djinn Quickdraw", "Carabiners", "Quickdraw", "VND-002", "12.00", "24.95", false),
	product("CB-101", "Metolius Competition Chalk Bag", "Chalk Bags", "Standard", "VND-006", "8.00", "17.95", false),
	product("CB-102", "Mammut Gym Print Chalk Bag", "Chalk Bags", "Standard", "VND-009", "10.00", "21.95", false),
	product("CB-103", "Black Diamond Mojo Chalk Bag", "Chalk Bags", "Standard", "VND-003", "9.00", "19.95", false),
	product("RP-001", "Beal Stinger III 9.4mm", "Ropes", "Single Rope", "VND-008", "95.00", "189.95", false),
	product("RP-002", "Mammut Crag Classic 9.8mm", "Ropes", "Single Rope", "VND-009", "80.00", "159.95", false),
	product("AP-001", "prAna Stretch Zion Pant", "Apparel", "Pants", "VND-010", "40.00", "85.00", false),
	product("AP-002", "prAna Bridger Jean", "Apparel", "Pants", "VND-010", "35.00", "75.00", false),
	product("AP-003", "Movement Logo Tee", "Apparel", "Tops", "VND-010", "8.00", "25.00", false),
	product("TR-001", "Metolius Simulator 3D", "Training", "Hangboard", "VND-006", "20.00", "44.95", false),
	product("TR-002", "Metolius Rock Rings", "Training", "Grip Trainer", "VND-006", "15.00", "34.95", false),
}

func product(sku, name, category, subcategory, vendorID, cost, price string, sizeRun bool) model.Product {
	return model.Product{
		SKU:         sku,
		Name:        name,
		Category:    category,
		Subcategory: subcategory,
		VendorID:    vendorID,
		UnitCost:    decimal.RequireFromString(cost),
		UnitPrice:   decimal.RequireFromString(price),
		SizeRun:     sizeRun,
	}
}

// Sales volume and stocking depth by gym size.
var (
	sizeMultiplier = map[string]float64{"Large": 1.5, "Medium": 1.0, "Small": 0.6}
	sizeCapacity   = map[string]float64{"Large": 1.5, "Medium": 1.0, "Small": 0.7}
)

// categoryFrequency is the mean monthly units per product at a medium gym.
var categoryFrequency = map[string]float64{
	"Chalk":          30,
	"Chalk Bags":     8,
	"Climbing Shoes": 12,
	"Harnesses":      6,
	"Belay Devices":  4,
	"Carabiners":     7,
	"Apparel":        10,
	"Ropes":          2,
	"Training":       5,
}

const defaultFrequency = 5

// seasonality scales demand by calendar month.
var seasonality = [13]float64{
	0,
	0.70, 0.75, 0.90, 1.10, 1.20, 1.00,
	0.85, 0.90, 1.15, 1.25, 1.00, 1.10,
}

// parBase is the par level for a medium gym before the capacity factor.
func parBase(category string) float64 {
	switch category {
	case "Chalk":
		return 25
	case "Climbing Shoes", "Apparel":
		return 10
	case "Harnesses", "Chalk Bags":
		return 8
	default:
		return 5
	}
}
