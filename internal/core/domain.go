package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ClassPassenger  VehicleClass = "binek"
	ClassCommercial VehicleClass = "ticari"
)

const (
	CategoryFuel        Category = "fuel"
	CategoryRepair      Category = "repair"
	CategoryMaintenance Category = "maintenance"
	CategoryParking     Category = "parking"
	CategoryWash        Category = "wash"
	CategoryTires       Category = "tires"
	CategorySpareParts  Category = "spare_parts"
	CategoryInsurance   Category = "insurance"
	CategoryOther       Category = "other"
)

// Categories lists every expense category in canonical order. Summary
// tie-breaks and UI pickers rely on this order, never on insertion order.
var Categories = []Category{
	CategoryFuel,
	CategoryRepair,
	CategoryMaintenance,
	CategoryParking,
	CategoryWash,
	CategoryTires,
	CategorySpareParts,
	CategoryInsurance,
	CategoryOther,
}

type (
	// VehicleClass decides deductibility: commercial vehicles deduct expense
	// and VAT in full, passenger vehicles only the statutory 70% share.
	// Immutable after creation, since changing it would silently rewrite
	// every historical posting derived from the vehicle.
	VehicleClass string

	Category string

	Money struct {
		Cents int64
	}

	Vehicle struct {
		ID    string
		Plate string
		Class VehicleClass
	}

	Expense struct {
		ID        string
		VehicleID string
		Category  Category
		Gross     Money // VAT-inclusive
		Date      time.Time
		VATRate   float64 // percent, [0,100)
		Note      string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidRate     = errors.New("invalid vat rate")
	ErrInvalidClass    = errors.New("invalid vehicle class")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyPlate      = errors.New("empty plate")
	ErrEmptyVehicleRef = errors.New("empty vehicle reference")
)

func (c VehicleClass) Valid() bool {
	switch c {
	case ClassPassenger, ClassCommercial:
		return true
	default:
		return false
	}
}

// Label returns the display name used on receipts.
func (c VehicleClass) Label() string {
	switch c {
	case ClassPassenger:
		return "Binek"
	case ClassCommercial:
		return "Ticari"
	default:
		return string(c)
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFuel, CategoryRepair, CategoryMaintenance, CategoryParking,
		CategoryWash, CategoryTires, CategorySpareParts, CategoryInsurance,
		CategoryOther:
		return true
	default:
		return false
	}
}

// Label returns the display name used on receipts.
func (c Category) Label() string {
	switch c {
	case CategoryFuel:
		return "Yakıt"
	case CategoryRepair:
		return "Tamir"
	case CategoryMaintenance:
		return "Bakım"
	case CategoryParking:
		return "Otopark"
	case CategoryWash:
		return "Yıkama"
	case CategoryTires:
		return "Lastik"
	case CategorySpareParts:
		return "Yedek Parça"
	case CategoryInsurance:
		return "Sigorta"
	case CategoryOther:
		return "Diğer"
	default:
		return string(c)
	}
}

// rank returns the position in canonical order, used for deterministic
// tie-breaking in summaries. Unknown categories sort last.
func (c Category) rank() int {
	for i, k := range Categories {
		if k == c {
			return i
		}
	}
	return len(Categories)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (v Vehicle) Validate() error {
	if len(strings.TrimSpace(v.Plate)) == 0 {
		return ErrEmptyPlate
	}
	if !v.Class.Valid() {
		return ErrInvalidClass
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.VehicleID) == "" {
		return ErrEmptyVehicleRef
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := e.Gross.Validate(); err != nil {
		return err
	}
	if e.VATRate < 0 || e.VATRate >= 100 {
		return ErrInvalidRate
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(e.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

// IndexVehicles builds an id lookup for posting and report computations.
// Later duplicates win, mirroring whole-collection replacement semantics.
func IndexVehicles(vehicles []Vehicle) map[string]Vehicle {
	idx := make(map[string]Vehicle, len(vehicles))
	for _, v := range vehicles {
		idx[v.ID] = v
	}
	return idx
}
