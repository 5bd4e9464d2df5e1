package store

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/clients"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

// SeedPassword is the password of every factory account.
const SeedPassword = "password"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func price(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// SeedData builds the factory dataset used when no persisted snapshot
// exists and on factory reset.
func SeedData() Data {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return Data{
		Parts: []parts.Part{
			{ID: "p1", Name: "Linka stalowa 4mm", SKU: "CBL-004", Category: parts.CategoryCables, Type: parts.TypeSingle, Quantity: 50, MinLevel: 10, Price: price(25.00), Location: "A-01"},
			{ID: "p2", Name: "Pas bieżni LifeFitness", SKU: "BLT-LF95", Category: parts.CategoryMechanical, Type: parts.TypeSingle, Quantity: 3, MinLevel: 2, Price: price(450.00), Location: "B-04"},
			{ID: "p3", Name: "Sterownik silnika Matrix", SKU: "PCB-MTX", Category: parts.CategoryElectronics, Type: parts.TypeSingle, Quantity: 1, MinLevel: 2, Price: price(1200.00), Location: "S-10"},
			{ID: "p4", Name: "Smar silikonowy", SKU: "LUB-SIL", Category: parts.CategoryConsumables, Type: parts.TypeSingle, Quantity: 12, MinLevel: 5, Price: price(45.00), Location: "C-02"},
			{ID: "p5", Name: "Tapicerka siedziska (Czarna)", SKU: "UPH-BK", Category: parts.CategoryUpholstery, Type: parts.TypeSingle, Quantity: 0, MinLevel: 2, Price: price(150.00), Location: "D-05"},
			{ID: "p6", Name: "Łożysko 6004zz", SKU: "BRG-6004", Category: parts.CategoryWearable, Type: parts.TypeSingle, Quantity: 20, MinLevel: 8, Price: price(15.00), Location: "A-12"},
			{
				ID: "p7", Name: "Zestaw naprawczy rolki", SKU: "KIT-ROL-01", Category: parts.CategoryMechanical, Type: parts.TypeAssembly, Quantity: 2, MinLevel: 5, Price: price(55.00), Location: "K-01",
				BOM: []parts.BOMLine{
					{PartID: "p6", Quantity: 2},
					{PartID: "p4", Quantity: 1},
				},
			},
		},
		Clients: []clients.Client{
			{
				ID: "c1", Name: "CityFit Centrum", Address: "ul. Marszałkowska 100, Warszawa",
				ContactPerson: "Anna Nowak", Phone: "500-100-100",
				Machines: []clients.ClientMachine{
					{ID: "m1", Model: "LifeFitness 95T", SerialNumber: "LF-2022-998", InstallDate: day(2022, 1, 15), WarrantyUntil: day(2024, 1, 15)},
					{ID: "m2", Model: "Technogym Excite Run", SerialNumber: "TG-554-221", InstallDate: day(2021, 6, 20), WarrantyUntil: day(2023, 6, 20)},
				},
			},
			{
				ID: "c2", Name: "McFit Mokotów", Address: "ul. Wołoska 12, Warszawa",
				ContactPerson: "Piotr Kowalski", Phone: "600-200-200",
				Machines: []clients.ClientMachine{
					{ID: "m3", Model: "Technogym Selection Leg Press", SerialNumber: "TG-SLP-001", InstallDate: day(2023, 3, 10), WarrantyUntil: day(2025, 3, 10)},
					{ID: "m4", Model: "Matrix Aura Multi-Press", SerialNumber: "MTX-AMP-88", InstallDate: day(2022, 11, 5), WarrantyUntil: day(2024, 11, 5)},
				},
			},
		},
		Jobs: []jobs.ServiceJob{
			{
				ID: "j1", ClientName: "CityFit Centrum", MachineModel: "LifeFitness 95T",
				Description: "Bieżnia szarpie przy starcie, słychać piski.",
				Status:      jobs.StatusPending, DateCreated: day(2023, 10, 25),
				UsedParts: []jobs.PartUsage{}, Picklist: []jobs.PartUsage{},
			},
			{
				ID: "j2", ClientName: "McFit Mokotów", MachineModel: "Technogym Selection Leg Press",
				Description: "Zerwana linka wyciągu.",
				Status:      jobs.StatusInProgress, DateCreated: day(2023, 10, 26),
				UsedParts: []jobs.PartUsage{}, Picklist: []jobs.PartUsage{},
			},
		},
		Users: []users.User{
			{
				ID: "u1", Name: "Admin Systemu", Email: "admin@gymfix.pl", Phone: "600-001-001",
				Position: "Kierownik Serwisu", Role: users.RoleAdmin, PasswordHash: string(hash),
				Permissions: users.DefaultPermissions(users.RoleAdmin),
			},
			{
				ID: "u2", Name: "Jan Magazynier", Email: "magazyn@gymfix.pl", Phone: "600-002-002",
				Position: "Specjalista ds. Logistyki", Role: users.RoleWarehouse, PasswordHash: string(hash),
				Permissions: users.DefaultPermissions(users.RoleWarehouse),
			},
			{
				ID: "u3", Name: "Piotr Serwisant", Email: "serwis@gymfix.pl", Phone: "600-003-003",
				Position: "Młodszy Serwisant", Role: users.RoleTechnician, PasswordHash: string(hash),
				Permissions: users.DefaultPermissions(users.RoleTechnician),
			},
		},
	}
}
