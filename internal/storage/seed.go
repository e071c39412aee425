package storage

import (
	"time"

	"feetrack/internal/core"
)

// SeedData is the fixed example dataset handed out when no backend and no
// legacy source holds anything. It is not persisted until the first real
// mutation triggers a save, so a user who never touches the app never
// writes a database.
func SeedData(now time.Time) core.AppData {
	return core.AppData{
		Locations: []core.Location{
			{ID: "loc1", Name: "Studio A"},
			{ID: "loc2", Name: "Community Hall"},
			{ID: "loc3", Name: "Park View"},
		},
		Students: []core.Student{
			{ID: "stu1", Name: "Alice Smith", LocationID: "loc1", JoinedDate: core.NewDate(2024, 1, 15), IsActive: true, DefaultFee: 150},
			{ID: "stu2", Name: "Bob Johnson", LocationID: "loc1", JoinedDate: core.NewDate(2024, 2, 1), IsActive: true, DefaultFee: 150},
			{ID: "stu3", Name: "Charlie Brown", LocationID: "loc1", JoinedDate: core.NewDate(2024, 3, 10), IsActive: true, DefaultFee: 150},
			{ID: "stu4", Name: "Diana Prince", LocationID: "loc2", JoinedDate: core.NewDate(2024, 1, 5), IsActive: true, DefaultFee: 150},
			{ID: "stu5", Name: "Evan Wright", LocationID: "loc2", JoinedDate: core.NewDate(2024, 5, 20), IsActive: true, DefaultFee: 150},
			{ID: "stu6", Name: "Fiona Green", LocationID: "loc3", JoinedDate: core.NewDate(2024, 6, 15), IsActive: true, DefaultFee: 200},
		},
		Payments: []core.Payment{
			{ID: "pay1", StudentID: "stu1", Month: 11, Year: 2025, Amount: 150, DatePaid: now},
			{ID: "pay2", StudentID: "stu2", Month: 11, Year: 2025, Amount: 150, DatePaid: now},
			{ID: "pay3", StudentID: "stu4", Month: 10, Year: 2025, Amount: 150, DatePaid: now},
		},
	}
}
