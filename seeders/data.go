package seeders

var (
	fakeFirstNames = []string{"John", "Micheal", "David", "Maria", "Stephen"}
	fakeLastNames  = []string{"Watson", "Pointing", "Dsouza", "Beckham", "Stark"}

	fakeEquipmentTypes = []string{"Laptop", "Monitor", "Keyboard", "Mouse", "Speaker", "CPU"}
	fakeBrands         = []string{"Samsung", "Nokia", "Microsoft", "Apple", "Logitech", "Dell"}
)

const (
	fakeEquipmentCount  = 500
	fakeAllocationCount = 40
	fakeBuyDateSpanDays = 40
)
