package seed

// Demo holds fictional example sightings for local development.
var Demo = []map[string]string{
	{"state": "CA", "plate": "ABC1234", "make": "Honda", "model": "Civic", "color": "Blue", "location": "Downtown LA", "timestamp": "2025-10-10 09:15:00", "notes": "Seen near coffee shop", "image_filename": ""},
	{"state": "NY", "plate": "XYZ9876", "make": "Toyota", "model": "Camry", "color": "Silver", "location": "Times Square", "timestamp": "2025-10-09 22:30:00", "notes": "", "image_filename": ""},
	{"state": "TX", "plate": "DEF5678", "make": "Ford", "model": "F-150", "color": "Red", "location": "Austin", "timestamp": "2025-10-09 14:00:00", "notes": "Pickup truck with toolbox", "image_filename": ""},
	{"state": "FL", "plate": "GHI2345", "make": "Chevrolet", "model": "Silverado", "color": "Black", "location": "Miami Beach", "timestamp": "2025-10-08 18:45:00", "notes": "", "image_filename": ""},
	{"state": "CA", "plate": "JKL6789", "make": "Tesla", "model": "Model 3", "color": "White", "location": "Palo Alto", "timestamp": "2025-10-08 11:20:00", "notes": "Electric vehicle", "image_filename": ""},
	{"state": "NY", "plate": "MNO1234", "make": "BMW", "model": "X5", "color": "Grey", "location": "Brooklyn", "timestamp": "2025-10-07 08:05:00", "notes": "Luxury SUV", "image_filename": ""},
	{"state": "TX", "plate": "PQR5678", "make": "Mazda", "model": "CX-5", "color": "Blue", "location": "Dallas", "timestamp": "2025-10-06 17:55:00", "notes": "", "image_filename": ""},
	{"state": "FL", "plate": "STU9012", "make": "Nissan", "model": "Altima", "color": "Green", "location": "Orlando", "timestamp": "2025-10-05 12:10:00", "notes": "Rental car sticker visible", "image_filename": ""},
	{"state": "CA", "plate": "VWX3456", "make": "Hyundai", "model": "Tucson", "color": "Orange", "location": "San Diego", "timestamp": "2025-10-04 16:00:00", "notes": "", "image_filename": ""},
}
