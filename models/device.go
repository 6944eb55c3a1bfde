package models

// Category is a device family such as phones or laptops.
type Category struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Brand belongs to one category.
type Brand struct {
	ID         string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	CategoryID string `bson:"category_id" json:"category_id"`
}

// Device is a concrete model in the catalog.
type Device struct {
	ID         string `bson:"id" json:"id"`
	Model      string `bson:"model" json:"model"`
	BrandID    string `bson:"brand_id" json:"brand_id"`
	CategoryID string `bson:"category_id" json:"category_id"`
}

// Fault is a priced repair for a device.
type Fault struct {
	ID          string  `bson:"id" json:"id"`
	DeviceID    string  `bson:"device_id" json:"device_id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	IsActive    bool    `bson:"is_active" json:"is_active"`
}
