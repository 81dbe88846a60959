package domain

import "strings"

// PhoneModel is one entry of the phone reference catalog
type PhoneModel struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// String returns "<brand> <model>"
func (p PhoneModel) String() string {
	return p.Brand + " " + p.Model
}

// DirName returns the dataset directory name for the model, e.g. "apple_iphone_15_pro"
func (p PhoneModel) DirName() string {
	name := p.Brand + "_" + p.Model
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ToLower(name)
}

// PhoneCatalog is the read-only list of phones the dataset is built for.
// It also drives detection of products that have a dedicated reference site.
var PhoneCatalog = []PhoneModel{
	{Brand: "Apple", Model: "iPhone 15 Pro Max"},
	{Brand: "Apple", Model: "iPhone 15 Pro"},
	{Brand: "Apple", Model: "iPhone 15"},
	{Brand: "Apple", Model: "iPhone 14"},
	{Brand: "Apple", Model: "iPhone SE (2022)"},
	{Brand: "Samsung", Model: "Galaxy S24 Ultra"},
	{Brand: "Samsung", Model: "Galaxy S23 Ultra"},
	{Brand: "Samsung", Model: "Galaxy Z Fold 5"},
	{Brand: "Samsung", Model: "Galaxy A54"},
	{Brand: "Samsung", Model: "Galaxy A14"},
	{Brand: "Xiaomi", Model: "14 Pro"},
	{Brand: "Xiaomi", Model: "13 Ultra"},
	{Brand: "Xiaomi", Model: "Redmi Note 13 Pro+"},
	{Brand: "Xiaomi", Model: "POCO F5 Pro"},
	{Brand: "Oppo", Model: "Find N3 Flip"},
	{Brand: "Oppo", Model: "Reno10 Pro+"},
	{Brand: "Google", Model: "Pixel 8 Pro"},
	{Brand: "Google", Model: "Pixel 7a"},
	{Brand: "OnePlus", Model: "12"},
	{Brand: "OnePlus", Model: "Nord 3"},
	{Brand: "Realme", Model: "GT 3"},
	{Brand: "Realme", Model: "11 Pro+"},
	{Brand: "Vivo", Model: "X90 Pro+"},
	{Brand: "Vivo", Model: "V29 Pro"},
	{Brand: "Huawei", Model: "P60 Pro"},
	{Brand: "Huawei", Model: "Mate 50 Pro"},
	{Brand: "Honor", Model: "Magic 5 Pro"},
	{Brand: "Honor", Model: "90"},
	{Brand: "Nokia", Model: "G42 5G"},
	{Brand: "Nokia", Model: "C32"},
	{Brand: "Motorola", Model: "Razr 40 Ultra"},
	{Brand: "Motorola", Model: "Edge 40 Pro"},
	{Brand: "Sony", Model: "Xperia 1 V"},
	{Brand: "Sony", Model: "Xperia 5 IV"},
	{Brand: "Asus", Model: "Zenfone 10"},
	{Brand: "Asus", Model: "ROG Phone 7 Ultimate"},
}
