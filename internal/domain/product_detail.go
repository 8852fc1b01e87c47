package domain

// ProductDetail is a product enriched with its owning brand and category.
// Public product reads and QR resolution render from it.
type ProductDetail struct {
	Product  Product
	Brand    *Brand
	Category *Category
}
