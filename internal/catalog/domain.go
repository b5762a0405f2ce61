package catalog

// Category is a global expense category. Global resources carry no owner and
// are readable by any authenticated identity.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Expense is a global predefined expense belonging to a global category.
type Expense struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}
