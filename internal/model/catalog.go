package model

type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Description string    `json:"description,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Description string    `json:"description,omitempty"`
	Price       Money     `json:"price"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

type Variant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Price            string `json:"price"`
	AvailableForSale bool   `json:"availableForSale"`
}
