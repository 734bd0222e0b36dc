package model

// UncategorizedKey is the stable key of the universal default category.
// It is seeded with the schema and must always exist.
const UncategorizedKey = "uncategorized"

// Category is a global, read-only spending category. Rows are seeded once;
// this application never creates, mutates, or deletes them.
type Category struct {
	Key       string
	Name      string
	ID        int64
	SortOrder int
}

// Categories is a lookup-friendly collection of categories.
type Categories []Category

// ByID returns the category with the given id, or nil.
func (c Categories) ByID(id int64) *Category {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}
	return nil
}

// ByKey returns the category with the given stable key, or nil.
func (c Categories) ByKey(key string) *Category {
	for i := range c {
		if c[i].Key == key {
			return &c[i]
		}
	}
	return nil
}
