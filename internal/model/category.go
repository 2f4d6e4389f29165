package model

import "strconv"

// UncategorizedName is the name of the fallback category every catalog must carry.
const UncategorizedName = "Uncategorized"

// Category is a spending category. Names are unique and matched exactly.
type Category struct {
	ID             int
	Name           string
	Color          string
	SecondaryColor string
	Icon           string
}

// CategoryRef is an optional reference to a category carried by an imported
// row: a numeric id, a name, or nothing. The zero value is absent.
type CategoryRef struct {
	ID   int
	Name string
	set  byte // 0 = absent, 1 = id, 2 = name
}

// CategoryByID references a category by id.
func CategoryByID(id int) CategoryRef { return CategoryRef{ID: id, set: 1} }

// CategoryByName references a category by exact name.
func CategoryByName(name string) CategoryRef { return CategoryRef{Name: name, set: 2} }

// NoCategory is the absent reference.
func NoCategory() CategoryRef { return CategoryRef{} }

// IsID reports whether the reference names a category id.
func (r CategoryRef) IsID() bool { return r.set == 1 }

// IsName reports whether the reference names a category name.
func (r CategoryRef) IsName() bool { return r.set == 2 }

// IsAbsent reports whether no category was referenced.
func (r CategoryRef) IsAbsent() bool { return r.set == 0 }

func (r CategoryRef) String() string {
	switch r.set {
	case 1:
		return "id:" + strconv.Itoa(r.ID)
	case 2:
		return "name:" + r.Name
	default:
		return "absent"
	}
}
