// Package address holds the delivery-address model. Address CRUD lives
// in the storefront backend; this side only selects and annotates.
package address

type Address struct {
	ID     string
	Street string
	City   string
	Area   string
	Zip    string

	// Phone is canonical (254XXXXXXXXX) once set. It may be patched
	// locally before the backend has the number; the patched copy
	// supersedes the backend's until resynchronized.
	Phone string
}

// HasPhone reports whether a contact number is attached.
func (a Address) HasPhone() bool {
	return a.Phone != ""
}
