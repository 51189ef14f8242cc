package enums

// CustomerRole separates ordinary shoppers from back-office staff accounts.
type CustomerRole string

const (
	CustomerRoleCustomer CustomerRole = "customer"
	CustomerRoleStaff    CustomerRole = "staff"
)

// String implements fmt.Stringer.
func (r CustomerRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CustomerRole.
func (r CustomerRole) IsValid() bool {
	return r == CustomerRoleCustomer || r == CustomerRoleStaff
}
