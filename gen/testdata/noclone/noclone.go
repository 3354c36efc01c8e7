package noclone

//mortar:derive TypeName Copy
type Plain struct {
	N int
}
